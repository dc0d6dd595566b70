package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/banksync/internal/client/domain"
)

// printInvalid lists validation messages in field order.
func printInvalid(w io.Writer, errs map[string]string) {
	fmt.Fprintln(w, "invalid input:")
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		fmt.Fprintf(w, "  %s: %s\n", field, errs[field])
	}
}

func postCmd(rt *runtime) *cobra.Command {
	var (
		shareID     string
		amount      string
		description string
		withdraw    bool
	)
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a transaction to a share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			in := domain.TransactionInput{ShareID: shareID, Description: description}
			amountMsg := domain.ValidateAmount(amount)
			if amountMsg == "" {
				cents, _ := domain.ParseAmount(amount)
				if withdraw {
					cents = -cents
				}
				in.Amount = cents
			}

			errs := in.Validate()
			if amountMsg != "" {
				if errs == nil {
					errs = make(map[string]string)
				}
				errs["amount"] = amountMsg
			}
			if len(errs) > 0 {
				printInvalid(out, errs)
				return nil
			}

			tx, err := rt.app.Transactions.Post(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "posted %s: %s, new balance %s\n", tx.ID, money(tx.Amount), money(tx.NewBalance))
			return nil
		},
	}
	cmd.Flags().StringVar(&shareID, "share", "", "share id")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in dollars, e.g. 12.50")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().BoolVar(&withdraw, "withdraw", false, "post the amount as a withdrawal")
	return cmd
}

func buyCmd(rt *runtime) *cobra.Command {
	var in domain.PurchaseInput
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a stock, paying from a share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if errs := in.Validate(); errs != nil {
				printInvalid(out, errs)
				return nil
			}

			p, err := rt.app.Stocks.Buy(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "bought %d for %s, share balance %s\n", p.Quantity, money(p.Total), money(p.NewBalance))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.StockID, "stock", "", "stock id")
	cmd.Flags().StringVar(&in.ShareID, "share", "", "share id paying for the purchase")
	cmd.Flags().Int64Var(&in.Quantity, "quantity", 1, "units to buy")
	return cmd
}
