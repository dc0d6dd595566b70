package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/banksync/internal/client/domain"
	"github.com/aussiebroadwan/banksync/pkg/paging"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printFooter(w io.Writer, win paging.Window) {
	fmt.Fprintf(w, "page %d of %d (%d total)\n", win.Page, win.TotalPages, win.TotalCount)
}

func sharesCmd(rt *runtime) *cobra.Command {
	var (
		page int
		kind string
	)
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "List shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rt.app.Shares
			if err := c.FetchPage(cmd.Context(), domain.ShareFilter{Kind: kind}, page); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tNAME\tBALANCE")
			for _, s := range c.Items() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, money(s.Balance))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			printFooter(out, c.Window())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().StringVar(&kind, "kind", "", "only shares of this kind")
	return cmd
}

func transactionsCmd(rt *runtime) *cobra.Command {
	var (
		page    int
		shareID string
	)
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the transactions of a share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rt.app.Transactions
			if err := c.FetchPage(cmd.Context(), domain.TransactionFilter{ShareID: shareID}, page); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tPOSTED\tAMOUNT\tBALANCE\tDESCRIPTION")
			for _, tx := range c.Items() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					tx.ID, tx.PostedAt.UTC().Format(time.DateOnly), money(tx.Amount), money(tx.NewBalance), tx.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			printFooter(out, c.Window())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().StringVar(&shareID, "share", "", "share id")
	_ = cmd.MarkFlagRequired("share")
	return cmd
}

func stocksCmd(rt *runtime) *cobra.Command {
	var (
		page     int
		heldOnly bool
	)
	cmd := &cobra.Command{
		Use:   "stocks",
		Short: "List stocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rt.app.Stocks
			if err := c.FetchPage(cmd.Context(), domain.StockFilter{HeldOnly: heldOnly}, page); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tSYMBOL\tNAME\tPRICE\tHELD")
			for _, s := range c.Items() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Symbol, s.Name, money(s.Price), s.Held)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			printFooter(out, c.Window())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().BoolVar(&heldOnly, "held", false, "only stocks currently held")
	return cmd
}

func historyCmd(rt *runtime) *cobra.Command {
	var stockID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the price history of a stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := rt.app.History(stockID)
			if err := h.Load(cmd.Context()); err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "AT\tPRICE")
			for _, p := range h.Points() {
				fmt.Fprintf(tw, "%s\t%s\n", p.At.UTC().Format(time.RFC3339), money(p.Price))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&stockID, "stock", "", "stock id")
	_ = cmd.MarkFlagRequired("stock")
	return cmd
}
