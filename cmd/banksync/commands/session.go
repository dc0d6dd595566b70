package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/banksync/pkg/jwtx"
)

func statusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := rt.app.Session
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "state: %s\n", s.State())
			fmt.Fprintf(out, "authenticated: %t\n", s.IsAuthenticated())
			if claims, ok := s.Claims(); ok && claims.Username != "" {
				fmt.Fprintf(out, "username: %s\n", claims.Username)
			}
			if exp, ok := s.Expiration(); ok {
				fmt.Fprintf(out, "expires: %s\n", exp.UTC().Format(time.RFC3339))
			}
			if claims, ok := s.Claims(); ok {
				fmt.Fprintf(out, "credential: %s\n", validity(claims))
			}
			return nil
		},
	}
}

// validity describes the credential's time window as of now.
func validity(c jwtx.Claims) string {
	switch err := c.ValidateExpiry(); {
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrNotYetValid):
		return "not yet valid"
	default:
		return "valid"
	}
}

func loginCmd(rt *runtime) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Assign a credential and persist the session hint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Session.SetCredential(cmd.Context(), &token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", rt.app.Session.State())
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer credential")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func logoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the credential and the persisted session hint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Session.SetCredential(cmd.Context(), nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func refreshCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the credential now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Refresh.RefreshNow(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", rt.app.Session.State())
			return nil
		},
	}
}
