package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/banksync/internal/client/app"
)

// runtime is the state shared by every subcommand of one invocation.
type runtime struct {
	cfg app.Config
	app *app.Application

	apiURL   string
	store    string
	dbFile   string
	token    string
	pageSize int
	logLevel string
}

// Root is the banksync command tree. Executing it closes the application the
// subcommand opened, also when the subcommand or its flag checks fail (cobra
// skips post-run hooks then).
type Root struct {
	*cobra.Command
	rt *runtime
}

func (r *Root) Execute() error { return r.ExecuteContext(context.Background()) }

func (r *Root) ExecuteContext(ctx context.Context) error {
	err := r.Command.ExecuteContext(ctx)
	return errors.Join(err, r.rt.close())
}

func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree with configuration from the
// environment as flag defaults.
func NewRootCommand() *Root {
	rt := &runtime{cfg: app.LoadConfig()}

	root := &cobra.Command{
		Use:          "banksync",
		Short:        "Banking client: session, shares, transactions and stocks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.cfg
			cfg.APIURL = rt.apiURL
			cfg.Store = rt.store
			cfg.DatabaseFile = rt.dbFile
			cfg.Token = rt.token
			cfg.PageSize = rt.pageSize
			cfg.LogLevel = rt.logLevel

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rt.app = application
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.apiURL, "api", rt.cfg.APIURL, "API base URL")
	flags.StringVar(&rt.store, "store", rt.cfg.Store, "persistence driver (memory, sqlite, redis)")
	flags.StringVar(&rt.dbFile, "db", rt.cfg.DatabaseFile, "sqlite database file")
	flags.StringVar(&rt.token, "token", rt.cfg.Token, "credential to assign before running the command")
	flags.IntVar(&rt.pageSize, "page-size", rt.cfg.PageSize, "items per page")
	flags.StringVar(&rt.logLevel, "log-level", rt.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		statusCmd(rt),
		loginCmd(rt),
		logoutCmd(rt),
		refreshCmd(rt),
		sharesCmd(rt),
		transactionsCmd(rt),
		postCmd(rt),
		stocksCmd(rt),
		historyCmd(rt),
		buyCmd(rt),
	)
	return &Root{Command: root, rt: rt}
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

// money formats cents as dollars.
func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
