package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	internaldb "radsync/internal/db"
	"radsync/internal/domain"
	syncengine "radsync/internal/sync"
)

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <username> <active|disabled>",
		Short: "Enable or disable a voucher",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseVoucherStatus(args[1])
			if err != nil {
				return err
			}

			store, cleanup, err := opts.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			toggler := syncengine.NewToggler(store)
			if err := toggler.SetStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{
					"username": args[0],
					"status":   string(status),
				})
			}
			fmt.Fprintf(os.Stdout, "%s is now %s\n", args[0], status)
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate store counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := opts.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, stats)
			}
			fmt.Fprintf(os.Stdout, "users:           %d\n", stats.Users)
			fmt.Fprintf(os.Stdout, "mac bindings:    %d\n", stats.MacBindings)
			fmt.Fprintf(os.Stdout, "check rows:      %d\n", stats.CheckRows)
			fmt.Fprintf(os.Stdout, "reply rows:      %d\n", stats.ReplyRows)
			fmt.Fprintf(os.Stdout, "distinct NAS:    %d\n", stats.DistinctNas)
			fmt.Fprintf(os.Stdout, "disabled users:  %d\n", stats.DisabledUsers)
			return nil
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeDB, readDB, err := internaldb.OpenSQLitePair(opts.dbPath, 1)
			if err != nil {
				return fmt.Errorf("open radius store: %w", err)
			}
			defer writeDB.Close()
			defer readDB.Close()

			if err := internaldb.RunMigrations(writeDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(os.Stdout, "migrations applied")
			return nil
		},
	}
}
