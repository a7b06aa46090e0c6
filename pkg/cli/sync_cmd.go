package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"radsync/internal/domain"
	syncengine "radsync/internal/sync"
)

func newSyncVouchersCmd(opts *rootOptions) *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "sync-vouchers",
		Short: "Pull the voucher list from upstream and project it into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := opts.upstreamClient()
			if err != nil {
				return err
			}
			enc, err := domain.ParseBandwidthEncoding(encoding)
			if err != nil {
				return err
			}

			store, cleanup, err := opts.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			projector := syncengine.NewProjector(store, enc, opts.logger())
			report, err := projector.SyncFromUpstream(cmd.Context(), source)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, report)
			}
			fmt.Fprintf(os.Stdout, "synced %d voucher(s), %d failed\n", report.Synced, report.Failed)
			for _, e := range report.Errors {
				fmt.Fprintf(os.Stdout, "  %s: %s\n", e.Username, e.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", "", "Bandwidth attribute encoding (wispr, mikrotik)")

	return cmd
}

func newActivationsCmd(opts *rootOptions) *cobra.Command {
	var (
		batchLimit int
		window     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "activations",
		Short: "Scan the auth log for first Access-Accepts and notify upstream",
		Long: "Scans unprocessed Access-Accept entries, notifies the upstream system, " +
			"and binds the client MAC when upstream requests it. With --window the " +
			"legacy mode is used instead: all accepts inside the trailing window are " +
			"pushed upstream in one batch, without per-entry processed tracking.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.upstreamClient()
			if err != nil {
				return err
			}

			store, cleanup, err := opts.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			detector := syncengine.NewDetector(store, client, batchLimit, opts.logger())

			if window > 0 {
				pushed, err := detector.ScanWindow(cmd.Context(), client, window)
				if err != nil {
					return err
				}
				if getOutputFormat(cmd) == "json" {
					return printJSON(os.Stdout, map[string]int{"pushed": pushed})
				}
				fmt.Fprintf(os.Stdout, "pushed %d activation(s) from the last %s\n", pushed, window)
				return nil
			}

			report, err := detector.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, report)
			}
			fmt.Fprintf(os.Stdout, "processed %d activation(s), bound %d MAC(s), %d failed\n",
				report.Processed, report.Bound, report.Failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchLimit, "batch-limit", syncengine.DefaultBatchLimit, "Max auth log entries per scan")
	cmd.Flags().DurationVar(&window, "window", 0, "Legacy mode: push all accepts inside this trailing window")

	return cmd
}

func newSyncDeletedCmd(opts *rootOptions) *cobra.Command {
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "sync-deleted",
		Short: "Remove vouchers deleted upstream inside the trailing window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := opts.upstreamClient()
			if err != nil {
				return err
			}

			store, cleanup, err := opts.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			deleter := syncengine.NewDeleter(store, source, window, opts.logger())
			removed, err := deleter.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]int{"removed": removed})
			}
			fmt.Fprintf(os.Stdout, "removed %d voucher(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&window, "window", syncengine.DefaultDeletionWindow, "Trailing deletion window")

	return cmd
}
