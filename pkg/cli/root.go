// Package cli implements the radsync command-line interface. The one-shot
// subcommands (sync-vouchers, activations, sync-deleted) are intended to be
// run from cron on the RADIUS host; serve runs the full HTTP service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "radsync",
		Short:         "RADIUS voucher synchronization CLI",
		Long:          "Keeps a FreeRADIUS SQLite store consistent with the upstream voucher system.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load config from profile if flags/env not set
			cfg, err := LoadUserConfig()
			if err != nil {
				// Config file is optional
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}

			p := cfg.ActiveProfile(opts.profile)

			// Apply precedence: flag > env > profile > default
			if !cmd.Flags().Changed("db") {
				if v := os.Getenv("RADIUS_DB_PATH"); v != "" {
					opts.dbPath = v
				} else if p.DB != "" {
					opts.dbPath = p.DB
				}
			}
			if !cmd.Flags().Changed("upstream-url") {
				if v := os.Getenv("UPSTREAM_API_URL"); v != "" {
					opts.upstreamURL = v
				} else if p.UpstreamURL != "" {
					opts.upstreamURL = p.UpstreamURL
				}
			}
			if !cmd.Flags().Changed("upstream-token") {
				if v := os.Getenv("UPSTREAM_API_TOKEN"); v != "" {
					opts.upstreamToken = v
				} else if p.UpstreamToken != "" {
					opts.upstreamToken = p.UpstreamToken
				}
			}
			if !cmd.Flags().Changed("upstream-secret") {
				if v := os.Getenv("UPSTREAM_API_SECRET"); v != "" {
					opts.upstreamSecret = v
				} else if p.UpstreamSecret != "" {
					opts.upstreamSecret = p.UpstreamSecret
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("RADSYNC_OUTPUT"); v != "" {
					opts.output = v
				} else if p.Output != "" {
					opts.output = p.Output
				}
			}

			if opts.output != "" && opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", opts.output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "radius.sqlite", "Path to the FreeRADIUS SQLite file")
	rootCmd.PersistentFlags().StringVar(&opts.upstreamURL, "upstream-url", "", "Upstream API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.upstreamToken, "upstream-token", "", "Upstream API bearer token")
	rootCmd.PersistentFlags().StringVar(&opts.upstreamSecret, "upstream-secret", "", "Legacy shared secret header value")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newSyncVouchersCmd(opts))
	rootCmd.AddCommand(newActivationsCmd(opts))
	rootCmd.AddCommand(newSyncDeletedCmd(opts))
	rootCmd.AddCommand(newToggleCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
