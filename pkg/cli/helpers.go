package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	internaldb "radsync/internal/db"
	"radsync/internal/db/repository"
	"radsync/internal/upstream"
)

// rootOptions holds the resolved persistent flag values shared by every
// subcommand.
type rootOptions struct {
	dbPath         string
	upstreamURL    string
	upstreamToken  string
	upstreamSecret string
	output         string
	profile        string
	verbose        bool
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// upstreamClient builds the upstream API client, or errors when no URL is
// configured.
func (o *rootOptions) upstreamClient() (*upstream.Client, error) {
	if o.upstreamURL == "" {
		return nil, fmt.Errorf("upstream URL not configured: set --upstream-url, UPSTREAM_API_URL, or a profile")
	}
	return upstream.NewClient(o.upstreamURL, o.upstreamToken, o.upstreamSecret, 30*time.Second), nil
}

// openStore opens the RADIUS SQLite store and runs pending migrations.
// The returned cleanup closes both pools.
func (o *rootOptions) openStore() (*repository.Store, func(), error) {
	writeDB, readDB, err := internaldb.OpenSQLitePair(o.dbPath, 4)
	if err != nil {
		return nil, nil, fmt.Errorf("open radius store: %w", err)
	}
	cleanup := func() {
		_ = writeDB.Close()
		_ = readDB.Close()
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return repository.NewStore(writeDB, readDB), cleanup, nil
}

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
