// Command mergetree merges aggregating changelog files stored as parquet.
//
// Usage:
//
//	mergetree compact --table orders.yaml [--where expr] [--format jsonl|csv|table] changelog-*.parquet
//	mergetree inspect [--where expr] file.parquet
//	mergetree schema file.parquet
//
// Data goes to stdout, logs to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vegasq/mergetree/deletionvector"
	"github.com/vegasq/mergetree/internal/predicate"
	"github.com/vegasq/mergetree/output"
	"github.com/vegasq/mergetree/reader"
)

// newLogger builds the logger of a command run.
var newLogger = func(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// cli holds the state shared by the subcommands of one invocation.
type cli struct {
	verbose bool
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "mergetree",
		Short:         "Merge aggregating changelog files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			c.log, err = newLogger(c.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level in development format")

	rootCmd.AddCommand(c.compactCmd(), c.inspectCmd(), c.schemaCmd())
	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addReadFlags registers the flags shared by the commands reading rows.
func addReadFlags(cmd *cobra.Command, cfg *readConfig) {
	flags := cmd.Flags()
	flags.StringVarP(&cfg.where, "where", "w", "", "only read rows matching the expression, e.g. \"qty > 0 AND status = 'open'\"")
	flags.StringVarP(&cfg.format, "format", "f", "jsonl", "output format: "+strings.Join(output.Formats, ", "))
	flags.IntVar(&cfg.batchSize, "batch-size", reader.DefaultBatchSize, "rows per read batch")
	flags.StringVar(&cfg.dvStore, "dv-store", "", "deletion vector store; rows it marks as consumed are skipped")
}

type readConfig struct {
	where     string
	format    string
	batchSize int
	dvStore   string
}

// matcher parses the --where expression. An empty expression matches
// every row.
func (cfg readConfig) matcher() (*predicate.Matcher, error) {
	if strings.TrimSpace(cfg.where) == "" {
		return predicate.NewMatcher(nil), nil
	}
	expr, err := predicate.Parse(cfg.where)
	if err != nil {
		return nil, err
	}
	return predicate.NewMatcher(expr), nil
}

// openStore opens the deletion vector store, or returns nil when none is
// configured.
func (cfg readConfig) openStore(log *zap.Logger) (*deletionvector.Store, error) {
	if cfg.dvStore == "" {
		return nil, nil
	}
	return deletionvector.OpenStore(log, cfg.dvStore)
}

// deletionVector returns the vector of file, or nil without a store.
func deletionVector(ctx context.Context, store *deletionvector.Store, file string) (reader.DeletionVector, error) {
	if store == nil {
		return nil, nil
	}
	return store.Get(ctx, file)
}

// expandFiles expands every pattern and returns the absolute paths of the
// files, which key their deletion vectors.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := reader.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			path, err := filepath.Abs(match)
			if err != nil {
				return nil, err
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}
	return files, nil
}
