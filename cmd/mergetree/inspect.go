package main

import (
	"context"
	"io"
	"maps"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/vegasq/mergetree/output"
	"github.com/vegasq/mergetree/reader"
)

const (
	rowPositionColumn = "_ROW_POSITION"
	fileColumn        = "_FILE"
)

type row = map[string]interface{}

func (c *cli) inspectCmd() *cobra.Command {
	var cfg readConfig
	cmd := &cobra.Command{
		Use:   "inspect file.parquet...",
		Short: "Print the rows of changelog files with their row positions",
		Long: `Print the rows of changelog files with their row positions.

Every row gets a _ROW_POSITION column, its zero based position in the file.
When more than one file is read, a _FILE column names the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), c.log, cfg, args, cmd.OutOrStdout())
		},
	}
	addReadFlags(cmd, &cfg)
	return cmd
}

func runInspect(ctx context.Context, log *zap.Logger, cfg readConfig, patterns []string, w io.Writer) (err error) {
	formatter, err := output.New(cfg.format, w)
	if err != nil {
		return err
	}
	matcher, err := cfg.matcher()
	if err != nil {
		return err
	}
	files, err := expandFiles(patterns)
	if err != nil {
		return err
	}

	store, err := cfg.openStore(log)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { err = errs.Combine(err, store.Close()) }()
	}

	columns := []string{rowPositionColumn}
	if len(files) > 1 {
		columns = []string{fileColumn, rowPositionColumn}
	}
	seen := make(map[string]bool)

	var rows []row
	for _, file := range files {
		dv, err := deletionVector(ctx, store, file)
		if err != nil {
			return err
		}
		fileRows, fileColumns, err := inspectFile(ctx, file, dv, matcher.Match, cfg.batchSize)
		if err != nil {
			return err
		}
		for _, column := range fileColumns {
			if !seen[column] {
				seen[column] = true
				columns = append(columns, column)
			}
		}
		if len(files) > 1 {
			for _, r := range fileRows {
				r[fileColumn] = file
			}
		}
		rows = append(rows, fileRows...)
	}
	if err := matcher.Err(); err != nil {
		return err
	}

	formatter.SetColumns(columns)
	return formatter.Format(rows)
}

// inspectFile reads the rows of file that survive dv and where, adding the
// row position of each. It also returns the top level columns of the file.
func inspectFile(ctx context.Context, file string, dv reader.DeletionVector, where func(row) bool, batchSize int) (_ []row, _ []string, err error) {
	fr, err := reader.Open(ctx, file, batchSize)
	if err != nil {
		return nil, nil, err
	}

	var columns []string
	for _, field := range fr.Schema().Fields() {
		columns = append(columns, field.Name())
	}

	positioned := reader.MapReader(fr, func(batch reader.PositionIterator[row]) reader.PositionIterator[reader.Positioned[row]] {
		return reader.Filter(reader.WithPositions(reader.ApplyDeletionVector(batch, dv)), func(p reader.Positioned[row]) bool {
			return where(p.Record)
		})
	})
	defer func() { err = errs.Combine(err, positioned.Close()) }()

	var rows []row
	err = reader.ForEachRemaining(positioned, func(p reader.Positioned[row]) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The batch is reused once released.
		r := make(row, len(p.Record)+2)
		maps.Copy(r, p.Record)
		r[rowPositionColumn] = p.Position
		rows = append(rows, r)
		return nil
	})
	return rows, columns, err
}
