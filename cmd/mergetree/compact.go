package main

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/vegasq/mergetree/compact"
	"github.com/vegasq/mergetree/data"
	"github.com/vegasq/mergetree/deletionvector"
	"github.com/vegasq/mergetree/options"
	"github.com/vegasq/mergetree/output"
	"github.com/vegasq/mergetree/reader"
)

type compactConfig struct {
	readConfig
	table string
}

func (c *cli) compactCmd() *cobra.Command {
	var cfg compactConfig
	cmd := &cobra.Command{
		Use:   "compact --table table.yaml file.parquet...",
		Short: "Merge changelog files into one row per primary key",
		Long: `Merge changelog files into one row per primary key.

Every file holds the table fields plus the _SEQUENCE_NUMBER and _VALUE_KIND
(+I, -U, +U, -D) columns. Records of a key are folded in sequence order with
the aggregate functions of the table configuration. With --dv-store, rows
consumed by an earlier compaction are skipped and the rows read by this one
are recorded once the output is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(cmd.Context(), c.log, cfg, args, cmd.OutOrStdout())
		},
	}
	addReadFlags(cmd, &cfg.readConfig)
	cmd.Flags().StringVarP(&cfg.table, "table", "t", "", "table configuration file (YAML)")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func runCompact(ctx context.Context, log *zap.Logger, cfg compactConfig, patterns []string, w io.Writer) (err error) {
	log = log.With(zap.Stringer("task", uuid.New()))

	table, err := options.Load(cfg.table)
	if err != nil {
		return err
	}
	converter, err := table.RecordConverter()
	if err != nil {
		return err
	}
	factory, err := table.MergeFunctionFactory()
	if err != nil {
		return err
	}
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

	log.Debug("compacting", zap.String("table", table.Name), zap.Strings("files", files))

	readers, err := openChangelogs(ctx, converter, store, matcher.Match, files, cfg.batchSize)
	if err != nil {
		return err
	}

	consumed := deletionvector.NewBuilder()
	compactor := compact.NewCompactor(log, factory)
	if store != nil {
		compactor.OnConsumed = func(source compact.Source) error {
			return consumed.Delete(source.File, source.Position)
		}
	}

	merged, stats, err := compactor.Compact(ctx, readers)
	if err != nil {
		return err
	}
	if err := matcher.Err(); err != nil {
		return err
	}

	rowType := converter.RowType()
	rows := make([]map[string]interface{}, len(merged))
	for i, kv := range merged {
		rows[i] = data.ToMap(rowType, kv.Value)
	}
	formatter.SetColumns(rowType.FieldNames())
	if err := formatter.Format(rows); err != nil {
		return err
	}

	if store != nil {
		if err := store.MergeAll(ctx, consumed); err != nil {
			return err
		}
		log.Debug("recorded consumed rows", zap.Strings("files", consumed.Files()))
	}

	log.Info("compacted",
		zap.String("table", table.Name),
		zap.Int("files", len(files)),
		zap.Int64("rows", stats.OutputRows))
	return nil
}

// openChangelogs opens a record reader per file. Already opened readers are
// closed when a later file fails to open.
func openChangelogs(ctx context.Context, converter *compact.RecordConverter, store *deletionvector.Store, where func(map[string]interface{}) bool, files []string, batchSize int) (_ []reader.RecordReader[compact.KeyValue], err error) {
	readers := make([]reader.RecordReader[compact.KeyValue], 0, len(files))
	defer func() {
		if err != nil {
			err = errs.Combine(err, reader.CloseAll(readers...))
		}
	}()

	for _, file := range files {
		dv, err := deletionVector(ctx, store, file)
		if err != nil {
			return nil, err
		}
		fr, err := reader.Open(ctx, file, batchSize)
		if err != nil {
			return nil, err
		}
		readers = append(readers, converter.Reader(file, fr, dv, where))
	}
	return readers, nil
}
