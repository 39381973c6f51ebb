package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"github.com/vegasq/mergetree/output"
	"github.com/vegasq/mergetree/reader"
)

func (c *cli) schemaCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema file.parquet",
		Short: "Print the columns of a parquet file and the table types they read as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.Context(), args[0], format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: jsonl, csv, table")
	return cmd
}

func runSchema(ctx context.Context, pattern, format string, w io.Writer) (err error) {
	formatter, err := output.New(format, w)
	if err != nil {
		return err
	}
	files, err := expandFiles([]string{pattern})
	if err != nil {
		return err
	}

	// A pattern shows the schema of its first match.
	fr, err := reader.Open(ctx, files[0], 0)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, fr.Close()) }()

	var rows []map[string]interface{}
	for _, column := range fr.Columns() {
		rows = append(rows, map[string]interface{}{
			"name":          column.Path,
			"type":          column.Type,
			"physical_type": column.PhysicalType,
			"logical_type":  column.LogicalType,
			"optional":      column.Optional,
			"repeated":      column.Repeated,
		})
	}
	formatter.SetColumns([]string{"name", "type", "physical_type", "logical_type", "optional", "repeated"})
	return formatter.Format(rows)
}
