package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/zeebo/errs"
)

// Error is the class of output errors.
var Error = errs.Class("output")

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)

	// SetColumns selects the columns to write and their order. Nil selects
	// every column.
	SetColumns(columns []string)
}

// Formats lists the names accepted by New.
var Formats = []string{"jsonl", "csv", "table"}

// New returns the formatter registered under format.
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case "jsonl", "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	}
	return nil, Error.New("unknown format %q (supported: %s)", format, strings.Join(Formats, ", "))
}

// resolveColumns returns selected, or the sorted union of the columns of
// all rows when nothing is selected.
func resolveColumns(selected []string, rows []map[string]interface{}) []string {
	if selected != nil {
		return selected
	}

	// Rows of one output may have different columns, such as inspected
	// files with optional system columns.
	columnSet := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			columnSet[col] = true
		}
	}

	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

// formatValue converts a value to string for CSV and table output
func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		// nested arrays and rows
		if encoded, err := json.Marshal(val); err == nil {
			return string(encoded)
		}
		return fmt.Sprintf("%v", val)
	}
}
