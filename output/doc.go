// Package output writes merged table rows in various output formats.
//
// This package defines the Formatter interface and provides implementations
// for JSON Lines, CSV and aligned text tables. All formatters work with rows
// represented as []map[string]interface{}.
//
// # Supported Formats
//
//   - jsonl: One JSON object per line (suitable for streaming)
//   - csv: Comma-separated values with header row
//   - table: An aligned text table for terminals
//
// # Basic Usage
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	formatter.SetColumns([]string{"order_id", "total"})
//	if err := formatter.Format(rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # Columns
//
// Without SetColumns, CSV and table output use the sorted union of the
// columns of all rows. With SetColumns, only the given columns are written,
// in the given order.
//
// # Type Handling
//
//   - Strings, numbers and booleans are written directly
//   - JSON output preserves nested objects and arrays
//   - CSV and table output render nested values as JSON
//   - Null values are empty in CSV and table output
package output
