package output

import (
	"encoding/csv"
	"io"
	"strings"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer  io.Writer
	columns []string
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// SetColumns implements Formatter.
func (c *CSVFormatter) SetColumns(columns []string) {
	c.columns = columns
}

// Format writes rows as CSV. Nothing is written for zero rows.
func (c *CSVFormatter) Format(rows []map[string]interface{}) error {
	csvWriter := csv.NewWriter(c.writer)

	if len(rows) == 0 {
		csvWriter.Flush()
		return Error.Wrap(csvWriter.Error())
	}

	columns := resolveColumns(c.columns, rows)

	if err := csvWriter.Write(columns); err != nil {
		return Error.Wrap(err)
	}

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = sanitize(formatValue(row[col]))
		}
		if err := csvWriter.Write(record); err != nil {
			return Error.Wrap(err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return Error.New("failed to flush CSV writer: %w", err)
	}

	return nil
}

// sanitize guards against CSV injection by prefixing characters that could
// trigger formula execution in spreadsheet applications. Negative numbers
// are left alone.
func sanitize(val string) string {
	if len(val) == 0 {
		return val
	}
	switch val[0] {
	case '-':
		if len(val) > 1 && (val[1] >= '0' && val[1] <= '9' || val[1] == '.') {
			return val
		}
	case '=', '+', '@', '\t', '\r', '\n', '|':
	default:
		return val
	}
	return "'" + strings.ReplaceAll(val, "'", "''")
}
