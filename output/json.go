package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer  io.Writer
	columns []string
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// SetColumns implements Formatter. JSON objects always list their keys in
// sorted order; the selection only drops columns.
func (j *JSONFormatter) SetColumns(columns []string) {
	j.columns = columns
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONFormatter) Format(rows []map[string]interface{}) error {
	encoder := json.NewEncoder(j.writer)
	for _, row := range rows {
		if j.columns != nil {
			selected := make(map[string]interface{}, len(j.columns))
			for _, col := range j.columns {
				selected[col] = row[col]
			}
			row = selected
		}
		if err := encoder.Encode(row); err != nil {
			return Error.Wrap(err)
		}
	}
	return nil
}
