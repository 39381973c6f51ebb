package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()

	records, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	if err != nil {
		t.Fatalf("Format() produced invalid CSV: %v", err)
	}
	return records
}

func TestCSVFormatter_Format(t *testing.T) {
	tests := []struct {
		name      string
		rows      []map[string]interface{}
		wantLines int
	}{
		{
			name:      "empty rows",
			rows:      []map[string]interface{}{},
			wantLines: 0,
		},
		{
			name: "single row",
			rows: []map[string]interface{}{
				{"order_id": int64(1), "sku": "alice", "qty": int32(30)},
			},
			wantLines: 2, // header + 1 data row
		},
		{
			name: "heterogeneous rows",
			rows: []map[string]interface{}{
				{"order_id": int64(1), "sku": "a"},
				{"order_id": int64(2), "_ROW_POSITION": int64(4)},
			},
			wantLines: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter := NewCSVFormatter(&buf)

			if err := formatter.Format(tt.rows); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			if tt.wantLines == 0 {
				if buf.Len() != 0 {
					t.Errorf("Format() output should be empty for empty rows")
				}
				return
			}

			if records := readCSV(t, buf.String()); len(records) != tt.wantLines {
				t.Errorf("Format() produced %d lines, want %d", len(records), tt.wantLines)
			}
		})
	}
}

func TestCSVFormatter_ColumnOrder(t *testing.T) {
	rows := []map[string]interface{}{
		{"z_last": "value1", "a_first": "value2", "m_middle": "value3"},
	}

	t.Run("sorted by default", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewCSVFormatter(&buf).Format(rows); err != nil {
			t.Fatalf("Format() error = %v", err)
		}

		header := readCSV(t, buf.String())[0]
		if strings.Join(header, ",") != "a_first,m_middle,z_last" {
			t.Errorf("header = %v, want alphabetical order", header)
		}
	})

	t.Run("selected columns", func(t *testing.T) {
		var buf bytes.Buffer
		formatter := NewCSVFormatter(&buf)
		formatter.SetColumns([]string{"z_last", "missing", "a_first"})
		if err := formatter.Format(rows); err != nil {
			t.Fatalf("Format() error = %v", err)
		}

		records := readCSV(t, buf.String())
		if strings.Join(records[0], ",") != "z_last,missing,a_first" {
			t.Errorf("header = %v, want the selected order", records[0])
		}
		if strings.Join(records[1], ",") != "value1,,value2" {
			t.Errorf("row = %v", records[1])
		}
	})
}

func TestCSVFormatter_TypeFormatting(t *testing.T) {
	rows := []map[string]interface{}{
		{
			"string": "alice",
			"int":    int64(42),
			"float":  float64(3.14),
			"bool":   true,
			"nil":    nil,
			"bytes":  []byte("raw"),
			"items":  []interface{}{map[string]interface{}{"sku": "x", "qty": int64(2)}},
		},
	}

	var buf bytes.Buffer
	if err := NewCSVFormatter(&buf).Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	records := readCSV(t, buf.String())
	header, dataRow := records[0], records[1]
	got := make(map[string]string, len(header))
	for i, h := range header {
		got[h] = dataRow[i]
	}

	want := map[string]string{
		"string": "alice",
		"int":    "42",
		"float":  "3.14",
		"bool":   "true",
		"nil":    "",
		"bytes":  "raw",
		"items":  `[{"qty":2,"sku":"x"}]`,
	}
	for col, value := range want {
		if got[col] != value {
			t.Errorf("column %q = %q, want %q", col, got[col], value)
		}
	}
}

func TestCSVFormatter_Injection(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"@cmd", "'@cmd"},
		{"-x", "'-x"},
		{"|pipe", "'|pipe"},
		{"='quoted'", "'=''quoted''"},
		{"-5", "-5"},
		{int64(-5), "-5"},
		{-0.5, "-0.5"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(formatValue(tt.value), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewCSVFormatter(&buf).Format([]map[string]interface{}{{"v": tt.value}}); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got := readCSV(t, buf.String())[1][0]; got != tt.want {
				t.Errorf("value %v written as %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCSVFormatter_SpecialCharacters(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Alice, Bob", "quote": `He said "hello"`, "newline": "line1\nline2"},
	}

	var buf bytes.Buffer
	if err := NewCSVFormatter(&buf).Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	records := readCSV(t, buf.String())
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// columns are sorted: name, newline, quote
	if records[1][0] != "Alice, Bob" {
		t.Errorf("comma in value not handled correctly: %q", records[1][0])
	}
	if records[1][1] != "line1\nline2" {
		t.Errorf("newline in value not handled correctly: %q", records[1][1])
	}
	if records[1][2] != `He said "hello"` {
		t.Errorf("quotes in value not handled correctly: %q", records[1][2])
	}
}

func TestCSVFormatter_SetOutput(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	formatter := NewCSVFormatter(&buf1)

	rows := []map[string]interface{}{
		{"id": int64(1), "name": "alice"},
	}

	if err := formatter.Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf1.Len() == 0 {
		t.Error("First buffer should have content")
	}

	formatter.SetOutput(&buf2)
	if err := formatter.Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf2.Len() == 0 {
		t.Error("Second buffer should have content")
	}
}
