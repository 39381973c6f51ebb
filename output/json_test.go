package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormatter_Format(t *testing.T) {
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
			name: "multiple rows",
			rows: []map[string]interface{}{
				{"id": int64(1), "name": "alice", "age": int32(30)},
				{"id": int64(2), "name": "bob", "age": int32(25)},
			},
			wantLines: 2,
		},
		{
			name: "nested values",
			rows: []map[string]interface{}{
				{"id": int64(1), "items": []interface{}{map[string]interface{}{"sku": "x", "qty": int64(1)}}},
			},
			wantLines: 1,
		},
		{
			name: "nil values",
			rows: []map[string]interface{}{
				{"id": int64(1), "name": nil},
			},
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewJSONFormatter(&buf).Format(tt.rows); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			output := strings.TrimSpace(buf.String())
			if tt.wantLines == 0 {
				if output != "" {
					t.Errorf("Format() output should be empty, got %q", output)
				}
				return
			}

			lines := strings.Split(output, "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("Format() produced %d lines, want %d", len(lines), tt.wantLines)
			}
			for i, line := range lines {
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(line), &obj); err != nil {
					t.Errorf("Line %d is not valid JSON: %v", i, err)
				}
			}
		})
	}
}

func TestJSONFormatter_SetColumns(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf)
	formatter.SetColumns([]string{"id", "missing"})

	if err := formatter.Format([]map[string]interface{}{{"id": int64(1), "name": "alice"}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != `{"id":1,"missing":null}` {
		t.Errorf("Format() = %s", got)
	}
}

func TestJSONFormatter_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONFormatter(&buf).Format([]map[string]interface{}{{"ch": make(chan int)}})
	if err == nil || !Error.Has(err) {
		t.Errorf("Format() error = %v, want an output error", err)
	}
}

func TestJSONFormatter_SetOutput(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	formatter := NewJSONFormatter(&buf1)

	rows := []map[string]interface{}{
		{"id": int64(1), "name": "alice"},
	}

	if err := formatter.Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	formatter.SetOutput(&buf2)
	if err := formatter.Format(rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if buf1.String() != buf2.String() || buf2.Len() == 0 {
		t.Errorf("expected the same output in both buffers, got %q and %q", buf1.String(), buf2.String())
	}
}
