package db

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleResult() *QueryResult {
	return &QueryResult{
		Columns: []string{"id", "name"},
		Rows: [][]string{
			{"1", "Ada"},
			{"2", "with, comma"},
		},
		RowCount: 2,
		Status:   "(2 rows)",
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleResult().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus 2 rows", len(lines))
	}
	if lines[0] != "id,name" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != `2,"with, comma"` {
		t.Errorf("row = %q, comma value must be quoted", lines[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleResult().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["id"] != "1" || records[0]["name"] != "Ada" {
		t.Errorf("first record = %v", records[0])
	}
}

func TestWriteJSONEmptyResult(t *testing.T) {
	r := &QueryResult{Columns: []string{"id"}, Status: "(0 rows)"}
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty result = %q, want []", got)
	}
}
