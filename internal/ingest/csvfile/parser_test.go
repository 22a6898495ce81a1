package csvfile

import (
	"strings"
	"testing"
)

const wideCSV = "\ufeffdate,heart_rate,steps,sleep_hours,water_liters,calories_burned\n" +
	"2025-11-03,62,8000,7.5,2.1,2200\n" +
	"\n" +
	"2025-11-04,64,9100,6.8,1.9,2350\n"

// TestParseWide verifies the BOM is stripped and blank lines are skipped.
func TestParseWide(t *testing.T) {
	tbl, err := Parse(strings.NewReader(wideCSV))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if tbl.Columns[0] != "date" {
		t.Errorf("first column = %q, want date", tbl.Columns[0])
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}
	if tbl.Rows[1][2] != "9100" {
		t.Errorf("steps = %q, want 9100", tbl.Rows[1][2])
	}
}

// TestParseSemicolon verifies a semicolon header switches the delimiter.
func TestParseSemicolon(t *testing.T) {
	in := "user_id;date;metric;value\nu1;2025-11-03;steps;8000\n"
	tbl, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(tbl.Columns) != 4 || len(tbl.Rows) != 1 {
		t.Fatalf("got %d columns and %d rows", len(tbl.Columns), len(tbl.Rows))
	}
	if tbl.Rows[0][3] != "8000" {
		t.Errorf("value = %q, want 8000", tbl.Rows[0][3])
	}
}

// TestParseRagged verifies short rows are kept for the reconciler to judge.
func TestParseRagged(t *testing.T) {
	in := "user_id,date,metric,value\nu1,2025-11-03,steps\n"
	tbl, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(tbl.Rows[0]) != 3 {
		t.Errorf("row has %d cells, want 3", len(tbl.Rows[0]))
	}
}

// TestParseErrors verifies empty and malformed input is rejected.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace", "  \n\n"},
		{"bare quote", "date,steps\n2025-11-03,\"80\"00\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
