package analysis

import (
	"fmt"
	"time"
)

// Table is a parsed tabular input: a header plus string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// RawRecord is one long-form observation before normalization.
type RawRecord struct {
	UserID string  `json:"user_id"`
	Date   string  `json:"date"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// Record is a normalized observation with a parsed date and canonical metric.
type Record struct {
	UserID  string
	Time    time.Time
	Day     time.Time // midnight UTC of the recorded calendar day
	Metric  string
	Value   float64
	HasTime bool // source carried a time of day
}

// SchemaError rejects a whole input batch.
type SchemaError struct {
	Row    int // 1-based data row, 0 for header problems
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: row %d column %q: %s", e.Row, e.Column, e.Reason)
}

// Status tells callers whether a stage had enough data to say anything.
type Status string

const (
	StatusOK               Status = "ok"
	StatusNoData           Status = "no_data"
	StatusInsufficientData Status = "insufficient_data"
)

// DayLayout formats calendar days in results.
const DayLayout = "2006-01-02"
