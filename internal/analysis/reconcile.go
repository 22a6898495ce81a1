package analysis

import (
	"math"
	"strconv"
	"strings"
)

var longColumns = []string{"user_id", "date", "metric", "value"}

// Reconciler maps wide or long tables onto long-form raw records.
type Reconciler struct {
	wide          []WideColumn
	syntheticUser string
}

// NewReconciler creates a Reconciler from the wide column table and synthetic user id.
func NewReconciler(cfg Config) *Reconciler {
	return &Reconciler{wide: cfg.WideColumns, syntheticUser: cfg.SyntheticUser}
}

// Reconcile returns one raw record per long row, or one per metric column per wide row.
// Any missing mandatory column or non-numeric value rejects the whole table.
func (r *Reconciler) Reconcile(t Table) ([]RawRecord, error) {
	idx := headerIndex(t.Columns)
	if r.IsWide(t.Columns) {
		return r.fromWide(t, idx)
	}
	return fromLong(t, idx)
}

// IsWide reports whether the header carries the heart-rate and steps columns of a
// wide export and no metric column.
func (r *Reconciler) IsWide(columns []string) bool {
	idx := headerIndex(columns)
	if _, ok := idx["metric"]; ok {
		return false
	}
	var hr, steps bool
	for _, wc := range r.wide {
		_, found := lookupColumn(idx, wc.Columns)
		switch wc.Metric {
		case MetricHeartRate:
			hr = found
		case MetricSteps:
			steps = found
		}
	}
	return hr && steps
}

func (r *Reconciler) fromWide(t Table, idx map[string]int) ([]RawRecord, error) {
	dateCol, ok := idx["date"]
	if !ok {
		return nil, &SchemaError{Reason: `wide table is missing column "date"`}
	}

	type source struct {
		metric string
		name   string
		col    int
	}
	sources := make([]source, 0, len(r.wide))
	for _, wc := range r.wide {
		col, found := lookupColumn(idx, wc.Columns)
		if !found {
			return nil, &SchemaError{Reason: "wide table is missing a column for " + wc.Metric}
		}
		sources = append(sources, source{metric: wc.Metric, name: t.Columns[col], col: col})
	}

	out := make([]RawRecord, 0, len(t.Rows)*len(sources))
	for i, row := range t.Rows {
		date := cell(row, dateCol)
		for _, s := range sources {
			v, err := parseValue(row, s.col)
			if err != nil {
				return nil, &SchemaError{Row: i + 1, Column: strings.TrimSpace(s.name), Reason: err.Error()}
			}
			out = append(out, RawRecord{
				UserID: r.syntheticUser,
				Date:   date,
				Metric: s.metric,
				Value:  v,
			})
		}
	}
	return out, nil
}

func fromLong(t Table, idx map[string]int) ([]RawRecord, error) {
	for _, c := range longColumns {
		if _, ok := idx[c]; !ok {
			return nil, &SchemaError{Reason: "missing column " + strconv.Quote(c)}
		}
	}

	out := make([]RawRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		v, err := parseValue(row, idx["value"])
		if err != nil {
			return nil, &SchemaError{Row: i + 1, Column: "value", Reason: err.Error()}
		}
		metric := cell(row, idx["metric"])
		if strings.TrimSpace(metric) == "" {
			return nil, &SchemaError{Row: i + 1, Column: "metric", Reason: "empty metric label"}
		}
		out = append(out, RawRecord{
			UserID: cell(row, idx["user_id"]),
			Date:   cell(row, idx["date"]),
			Metric: metric,
			Value:  v,
		})
	}
	return out, nil
}

// headerIndex maps trimmed, lower-cased header names to their position.
// The first occurrence of a duplicated name wins.
func headerIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func lookupColumn(idx map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if col, ok := idx[strings.ToLower(n)]; ok {
			return col, true
		}
	}
	return 0, false
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

type valueError string

func (e valueError) Error() string { return string(e) }

func parseValue(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, valueError("missing value")
	}
	s := strings.TrimSpace(row[col])
	if s == "" {
		return 0, valueError("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, valueError("not a number: " + strconv.Quote(s))
	}
	return v, nil
}
