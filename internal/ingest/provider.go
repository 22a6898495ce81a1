package ingest

import (
	"errors"
	"fmt"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/store"
)

// ErrBadInput marks failures caused by the submitted data rather than the server.
var ErrBadInput = errors.New("invalid input")

// IsBadInput reports whether err should be answered with a client error.
func IsBadInput(err error) bool {
	var se *analysis.SchemaError
	return errors.Is(err, ErrBadInput) || errors.As(err, &se)
}

// Result holds the outcome of an ingest operation.
type Result struct {
	DataID          string             `json:"data_id"`
	Source          string             `json:"source"`
	RowsReceived    int                `json:"rows_received"`
	RecordsAnalyzed int                `json:"records_processed"`
	RecordsDropped  int                `json:"records_dropped"`
	HealthScore     float64            `json:"health_score"`
	Summary         map[string]float64 `json:"summary,omitempty"`
	Fallback        bool               `json:"fallback,omitempty"`
	Message         string             `json:"message,omitempty"`

	Run *store.Run `json:"-"`
}

// NewResult summarizes a saved run.
func NewResult(run *store.Run) *Result {
	res := &Result{
		DataID:      run.ID.String(),
		Source:      run.Source,
		HealthScore: run.Report.HealthScore,
		Fallback:    run.Report.Fallback,
		Run:         run,
	}
	if run.Result != nil {
		res.RowsReceived = run.Result.Stats.Rows
		res.RecordsAnalyzed = run.Result.Stats.RecordsAnalyzed
		res.RecordsDropped = run.Result.Stats.RecordsDropped
		res.Summary = run.Result.Summary
	}
	if res.RowsReceived == 0 {
		res.RowsReceived = run.Records
	}
	if res.Fallback {
		res.Message = "analysis failed, stored placeholder insights"
	}
	return res
}

// Guard runs fn, converting a panic into an error.
func Guard(fn func() (*analysis.Result, error)) (res *analysis.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	return fn()
}
