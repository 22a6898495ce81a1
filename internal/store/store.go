package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/insights"
	"github.com/claude/healthlens/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MemoryDSN keeps runs for the lifetime of the process only.
const MemoryDSN = ":memory:"

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("analysis run not found")

// Sources of a run.
const (
	SourceJSON = "json"
	SourceCSV  = "csv"
)

// Run is one stored pipeline invocation.
type Run struct {
	ID        uuid.UUID                `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	Source    string                   `json:"source"`
	Filename  string                   `json:"filename,omitempty"`
	Records   int                      `json:"records"`
	Upload    *models.HealthDataUpload `json:"upload,omitempty"`
	Result    *analysis.Result         `json:"result"`
	Report    insights.Report          `json:"report"`
}

// RunSummary is the list view of a run.
type RunSummary struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Source      string    `json:"source"`
	Filename    string    `json:"filename,omitempty"`
	Records     int       `json:"records"`
	HealthScore float64   `json:"health_score"`
	Fallback    bool      `json:"fallback"`
}

// Store persists analysis runs in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at dsn and creates the schema. An in-memory DSN is
// pinned to a single connection so every query sees the same database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if dsn == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS analysis_runs (
		id           TEXT PRIMARY KEY,
		created_at   INTEGER NOT NULL,
		source       TEXT NOT NULL,
		filename     TEXT NOT NULL DEFAULT '',
		records      INTEGER NOT NULL,
		health_score REAL NOT NULL,
		fallback     INTEGER NOT NULL DEFAULT 0,
		upload_json  TEXT,
		result_json  TEXT NOT NULL,
		report_json  TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating analysis_runs: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_analysis_runs_created ON analysis_runs (created_at)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts run, assigning an ID and creation time when unset.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	var uploadJSON sql.NullString
	if run.Upload != nil {
		data, err := json.Marshal(run.Upload)
		if err != nil {
			return fmt.Errorf("marshaling upload: %w", err)
		}
		uploadJSON = sql.NullString{String: string(data), Valid: true}
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, created_at, source, filename, records, health_score, fallback, upload_json, result_json, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.CreatedAt.UnixNano(), run.Source, run.Filename, run.Records,
		run.Report.HealthScore, run.Report.Fallback, uploadJSON, string(resultJSON), string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

const runColumns = `id, created_at, source, filename, records, upload_json, result_json, report_json`

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE id = ?`, id.String())
	return scanRun(row)
}

// Latest returns the most recently created run.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return scanRun(row)
}

// List returns up to limit run summaries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, filename, records, health_score, fallback
		 FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var (
			sum     RunSummary
			id      string
			created int64
		)
		if err := rows.Scan(&id, &created, &sum.Source, &sum.Filename, &sum.Records, &sum.HealthScore, &sum.Fallback); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing run id %q: %w", id, err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

func scanRun(row *sql.Row) (*Run, error) {
	var (
		run        Run
		id         string
		created    int64
		uploadJSON sql.NullString
		resultJSON string
		reportJSON string
	)
	err := row.Scan(&id, &created, &run.Source, &run.Filename, &run.Records, &uploadJSON, &resultJSON, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing run id %q: %w", id, err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	if uploadJSON.Valid {
		run.Upload = &models.HealthDataUpload{}
		if err := json.Unmarshal([]byte(uploadJSON.String), run.Upload); err != nil {
			return nil, fmt.Errorf("decoding upload: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(resultJSON), &run.Result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &run, nil
}
