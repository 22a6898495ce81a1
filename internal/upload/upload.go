package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesReplaced int // changed since an earlier upload
	FilesRejected int
	FilesErrored  int

	RecordsAnalyzed int
	LastDataID      string
	LastScore       float64
}

// Uploader walks a directory of CSV exports and POSTs each new or changed
// file to the HealthLens server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every *.csv below the directory in lexical order. Files the
// server rejects are counted and skipped; any other send failure stops the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.dir, err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.processFile(ctx, f); err != nil {
			return &u.stats, err
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	u.stats.FilesTotal++

	relPath, _ := filepath.Rel(u.dir, path)
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would send", "file", relPath, "bytes", info.Size())
		u.stats.FilesUploaded++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	previous, err := u.state.DataID(relPath)
	if err != nil {
		u.log.Warn("state lookup failed", "file", relPath, "error", err)
	}

	res, err := u.client.SendCSV(ctx, filepath.Base(path), data)
	if errors.Is(err, ErrRejected) {
		u.log.Warn("server rejected export", "file", relPath, "error", err)
		u.stats.FilesRejected++
		return nil
	}
	if err != nil {
		return fmt.Errorf("sending %s: %w", relPath, err)
	}

	if err := u.state.MarkUploaded(relPath, info.Size(), hash, res.DataID); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	if previous != "" {
		u.stats.FilesReplaced++
		u.log.Info("export changed since last upload", "file", relPath, "previous_data_id", previous)
	}
	u.stats.RecordsAnalyzed += res.RecordsAnalyzed
	u.stats.LastDataID = res.DataID
	u.stats.LastScore = res.HealthScore

	u.log.Info("uploaded export",
		"file", relPath,
		"data_id", res.DataID,
		"records", res.RecordsAnalyzed,
		"score", res.HealthScore,
	)
	return nil
}
