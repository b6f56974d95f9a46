package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/linkgraph/internal/fingerprint"
	"github.com/roach88/linkgraph/internal/report"
)

// ErrRunNotFound is returned when no run matches the requested ID, or when
// the store holds no runs at all.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored resolution of a graph.
type Run struct {
	ID          string
	GraphName   string
	GraphPath   string
	Fingerprint string
	CreatedAt   time.Time
	Reports     []report.TargetReport
}

// SaveRun stores run and its reports in one transaction. A missing ID or
// CreatedAt is filled in from the store's generator and clock; the stored
// run is returned.
func (s *Store) SaveRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	encoded := make([]string, len(run.Reports))
	for i, r := range run.Reports {
		data, err := fingerprint.MarshalCanonical(r)
		if err != nil {
			return Run{}, fmt.Errorf("save run: marshal report %s: %w", r.Target, err)
		}
		encoded[i] = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, graph_name, graph_path, fingerprint, created_at, target_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.GraphName, run.GraphPath, run.Fingerprint,
		run.CreatedAt.Format(time.RFC3339Nano), len(run.Reports))
	if err != nil {
		return Run{}, fmt.Errorf("save run %s: %w", run.ID, err)
	}

	for i, r := range run.Reports {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO target_reports (run_id, target, report) VALUES (?, ?, ?)
		`, run.ID, r.Target, encoded[i])
		if err != nil {
			return Run{}, fmt.Errorf("save run %s: report %s: %w", run.ID, r.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save run %s: commit: %w", run.ID, err)
	}

	s.log.Info("saved run", "id", run.ID, "graph", run.GraphName, "targets", len(run.Reports))
	return run, nil
}

// LoadRun returns the run with the given ID and its reports ordered by
// target.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, graph_name, graph_path, fingerprint, created_at
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("load run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("load run %s: %w", id, err)
	}

	run.Reports, err = s.readReports(ctx, run.ID)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LatestRun returns the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return s.LoadRun(ctx, id)
}

// ListRuns returns every run, oldest first, without reports.
//
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, graph_name, graph_path, fingerprint, created_at
		FROM runs ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run and its reports.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

func (s *Store) readReports(ctx context.Context, runID string) ([]report.TargetReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report FROM target_reports
		WHERE run_id = ?
		ORDER BY target COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := []report.TargetReport{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var r report.TargetReport
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		created string
	)
	if err := row.Scan(&run.ID, &run.GraphName, &run.GraphPath, &run.Fingerprint, &created); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	run.CreatedAt = t
	return run, nil
}
