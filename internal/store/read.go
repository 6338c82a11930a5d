package store

import (
	"context"
	"fmt"

	"github.com/roach88/cliffordt/internal/ir"
)

// TableArtifact is a stored table file.
type TableArtifact struct {
	Digest  string
	Name    string
	Entries int
	Seq     int64
	Data    []byte
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadResult returns the result stored for a target ID, or an error
// wrapping ErrNotFound.
func (s *Store) ReadResult(ctx context.Context, targetID string) (ir.Result, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT target_id, target, gates, length, t_count, h_count, depth, sde, phase,
		       distance, exact, components
		FROM results
		WHERE target_id = ?
	`, targetID)
	r, err := scanResult(row)
	if isNoRows(err) {
		return ir.Result{}, fmt.Errorf("result %s: %w", targetID, ErrNotFound)
	}
	if err != nil {
		return ir.Result{}, fmt.Errorf("read result: %w", err)
	}
	return r, nil
}

func scanResult(row scanner) (ir.Result, error) {
	var (
		r          ir.Result
		targetJSON string
		distance   string
		exact      int
		compsJSON  string
	)
	if err := row.Scan(&r.TargetID, &targetJSON, &r.Gates, &r.Length, &r.TCount, &r.HCount,
		&r.Depth, &r.SDE, &r.Phase, &distance, &exact, &compsJSON); err != nil {
		return ir.Result{}, err
	}

	target, err := unmarshalTarget(targetJSON)
	if err != nil {
		return ir.Result{}, err
	}
	r.Target = target

	d, err := ir.ParseFloat(ir.IRString(distance))
	if err != nil {
		return ir.Result{}, fmt.Errorf("parse distance: %w", err)
	}
	r.Distance = d
	r.Exact = exact != 0

	comps, err := unmarshalComponents(compsJSON)
	if err != nil {
		return ir.Result{}, err
	}
	r.Components = comps
	return r, nil
}

// ReadRuns returns up to limit runs, newest first. A limit of zero or
// less returns every run.
//
// Returns an empty slice (not nil) when there are no runs.
func (s *Store) ReadRuns(ctx context.Context, limit int) ([]ir.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, seq, targets, failed
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var run ir.Run
		if err := rows.Scan(&run.ID, &run.Name, &run.Source, &run.Seq, &run.Targets, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run, or an error wrapping ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, runID string) (ir.Run, error) {
	var run ir.Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, seq, targets, failed
		FROM runs
		WHERE id = ?
	`, runID).Scan(&run.ID, &run.Name, &run.Source, &run.Seq, &run.Targets, &run.Failed)
	if isNoRows(err) {
		return ir.Run{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ReadRunItems returns the items of a run in target order.
//
// Returns an empty slice (not nil) when the run has no items.
func (s *Store) ReadRunItems(ctx context.Context, runID string) ([]ir.RunItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, idx, target_id, status, error
		FROM run_items
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	items := []ir.RunItem{}
	for rows.Next() {
		var (
			item   ir.RunItem
			status string
		)
		if err := rows.Scan(&item.RunID, &item.Index, &item.TargetID, &status, &item.Error); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.Status = ir.ItemStatus(status)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run items: %w", err)
	}
	return items, nil
}

// LoadTable returns the most recently saved table stored under name, or
// an error wrapping ErrNotFound.
func (s *Store) LoadTable(ctx context.Context, name string) (TableArtifact, error) {
	var a TableArtifact
	err := s.db.QueryRowContext(ctx, `
		SELECT digest, name, entries, seq, data
		FROM table_artifacts
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name).Scan(&a.Digest, &a.Name, &a.Entries, &a.Seq, &a.Data)
	if isNoRows(err) {
		return TableArtifact{}, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return TableArtifact{}, fmt.Errorf("load table: %w", err)
	}
	return a, nil
}
