package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cliffordt/internal/ir"
)

// WriteResult inserts a compiled result.
// Uses ON CONFLICT(target_id) DO NOTHING for idempotency: a target ID
// always names the same result, so a second write is silently ignored.
func (s *Store) WriteResult(ctx context.Context, r ir.Result) error {
	targetJSON, err := marshalTarget(r.Target)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	compsJSON, err := marshalComponents(r.Components)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	digest, err := ir.ResultDigest(r)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results
		(target_id, kind, target, gates, length, t_count, h_count, depth, sde, phase,
		 distance, exact, components, digest, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_id) DO NOTHING
	`,
		r.TargetID,
		string(r.Target.Kind),
		targetJSON,
		r.Gates,
		r.Length,
		r.TCount,
		r.HCount,
		r.Depth,
		r.SDE,
		r.Phase,
		string(ir.Float(r.Distance)),
		boolToInt(r.Exact),
		compsJSON,
		digest,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// CreateRun inserts a run and assigns its logical sequence number, which
// is returned. run.Seq is ignored.
func (s *Store) CreateRun(ctx context.Context, run ir.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("create run: next seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, source, seq, targets, failed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Name, run.Source, seq, run.Targets, run.Failed); err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	return seq, nil
}

// FinishRun records the number of targets of a run that did not pass.
func (s *Store) FinishRun(ctx context.Context, runID string, failed int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET failed = ? WHERE id = ?`, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// WriteRunItem records the outcome of one target of a run.
// The run must exist (foreign key constraint). Duplicate writes for the
// same (run, index) are ignored.
func (s *Store) WriteRunItem(ctx context.Context, item ir.RunItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_items (run_id, idx, target_id, status, error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, idx) DO NOTHING
	`, item.RunID, item.Index, item.TargetID, string(item.Status), item.Error)
	if err != nil {
		return fmt.Errorf("write run item: %w", err)
	}
	return nil
}

// SaveTable stores a table file under name and returns its digest.
// Saving identical bytes twice keeps the first row.
func (s *Store) SaveTable(ctx context.Context, name string, data []byte, entries int) (string, error) {
	digest := ir.TableDigest(data)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO table_artifacts (digest, name, entries, seq, data)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM table_artifacts), ?)
		ON CONFLICT(digest) DO NOTHING
	`, digest, name, entries, data)
	if err != nil {
		return "", fmt.Errorf("save table: %w", err)
	}
	return digest, nil
}

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
