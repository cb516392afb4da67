package index

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// StartRun inserts an unfinished run and returns it
func (d *DB) StartRun(ctx context.Context, profile, mode string, pairs int, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Profile:   profile,
		Mode:      mode,
		Pairs:     pairs,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, profile, mode, pairs, started_at, dry_run)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Profile, run.Mode, run.Pairs, run.StartedAt.UnixMilli(), boolInt(run.DryRun))
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun stores the outcome and error lines of a run
func (d *DB) FinishRun(ctx context.Context, id string, out Outcome) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE sync_runs
		SET finished_at = ?, items_done = ?, items_total = ?, cancelled = ?, error_count = ?
		WHERE id = ?
	`, time.Now().UTC().UnixMilli(), out.ItemsDone, out.ItemsTotal, boolInt(out.Cancelled), len(out.Errors), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	for i, msg := range out.Errors {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO sync_run_errors (run_id, seq, message) VALUES (?, ?, ?)
		`, id, i, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns the newest runs first. An empty profile lists every
// profile; limit <= 0 means no limit.
func (d *DB) ListRuns(ctx context.Context, profile string, limit int) (runs []Run, err error) {
	query := `
		SELECT id, profile, mode, pairs, started_at, finished_at, items_done, items_total, cancelled, dry_run, error_count
		FROM sync_runs`
	var args []interface{}
	if profile != "" {
		query += ` WHERE profile = ?`
		args = append(args, profile)
	}
	query += ` ORDER BY started_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	runs = []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun loads one run by id
func (d *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, profile, mode, pairs, started_at, finished_at, items_done, items_total, cancelled, dry_run, error_count
		FROM sync_runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// RunErrors returns the error lines of a run in the order they occurred
func (d *DB) RunErrors(ctx context.Context, id string) (messages []string, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT message FROM sync_run_errors WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	messages = []string{}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Prune deletes all but the newest keep runs of profile
func (d *DB) Prune(ctx context.Context, profile string, keep int) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM sync_runs
		WHERE profile = ? AND id NOT IN (
			SELECT id FROM sync_runs WHERE profile = ? ORDER BY started_at DESC, id LIMIT ?
		)
	`, profile, profile, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		started   int64
		finished  sql.NullInt64
		cancelled int
		dryRun    int
	)
	if err := row.Scan(&run.ID, &run.Profile, &run.Mode, &run.Pairs, &started, &finished,
		&run.ItemsDone, &run.ItemsTotal, &cancelled, &dryRun, &run.ErrorCount); err != nil {
		return Run{}, err
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		run.FinishedAt = &t
	}
	run.Cancelled = cancelled != 0
	run.DryRun = dryRun != 0
	return run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
