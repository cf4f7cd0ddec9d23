package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/mo/internal/diag"
)

// Begin records the start of an operation.
func (j *Journal) Begin(ctx context.Context, id, kind string, args []string) error {
	if args == nil {
		args = []string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("begin operation: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO operations (id, kind, args, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, kind, string(argsJSON), StatusRunning, j.timestamp())
	if err != nil {
		return fmt.Errorf("begin operation: %w", err)
	}
	return nil
}

// Step appends an executed step to an operation.
func (j *Journal) Step(ctx context.Context, id, kind, path, to string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO steps (op_id, seq, kind, path, target)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM steps WHERE op_id = ?), ?, ?, ?)
	`, id, id, kind, path, to)
	if err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	return nil
}

// Finish marks an operation ok, or failed with err.
func (j *Journal) Finish(ctx context.Context, id string, opErr error) error {
	status, code, msg := StatusOK, "", ""
	if opErr != nil {
		status, code, msg = StatusFailed, string(diag.CodeOf(opErr)), opErr.Error()
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE operations
		SET status = ?, error_code = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, status, code, msg, j.timestamp(), id)
	if err != nil {
		return fmt.Errorf("finish operation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish operation: unknown operation %s", id)
	}
	return nil
}
