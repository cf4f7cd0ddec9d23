package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Operation is a journaled mutation.
type Operation struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Args       []string  `json:"args"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Steps      []Step    `json:"steps"`
}

// Step is one executed step of an operation.
type Step struct {
	Seq  int    `json:"seq"`
	Kind string `json:"kind"`
	Path string `json:"path"`
	To   string `json:"to,omitempty"`
}

// Recent returns up to limit operations, newest first, with their steps.
// A limit <= 0 returns all operations.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, args, status, error_code, error, started_at, finished_at
		FROM operations
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var (
			op                Operation
			args              string
			started, finished string
		)
		if err := rows.Scan(&op.ID, &op.Kind, &args, &op.Status, &op.ErrorCode, &op.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &op.Args); err != nil {
			return nil, fmt.Errorf("decode args of %s: %w", op.ID, err)
		}
		if op.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		if op.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	for i := range ops {
		steps, err := j.steps(ctx, ops[i].ID)
		if err != nil {
			return nil, err
		}
		ops[i].Steps = steps
	}
	return ops, nil
}

func (j *Journal) steps(ctx context.Context, id string) ([]Step, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, path, target
		FROM steps
		WHERE op_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var s Step
		if err := rows.Scan(&s.Seq, &s.Kind, &s.Path, &s.To); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
