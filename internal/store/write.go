package store

import (
	"context"
	"fmt"
)

// Invocation records a command about to run.
type Invocation struct {
	ID         string   `json:"id"`
	Command    string   `json:"command"`
	Args       []string `json:"args"`
	WorkingDir string   `json:"working_dir,omitempty"`
	Seq        int64    `json:"seq"`
}

// Completion records how an invocation ended.
type Completion struct {
	ID           string `json:"id"`
	InvocationID string `json:"invocation_id"`
	ExitCode     int    `json:"exit_code"`
	Error        string `json:"error,omitempty"`
	Seq          int64  `json:"seq"`
}

// WriteInvocation inserts an invocation record.
// Uses ON CONFLICT(id) DO NOTHING - duplicate IDs are silently ignored.
func (s *Store) WriteInvocation(ctx context.Context, inv Invocation) error {
	argsJSON, err := marshalArgs(inv.Args)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invocations
		(id, command, args, working_dir, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		inv.ID,
		inv.Command,
		argsJSON,
		inv.WorkingDir,
		inv.Seq,
	)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// WriteCompletion inserts a completion record. Each invocation has at most
// one completion; a second write for the same invocation is ignored.
//
// The invocation referenced by InvocationID must exist (foreign key constraint).
func (s *Store) WriteCompletion(ctx context.Context, comp Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions
		(id, invocation_id, exit_code, error, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		comp.ID,
		comp.InvocationID,
		comp.ExitCode,
		comp.Error,
		comp.Seq,
	)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	return nil
}
