package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Record is one journal entry: an invocation and, once the command
// returned, its completion.
type Record struct {
	Invocation Invocation  `json:"invocation"`
	Completion *Completion `json:"completion,omitempty"`
}

// Pending reports whether the command has not completed (still running,
// or the process died).
func (r Record) Pending() bool {
	return r.Completion == nil
}

// HistoryQuery selects journal records.
type HistoryQuery struct {
	// Command restricts the history to one command name.
	Command string
	// Limit keeps only the most recent records; zero means all.
	Limit int
}

// ReadInvocation retrieves a single invocation by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadInvocation(ctx context.Context, id string) (Invocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, command, args, working_dir, seq
		FROM invocations
		WHERE id = ?
	`, id)

	var inv Invocation
	var argsJSON string
	if err := row.Scan(&inv.ID, &inv.Command, &argsJSON, &inv.WorkingDir, &inv.Seq); err != nil {
		return Invocation{}, err
	}
	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return Invocation{}, err
	}
	inv.Args = args
	return inv, nil
}

// ReadCompletion retrieves the completion of an invocation.
// Returns sql.ErrNoRows if the invocation has not completed.
func (s *Store) ReadCompletion(ctx context.Context, invocationID string) (Completion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, invocation_id, exit_code, error, seq
		FROM completions
		WHERE invocation_id = ?
	`, invocationID)

	var comp Completion
	if err := row.Scan(&comp.ID, &comp.InvocationID, &comp.ExitCode, &comp.Error, &comp.Seq); err != nil {
		return Completion{}, err
	}
	return comp, nil
}

// ReadHistory returns journal records ordered by seq ASC, id ASC.
// With a limit, the most recent records are kept, still in ascending order.
func (s *Store) ReadHistory(ctx context.Context, q HistoryQuery) ([]Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	// The inner query picks the newest records; the outer restores order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, args, working_dir, seq,
		       c_id, c_exit_code, c_error, c_seq
		FROM (
			SELECT i.id, i.command, i.args, i.working_dir, i.seq,
			       c.id AS c_id, c.exit_code AS c_exit_code, c.error AS c_error, c.seq AS c_seq
			FROM invocations i
			LEFT JOIN completions c ON c.invocation_id = i.id
			WHERE ? = '' OR i.command = ?
			ORDER BY i.seq DESC, i.id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, q.Command, q.Command, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

// MaxSeq returns the highest seq in the journal, or 0 when it is empty.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM invocations
			UNION ALL
			SELECT seq FROM completions
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var argsJSON string
	var cID, cError sql.NullString
	var cExit, cSeq sql.NullInt64

	inv := &rec.Invocation
	if err := rows.Scan(
		&inv.ID, &inv.Command, &argsJSON, &inv.WorkingDir, &inv.Seq,
		&cID, &cExit, &cError, &cSeq,
	); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}

	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return Record{}, err
	}
	inv.Args = args

	if cID.Valid {
		rec.Completion = &Completion{
			ID:           cID.String,
			InvocationID: inv.ID,
			ExitCode:     int(cExit.Int64),
			Error:        cError.String,
			Seq:          cSeq.Int64,
		}
	}
	return rec, nil
}
