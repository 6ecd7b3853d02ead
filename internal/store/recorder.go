package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Clock issues logical sequence numbers.
type Clock interface {
	Next() int64
}

// IDGenerator issues record identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SeqClock is a monotonic logical clock starting after a given value.
type SeqClock struct {
	mu  sync.Mutex
	seq int64
}

// NewSeqClock creates a clock whose first Next returns after+1.
func NewSeqClock(after int64) *SeqClock {
	return &SeqClock{seq: after}
}

// Next returns the next sequence number.
func (c *SeqClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Recorder journals command executions.
type Recorder struct {
	store *Store
	clock Clock
	ids   IDGenerator
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock replaces the clock resumed from the journal.
func WithClock(c Clock) RecorderOption {
	return func(r *Recorder) { r.clock = c }
}

// WithIDs replaces the UUIDv7 generator.
func WithIDs(g IDGenerator) RecorderOption {
	return func(r *Recorder) { r.ids = g }
}

// NewRecorder creates a Recorder over s. Unless WithClock is given, the
// clock resumes after the highest seq already stored.
func NewRecorder(ctx context.Context, s *Store, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{store: s, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		seq, err := s.MaxSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("resume clock: %w", err)
		}
		r.clock = NewSeqClock(seq)
	}
	return r, nil
}

// Begin writes the invocation of command with args.
func (r *Recorder) Begin(ctx context.Context, command string, args []string, workingDir string) (Invocation, error) {
	inv := Invocation{
		ID:         r.ids.Generate(),
		Command:    command,
		Args:       args,
		WorkingDir: workingDir,
		Seq:        r.clock.Next(),
	}
	if err := r.store.WriteInvocation(ctx, inv); err != nil {
		return Invocation{}, err
	}
	return inv, nil
}

// End writes the completion of inv. A nil runErr is a success.
func (r *Recorder) End(ctx context.Context, inv Invocation, exitCode int, runErr error) (Completion, error) {
	comp := Completion{
		ID:           r.ids.Generate(),
		InvocationID: inv.ID,
		ExitCode:     exitCode,
		Seq:          r.clock.Next(),
	}
	if runErr != nil {
		comp.Error = runErr.Error()
	}
	if err := r.store.WriteCompletion(ctx, comp); err != nil {
		return Completion{}, err
	}
	return comp, nil
}
