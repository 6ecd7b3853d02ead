package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a journal in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testInvocation creates an invocation with minimal required fields.
func testInvocation(id, command string, seq int64, args ...string) Invocation {
	return Invocation{
		ID:      id,
		Command: command,
		Args:    args,
		Seq:     seq,
	}
}

// testCompletion creates a successful completion.
func testCompletion(id, invocationID string, seq int64) Completion {
	return Completion{
		ID:           id,
		InvocationID: invocationID,
		Seq:          seq,
	}
}
