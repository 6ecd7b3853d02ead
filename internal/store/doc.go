// Package store is the SQLite execution journal of the console.
//
// Every dispatched command writes an invocation before it runs and a
// completion after it returns:
//   - Invocations: command name, raw arguments (JSON array), working directory
//   - Completions: exit code and error text, one per invocation
//
// # Ordering
//
// Records carry a logical clock (seq INTEGER), never timestamps. Every
// query orders by seq ASC, id ASC COLLATE BINARY so that output is the
// same for the same journal. The Recorder resumes the clock from the
// highest seq already stored.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
