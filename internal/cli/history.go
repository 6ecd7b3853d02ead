package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/consoleapp/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	Command string
	Limit   int
}

// HistoryEntry is one journaled command execution.
type HistoryEntry struct {
	ID         string   `json:"id"`
	Command    string   `json:"command"`
	Args       []string `json:"args"`
	WorkingDir string   `json:"working_dir,omitempty"`
	Seq        int64    `json:"seq"`
	Pending    bool     `json:"pending,omitempty"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled command executions",
		Long: `Show command executions recorded in the journal, oldest first.

Requires --journal (or CONSOLE_JOURNAL). An execution without an exit code
was interrupted before it completed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Command, "command", "", "only show executions of this command")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "show at most this many of the most recent executions (0 for all)")

	return cmd
}

func runHistory(rootOpts *RootOptions, opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	if rootOpts.Journal == nil {
		return NewExitError(ExitCommandError, ErrCodeJournal, "no journal configured: set --journal or CONSOLE_JOURNAL")
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid limit %d: must not be negative", opts.Limit))
	}

	records, err := rootOpts.Journal.ReadHistory(cmd.Context(), store.HistoryQuery{
		Command: opts.Command,
		Limit:   opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeJournal, "read history", err)
	}
	formatter.VerboseLog("Read %d record(s)", len(records))

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, toHistoryEntry(r))
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	return formatter.Success(renderHistory(entries))
}

func toHistoryEntry(r store.Record) HistoryEntry {
	e := HistoryEntry{
		ID:         r.Invocation.ID,
		Command:    r.Invocation.Command,
		Args:       r.Invocation.Args,
		WorkingDir: r.Invocation.WorkingDir,
		Seq:        r.Invocation.Seq,
		Pending:    r.Pending(),
	}
	if r.Completion != nil {
		code := r.Completion.ExitCode
		e.ExitCode = &code
		e.Error = r.Completion.Error
	}
	return e
}

func renderHistory(entries []HistoryEntry) string {
	if len(entries) == 0 {
		return "No executions recorded"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Seq", "Command", "Args", "Exit", "Error"})
	for _, e := range entries {
		exit := "-"
		if e.ExitCode != nil {
			exit = strconv.Itoa(*e.ExitCode)
		}
		t.AppendRow(table.Row{e.Seq, e.Command, strings.Join(e.Args, " "), exit, e.Error})
	}

	return fmt.Sprintf("%s\n%s", t.Render(), plural(len(entries), "execution"))
}
