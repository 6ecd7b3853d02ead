package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/consoleapp/internal/app"
	"github.com/roach88/consoleapp/internal/config"
	"github.com/roach88/consoleapp/internal/store"
	"github.com/roach88/consoleapp/pkg/console"
)

// RootOptions holds what the root command and its subcommands share.
type RootOptions struct {
	Settings config.Settings
	// Commands is the discovered catalog, in registration order.
	Commands []console.Command
	// Manifest is the manifest path the catalog was configured from, or "".
	Manifest   string
	WorkingDir string
	// Journal and Recorder are nil when no journal is configured.
	Journal  *store.Store
	Recorder *store.Recorder
	Logger   *slog.Logger
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Settings.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Settings.Verbose,
	}
}

// NewRootCommand creates the root command. Built-in commands are added
// first; discovered commands follow in catalog order. A discovered
// command whose name is already taken is not reachable and is skipped; an
// alias that is already taken is dropped.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     app.Name,
		Short:   "Run commands discovered from the class map",
		Version: app.Version(),
		Long: `Run commands discovered from the class map.

Commands are found among registered types whose source file follows the
*Command naming convention, among registered command providers, and among
the providers the project manifest declares.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Settings.Validate(); err != nil {
				return WrapExitError(ExitCommandError, ErrCodeSettings, "invalid settings", err)
			}
			return nil
		},
	}

	// Global flags. They are resolved before cobra runs (see config.Load);
	// defining them here lists them in help and lets cobra accept them.
	config.Flags(cmd.PersistentFlags())

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	for _, c := range opts.Commands {
		if taken(cmd, c.Name()) {
			opts.logger().Warn("command name already registered; skipping", "command", c.Name())
			continue
		}
		sub := newDiscoveredCommand(opts, c)
		sub.Aliases = slices.DeleteFunc(sub.Aliases, func(alias string) bool {
			if alias != c.Name() && !taken(cmd, alias) {
				return false
			}
			opts.logger().Warn("command alias already registered; dropping", "command", c.Name(), "alias", alias)
			return true
		})
		cmd.AddCommand(sub)
	}

	return cmd
}

// taken reports whether name collides with a name or alias of an existing
// subcommand, including cobra's help and completion commands.
func taken(root *cobra.Command, name string) bool {
	switch name {
	case "help", "completion":
		return true
	}
	for _, sub := range root.Commands() {
		if sub.Name() == name || slices.Contains(sub.Aliases, name) {
			return true
		}
	}
	return false
}

// newDiscoveredCommand wraps a discovered command. Flag parsing is left to
// the command: it receives every argument after its name.
func newDiscoveredCommand(opts *RootOptions, c console.Command) *cobra.Command {
	return &cobra.Command{
		Use:                c.Name(),
		Short:              console.DescriptionOf(c),
		Aliases:            slices.Clone(console.AliasesOf(c)),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), c, commandArgs(cmd, args, opts.Settings.Args))
		},
	}
}

// commandArgs returns the arguments following the command name. With flag
// parsing disabled, cobra also passes global flags that preceded the
// command name; the pre-parsed args from config.Load do not carry those.
func commandArgs(cmd *cobra.Command, args, preParsed []string) []string {
	if len(preParsed) > 0 && (preParsed[0] == cmd.Name() || slices.Contains(cmd.Aliases, preParsed[0])) {
		return preParsed[1:]
	}
	return args
}

// run executes c, journaling the invocation and its outcome when a
// recorder is configured. Journal failures are logged, never returned.
func (o *RootOptions) run(ctx context.Context, c console.Command, args []string) error {
	logger := o.logger().With("command", c.Name())

	var inv store.Invocation
	journaled := false
	if o.Recorder != nil {
		var err error
		inv, err = o.Recorder.Begin(ctx, c.Name(), args, o.WorkingDir)
		if err != nil {
			logger.Warn("failed to journal invocation", "error", err)
		} else {
			journaled = true
		}
	}

	logger.Debug("executing command", "args", args)
	err := c.Execute(ctx, args)
	if err != nil {
		err = commandError(c, err)
	}

	if journaled {
		if _, jerr := o.Recorder.End(ctx, inv, GetExitCode(err), err); jerr != nil {
			logger.Warn("failed to journal completion", "error", jerr)
		}
	}
	return err
}

// commandError gives a command's error an exit code. Commands may return
// an *ExitError to choose their own.
func commandError(c console.Command, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return WrapExitError(ExitFailure, ErrCodeCommand, fmt.Sprintf("command %q failed", c.Name()), err)
}
