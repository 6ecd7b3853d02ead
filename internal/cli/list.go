package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/consoleapp/pkg/console"
)

// CommandInfo describes one catalog entry.
type CommandInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Manifest string        `json:"manifest,omitempty"`
	Commands []CommandInfo `json:"commands"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered commands",
		Long: `List the discovered commands in catalog order.

Directly registered commands come first, then the commands of discovered
providers, then those of providers declared in the manifest. A name listed
twice is reachable only under its first entry.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}

	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result := ListResult{
		Manifest: opts.Manifest,
		Commands: describe(opts.Commands),
	}
	if opts.Manifest != "" {
		formatter.VerboseLog("Manifest: %s", opts.Manifest)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(renderCommands(result.Commands))
}

func describe(cmds []console.Command) []CommandInfo {
	infos := make([]CommandInfo, 0, len(cmds))
	for _, c := range cmds {
		infos = append(infos, CommandInfo{
			Name:        c.Name(),
			Description: console.DescriptionOf(c),
			Aliases:     console.AliasesOf(c),
		})
	}
	return infos
}

// renderCommands renders the catalog as a table followed by a count.
func renderCommands(infos []CommandInfo) string {
	if len(infos) == 0 {
		return "No commands found"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Command", "Aliases", "Description"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Name, strings.Join(info.Aliases, ", "), info.Description})
	}

	return fmt.Sprintf("%s\n%s", t.Render(), plural(len(infos), "command"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
