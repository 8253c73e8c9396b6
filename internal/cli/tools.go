package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/klauern/amt/internal/launcher"
	"github.com/klauern/amt/internal/solver"
)

// toolEntry describes one tool for display.
type toolEntry struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

func toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List builtin solvers and known external merge tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format: table, json",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return listTools(os.Stdout, cmd.String("format"))
		},
	}
}

func toolEntries() []toolEntry {
	entries := lo.Map(solver.All(), func(info solver.Info, _ int) toolEntry {
		return toolEntry{Name: info.Name, Kind: "builtin", Description: info.Description}
	})
	entries = append(entries,
		toolEntry{Name: launcher.ToolJavaImports, Kind: "builtin", Description: "Merge the import section of Java files"},
		toolEntry{Name: launcher.ToolKotlinImports, Kind: "builtin", Description: "Merge the import section of Kotlin files"},
	)
	for _, name := range launcher.KnownTools() {
		entries = append(entries, toolEntry{Name: name, Kind: "external", Description: "Known command line"})
	}
	return entries
}

// listTools writes the tool list in the given format.
func listTools(w io.Writer, format string) error {
	entries := toolEntries()

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "table":
		fmt.Fprintf(w, "%-18s %-10s %s\n", "TOOL", "KIND", "DESCRIPTION")
		fmt.Fprintf(w, "%-18s %-10s %s\n",
			strings.Repeat("-", 18),
			strings.Repeat("-", 10),
			strings.Repeat("-", 40))
		for _, e := range entries {
			fmt.Fprintf(w, "%-18s %-10s %s\n", e.Name, e.Kind, e.Description)
		}
		fmt.Fprintf(w, "\nTotal: %d tool(s)\n", len(entries))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use table or json)", format)
	}
}
