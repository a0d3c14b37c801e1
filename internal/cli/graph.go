package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planwright/blockplan/pkg/connectivity"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/pipeline"
)

// graphCommand creates the connectivity export command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format    string
		output    string
		rulesPath string
	)

	cmd := &cobra.Command{
		Use:   "graph <layout.json>",
		Short: "Export the door-connectivity graph of a solved layout",
		Long: `Export the door-connectivity graph of a solved layout: rooms as nodes,
door connections as edges. The ruleset supplies category colors.

Examples:
  blockplan graph layout.json                      # DOT to stdout
  blockplan graph layout.json --format svg -o connectivity.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol, err := layout.ReadSolutionFile(args[0])
			if err != nil {
				return fmt.Errorf("read layout: %w", err)
			}
			reg, err := loadRegistry(rulesPath)
			if err != nil {
				return err
			}

			graph := connectivity.Build(sol, reg)
			loggerFromContext(cmd.Context()).Debug("built connectivity graph",
				"nodes", len(graph.Nodes), "edges", len(graph.Edges))

			dot := connectivity.ToDOT(graph)
			var data []byte
			switch strings.ToLower(format) {
			case pipeline.FormatDOT:
				data = []byte(dot)
			case pipeline.FormatSVG:
				prog := newProgress(loggerFromContext(cmd.Context()))
				data, err = connectivity.RenderSVG(dot)
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Rendered %d rooms, %d connections", len(graph.Nodes), len(graph.Edges)))
			default:
				return fmt.Errorf("invalid format: %q (must be dot or svg)", format)
			}

			if output == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote connectivity graph")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "ruleset TOML file for category colors")

	return cmd
}
