package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/planwright/blockplan/pkg/rules"
)

// rulesCommand creates the ruleset inspection command.
func (c *CLI) rulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate rule sets",
	}

	cmd.AddCommand(c.rulesShowCommand())
	cmd.AddCommand(c.rulesValidateCommand())

	return cmd
}

// rulesShowCommand creates the "rules show" subcommand.
func (c *CLI) rulesShowCommand() *cobra.Command {
	var (
		rulesPath string
		treatment int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the room types of a ruleset",
		Long: `Show the room types of a ruleset with their size bounds and rule counts.

Size bounds are tier-dependent; --treatment-rooms selects the tier.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(rulesPath)
			if err != nil {
				return err
			}
			printRuleset(reg, treatment)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "ruleset TOML file (default: embedded dental ruleset)")
	cmd.Flags().IntVar(&treatment, "treatment-rooms", 6, "treatment-room count for tier resolution")

	return cmd
}

// rulesValidateCommand creates the "rules validate" subcommand.
func (c *CLI) rulesValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <ruleset.toml>",
		Short: "Validate a ruleset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rules.Load(args[0])
			if err != nil {
				printError("%s is not a valid ruleset", args[0])
				return err
			}
			printSuccess("%s is valid (%d room types)", args[0], reg.Len())
			return nil
		},
	}
}

func loadRegistry(path string) (*rules.Registry, error) {
	if path == "" {
		return rules.Dental(), nil
	}
	return rules.Load(path)
}

// printRuleset renders the registry as a table.
func printRuleset(reg *rules.Registry, treatmentRooms int) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := [][]string{}
	for _, t := range reg.Types() {
		rec, _ := reg.Lookup(t)
		rows = append(rows, []string{
			string(rec.Type),
			string(rec.Category),
			formatDims(rec.Size.ResolveMin(treatmentRooms)),
			formatDims(rec.Size.ResolveMax(treatmentRooms)),
			formatEntries(rec.EntryTiers, treatmentRooms),
			fmt.Sprintf("%d", ruleCount(rec)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Category", "Min size", "Max size", "Entries", "Rules").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
	printDetail("Sizes resolved for %d treatment rooms.", treatmentRooms)
}

func formatDims(d rules.Dims, ok bool) string {
	if !ok {
		return "—"
	}
	return fmt.Sprintf(`%d"x%d"`, d.Width, d.Length)
}

func formatEntries(tiers []rules.EntryTier, treatmentRooms int) string {
	tier, ok := rules.ResolveEntryTier(tiers, treatmentRooms)
	if !ok {
		return "—"
	}
	if tier.MaxEntries == nil {
		return fmt.Sprintf("%d+", tier.MinEntries)
	}
	if *tier.MaxEntries == tier.MinEntries {
		return fmt.Sprintf("%d", tier.MinEntries)
	}
	return fmt.Sprintf("%d-%d", tier.MinEntries, *tier.MaxEntries)
}

func ruleCount(rec *rules.RoomTypeRule) int {
	n := len(rec.EntryRules) + len(rec.Visibility) + len(rec.Clearances.Ideal)
	n += len(rec.Adjacency.Direct) + len(rec.Adjacency.Preferred) + len(rec.Adjacency.Separation)
	if rec.CenterBias != nil {
		n++
	}
	return n
}
