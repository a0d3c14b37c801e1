package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/planwright/blockplan/pkg/rules"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// InventoryModel - Interactive room inventory form
// =============================================================================

// inventoryRow is one adjustable room-type count.
type inventoryRow struct {
	Type     rules.RoomType
	Category rules.Category
	Count    int
}

// InventoryModel is the bubbletea model for picking a room inventory.
type InventoryModel struct {
	Rows      []inventoryRow
	Cursor    int
	Confirmed bool
}

// NewInventoryModel creates an inventory form over the registry's room
// types, seeded with any existing counts.
func NewInventoryModel(reg *rules.Registry, seed map[rules.RoomType]int) InventoryModel {
	m := InventoryModel{}
	for _, t := range reg.Types() {
		rec, _ := reg.Lookup(t)
		m.Rows = append(m.Rows, inventoryRow{
			Type:     t,
			Category: rec.Category,
			Count:    seed[t],
		})
	}
	return m
}

// Inventory returns the selected counts, omitting zero-count types.
// Returns nil when the form was aborted.
func (m InventoryModel) Inventory() map[rules.RoomType]int {
	if !m.Confirmed {
		return nil
	}
	inv := make(map[rules.RoomType]int)
	for _, row := range m.Rows {
		if row.Count > 0 {
			inv[row.Type] = row.Count
		}
	}
	return inv
}

func (m InventoryModel) total() int {
	n := 0
	for _, row := range m.Rows {
		n += row.Count
	}
	return n
}

func (m InventoryModel) Init() tea.Cmd {
	return nil
}

func (m InventoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case "right", "l", "+", "=":
			m.Rows[m.Cursor].Count++
		case "left", "h", "-":
			if m.Rows[m.Cursor].Count > 0 {
				m.Rows[m.Cursor].Count--
			}
		case "0":
			m.Rows[m.Cursor].Count = 0
		case "enter":
			if m.total() == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m InventoryModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Room Inventory"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ adjust  0 clear  ⏎ solve  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, row := range m.Rows {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		count := fmt.Sprintf("%d", row.Count)
		if row.Count == 0 {
			count = "—"
		}
		rows = append(rows, []string{cursor, string(row.Type), string(row.Category), count})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Room type", "Category", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				if m.Rows[row].Count > 0 {
					return listSelectedStyle
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorDim)
			}
			if m.Rows[row].Count > 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d rooms selected", m.total())))

	return b.String()
}

// pickInventory runs the inventory form and returns the selected counts.
// Returns nil when the user aborts.
func pickInventory(reg *rules.Registry, seed map[rules.RoomType]int) (map[rules.RoomType]int, error) {
	model := NewInventoryModel(reg, seed)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("inventory form: %w", err)
	}
	m, ok := final.(InventoryModel)
	if !ok {
		return nil, fmt.Errorf("inventory form returned unexpected model")
	}
	return m.Inventory(), nil
}
