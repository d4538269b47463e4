package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/peerscan/pkg/conflict"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SolutionPicker - Interactive remediation selection
// =============================================================================

// SolutionPicker lets the user choose one solution per conflict, or skip
// the conflict. Conflicts without solutions are shown but cannot be
// selected.
type SolutionPicker struct {
	Conflicts []conflict.Conflict
	Cursor    int

	// Choice holds the chosen solution index per conflict; -1 skips it.
	Choice []int

	Confirmed bool
	Height    int
	Offset    int
}

// NewSolutionPicker preselects the first solution of every conflict.
func NewSolutionPicker(conflicts []conflict.Conflict) SolutionPicker {
	choice := make([]int, len(conflicts))
	for i, c := range conflicts {
		if len(c.Solutions) == 0 {
			choice[i] = -1
		}
	}
	return SolutionPicker{Conflicts: conflicts, Choice: choice, Height: 10}
}

func (m SolutionPicker) Init() tea.Cmd {
	return nil
}

func (m SolutionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Conflicts)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "right", "l", "tab":
			m.cycle(1)
		case "left", "h", "shift+tab":
			m.cycle(-1)
		case " ", "space", "x":
			m.toggle()
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max((msg.Height-6)/2, 3)
	}
	return m, nil
}

// cycle moves the current conflict's choice through its solutions.
func (m *SolutionPicker) cycle(step int) {
	n := len(m.Conflicts[m.Cursor].Solutions)
	if n == 0 || m.Choice[m.Cursor] < 0 {
		return
	}
	m.Choice[m.Cursor] = (m.Choice[m.Cursor] + step + n) % n
}

// toggle skips or restores the current conflict.
func (m *SolutionPicker) toggle() {
	if len(m.Conflicts[m.Cursor].Solutions) == 0 {
		return
	}
	if m.Choice[m.Cursor] < 0 {
		m.Choice[m.Cursor] = 0
	} else {
		m.Choice[m.Cursor] = -1
	}
}

// Selected returns the chosen solutions in conflict order. It is empty
// unless the user confirmed.
func (m SolutionPicker) Selected() []conflict.Solution {
	if !m.Confirmed {
		return nil
	}
	var out []conflict.Solution
	for i, c := range m.Conflicts {
		if j := m.Choice[i]; j >= 0 {
			out = append(out, c.Solutions[j])
		}
	}
	return out
}

func (m SolutionPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Fixes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ conflict  ←/→ solution  space skip  ⏎ apply  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Conflicts))
	for i := m.Offset; i < end; i++ {
		c := m.Conflicts[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := cursor + truncate(c.Message, 90)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")

		var fix string
		switch j := m.Choice[i]; {
		case len(c.Solutions) == 0:
			fix = listDimStyle.Render("no solution found")
		case j < 0:
			fix = listDimStyle.Render("skipped")
		default:
			fix = StyleSuccess.Render(c.Solutions[j].Description)
			if len(c.Solutions) > 1 {
				fix += listDimStyle.Render(fmt.Sprintf("  (%d/%d)", j+1, len(c.Solutions)))
			}
		}
		b.WriteString("    " + iconArrow + " " + fix + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Conflicts))))
	return b.String()
}
