// Package journey renders the 30 day curriculum grid.
package journey

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/unlock"
)

// OpenDayMsg asks for a day's content to be shown.
type OpenDayMsg struct{ Day int }

// CompleteDayMsg asks for a day to be marked completed.
type CompleteDayMsg struct{ Day int }

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	openStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	lockedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	barFull  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("█")
	barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("░")
)

type Model struct {
	days    []unlock.DayState
	percent int
	pointer int
	active  bool
	loc     *time.Location
	cursor  int
	width   int
	height  int
}

func New(width, height int) Model {
	return Model{width: width, height: height, loc: time.Local}
}

// SetDays replaces the rendered state. The cursor stays on the same day.
func (m *Model) SetDays(days []unlock.DayState, percent, pointer int, active bool, loc *time.Location) {
	m.days = days
	m.percent = percent
	m.pointer = pointer
	m.active = active
	if loc != nil {
		m.loc = loc
	}
	if m.cursor >= len(days) {
		m.cursor = 0
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the day under the cursor.
func (m Model) Selected() (unlock.DayState, bool) {
	if m.cursor < 0 || m.cursor >= len(m.days) {
		return unlock.DayState{}, false
	}
	return m.days[m.cursor], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.days)-1 {
				m.cursor++
			}
		case "enter":
			if d, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenDayMsg{Day: d.Day} }
			}
		case "c":
			if d, ok := m.Selected(); ok {
				return m, func() tea.Msg { return CompleteDayMsg{Day: d.Day} }
			}
		}
	}
	return m, nil
}

func (m Model) progressBar(width int) string {
	filled := m.percent * width / 100
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, width-filled)
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	status := "Ramadan has not started"
	if m.active {
		status = fmt.Sprintf("Ramadan day %d of %d", m.pointer, constants.TotalDays)
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Journey"),
		status,
		fmt.Sprintf("%s %d%%", m.progressBar(30), m.percent),
		"",
	)

	// keep the cursor in view
	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.days) {
		end = len(m.days)
	}

	var rows []string
	for i := start; i < end; i++ {
		d := m.days[i]
		var line string
		switch {
		case d.Completed:
			at := ""
			if d.CompletedAt != nil {
				at = d.CompletedAt.In(m.loc).Format("Jan 2 15:04")
			}
			line = completedStyle.Render(fmt.Sprintf("✓ Day %2d  %s", d.Day, at))
		case d.Unlocked:
			line = openStyle.Render(fmt.Sprintf("○ Day %2d  open", d.Day))
		default:
			line = lockedStyle.Render(fmt.Sprintf("🔒 Day %2d  %s", d.Day, d.Description))
		}
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(rows, "\n")),
	)
}
