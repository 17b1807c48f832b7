// Package prayers renders today's five prayers.
package prayers

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sirr/internal/models"
)

// ToggleOfferedMsg is the tap action on a prayer.
type ToggleOfferedMsg struct{ Name models.PrayerName }

// ToggleLateMsg is the long-press action on a prayer.
type ToggleLateMsg struct{ Name models.PrayerName }

// EditNotificationMsg opens the alarm dialog of a prayer.
type EditNotificationMsg struct{ Name models.PrayerName }

// RefreshMsg asks for today's times to be fetched again.
type RefreshMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	offeredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

type Model struct {
	prayers []models.Prayer
	date    string
	hijri   string
	now     time.Time
	cursor  int
	width   int
	height  int
}

func New(width, height int) Model {
	return Model{width: width, height: height}
}

func (m *Model) SetPrayers(prayers []models.Prayer, date, hijri string, now time.Time) {
	m.prayers = prayers
	m.date = date
	m.hijri = hijri
	m.now = now
	if m.cursor >= len(prayers) {
		m.cursor = 0
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) selected() (models.Prayer, bool) {
	if m.cursor < 0 || m.cursor >= len(m.prayers) {
		return models.Prayer{}, false
	}
	return m.prayers[m.cursor], true
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
			if m.cursor < len(m.prayers)-1 {
				m.cursor++
			}
		case "r":
			return m, func() tea.Msg { return RefreshMsg{} }
		}
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		switch msg.String() {
		case "enter", " ":
			return m, func() tea.Msg { return ToggleOfferedMsg{Name: p.Name} }
		case "x":
			return m, func() tea.Msg { return ToggleLateMsg{Name: p.Name} }
		case "n":
			return m, func() tea.Msg { return EditNotificationMsg{Name: p.Name} }
		}
	}
	return m, nil
}

func (m Model) row(p models.Prayer) string {
	alarm := "🔕"
	if p.NotificationEnabled {
		alarm = "🔔 " + models.OffsetLabel(p.NotificationOffset)
	}
	text := fmt.Sprintf("%-8s %-7s %s  %s", p.Name, p.NameArabic, p.Time, alarm)

	switch {
	case p.Status.IsOffered():
		at, _ := p.Status.OfferedAt()
		return offeredStyle.Render("✓ " + text + "  offered " + at)
	case p.Status.IsLate():
		return lateStyle.Render("⏱ " + text + "  qaza")
	case !p.HasTimeArrived(m.now):
		return upcomingStyle.Render("· " + text)
	default:
		return pendingStyle.Render("○ " + text)
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	title := "Prayers " + m.date
	if m.hijri != "" {
		title += "  " + m.hijri
	}

	var rows []string
	offered, late := 0, 0
	for i, p := range m.prayers {
		switch {
		case p.Status.IsOffered():
			offered++
		case p.Status.IsLate():
			late++
		}
		line := m.row(p)
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, "No prayer times yet. Press 'r' to fetch them.")
	}

	summary := fmt.Sprintf("%d offered, %d qaza, %d remaining", offered, late, len(m.prayers)-offered-late)
	hint := hintStyle.Render("enter: offered  x: qaza  n: alarm  r: refresh")

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		strings.Join(rows, "\n"),
		"",
		summary,
		"",
		hint,
	))
}
