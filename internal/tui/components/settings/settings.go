package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
)

type EditSettingsMsg struct{}

type Model struct {
	settings models.Settings
	width    int
	height   int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(25)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			MarginTop(1).
			MarginBottom(1)
)

func New(settings models.Settings, width, height int) Model {
	return Model{
		settings: settings,
		width:    width,
		height:   height,
	}
}

func (m *Model) SetSettings(settings models.Settings) {
	m.settings = settings
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			return m, func() tea.Msg { return EditSettingsMsg{} }
		}
	}
	return m, nil
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label), valueStyle.Render(value))
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var sections []string

	journeyTitle := titleStyle.Render("Journey")
	journeyContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Unlock Cutoff:", m.settings.UnlockCutoff),
		row("Timezone:", m.settings.Timezone),
		row("Ramadan Active:", fmt.Sprintf("%t", m.settings.RamadanActive)),
		row("Current Day:", fmt.Sprintf("%d", m.settings.CurrentDay)),
	)
	sections = append(sections, sectionStyle.Render(journeyTitle+"\n"+journeyContent))

	prayerTitle := titleStyle.Render("Prayer Times")
	prayerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Calculation Method:", constants.FiqhMethods[m.settings.FiqhMethod]),
		row("Location:", fmt.Sprintf("%.4f, %.4f", m.settings.Latitude, m.settings.Longitude)),
		row("Keep Records (days):", fmt.Sprintf("%d", m.settings.DataRetentionDays)),
	)
	sections = append(sections, sectionStyle.Render(prayerTitle+"\n"+prayerContent))

	notifTitle := titleStyle.Render("Notification Settings")
	notifContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Enabled:", fmt.Sprintf("%t", m.settings.NotificationsEnabled)),
		row("Default Alarm:", models.OffsetLabel(m.settings.DefaultOffsetMin)),
		row("Exact Alarms:", fmt.Sprintf("%t", m.settings.AlarmsExact)),
	)
	sections = append(sections, sectionStyle.Render(notifTitle+"\n"+notifContent))

	helpText := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		MarginTop(2).
		Render("Press 'e' to edit settings")

	sections = append(sections, helpText)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(2, 4).Render(content),
	)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
