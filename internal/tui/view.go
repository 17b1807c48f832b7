package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sirr/internal/constants"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content string

	switch m.State {
	case constants.StateJourney:
		content = m.JourneyModel.View()
	case constants.StatePrayers:
		content = m.PrayersModel.View()
	case constants.StateSettings:
		content = m.SettingsModel.View()
	case constants.StateContent:
		content = m.ContentModel.View()
	case constants.StateEditSettings, constants.StateEditNotification:
		content = docStyle.Render(m.Form.View())
		if m.FormError != "" {
			content = lipgloss.JoinVertical(lipgloss.Left, content, dangerStyle.Render(m.FormError))
		}
	}

	var banner string
	if m.Warning != "" {
		banner = bannerStyle.Render(m.Warning)
	}
	var status string
	if m.Status != "" {
		status = statusStyle.Render(m.Status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		content,
		status,
		m.Help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.State
	switch active {
	case constants.StateContent:
		active = constants.StateJourney
	case constants.StateEditSettings:
		active = constants.StateSettings
	case constants.StateEditNotification:
		active = constants.StatePrayers
	}

	var tabs []string
	tabTitles := []struct {
		title string
		state constants.SessionState
	}{
		{"Journey", constants.StateJourney},
		{"Prayers", constants.StatePrayers},
		{"Settings", constants.StateSettings},
	}
	for _, t := range tabTitles {
		if active == t.state {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
