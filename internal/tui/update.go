package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/tui/handlers"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(handlers.WakeMsg); ok {
		return m, handlers.HandleWake(&m.Model, msg)
	}

	switch m.State {
	case constants.StateEditSettings:
		if handled, cmd := handlers.HandleBackgroundMessages(&m.Model, msg); handled {
			return m, cmd
		}
		return m, handlers.HandleEditSettingsState(&m.Model, msg)
	case constants.StateEditNotification:
		if handled, cmd := handlers.HandleBackgroundMessages(&m.Model, msg); handled {
			return m, cmd
		}
		return m, handlers.HandleEditNotificationState(&m.Model, msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		h := msg.Height - 4
		m.JourneyModel.SetSize(msg.Width, h)
		m.PrayersModel.SetSize(msg.Width, h)
		m.SettingsModel.SetSize(msg.Width, h)
		m.ContentModel.SetSize(msg.Width-4, h-2)
		return m, nil
	case tea.KeyMsg:
		if handled, cmd := handlers.HandleGlobalKeys(&m.Model, msg); handled {
			return m, cmd
		}
		if m.State == constants.StateContent {
			if handled, cmd := handlers.HandleContentKeys(&m.Model, msg); handled {
				return m, cmd
			}
		}
	}

	if handled, cmd := handlers.HandleBackgroundMessages(&m.Model, msg); handled {
		return m, cmd
	}
	if handled, cmd := handlers.HandleJourneyMessages(&m.Model, msg); handled {
		return m, cmd
	}
	if handled, cmd := handlers.HandlePrayerMessages(&m.Model, msg); handled {
		return m, cmd
	}
	if handled, cmd := handlers.HandleSettingsMessages(&m.Model, msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.State {
	case constants.StateJourney:
		m.JourneyModel, cmd = m.JourneyModel.Update(msg)
	case constants.StatePrayers:
		m.PrayersModel, cmd = m.PrayersModel.Update(msg)
	case constants.StateSettings:
		m.SettingsModel, cmd = m.SettingsModel.Update(msg)
	case constants.StateContent:
		m.ContentModel, cmd = m.ContentModel.Update(msg)
	}
	return m, cmd
}
