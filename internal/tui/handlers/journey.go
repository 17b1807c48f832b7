package handlers

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/tui/components/content"
	"github.com/julianstephens/sirr/internal/tui/components/journey"
	"github.com/julianstephens/sirr/internal/tui/state"
)

// HandleJourneyMessages handles messages from the journey and content panes
func HandleJourneyMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case journey.OpenDayMsg:
		s := m.Settings()
		engine, err := m.Ctx.Unlock(s)
		if err != nil {
			m.Status = err.Error()
			return true, nil
		}
		bg := context.Background()
		unlocked, err := engine.IsUnlocked(bg, msg.Day)
		if err != nil {
			m.Status = err.Error()
			return true, nil
		}
		if !unlocked {
			desc, _ := engine.TimeRemainingDescription(bg, msg.Day)
			m.Status = fmt.Sprintf("Day %d is locked. %s", msg.Day, desc)
			return true, nil
		}
		m.Status = ""
		m.PreviousState = m.State
		m.State = constants.StateContent
		m.ContentDay = msg.Day
		m.ContentModel.Loading(msg.Day)
		return true, LoadContentCmd(m.Ctx, s, msg.Day)

	case journey.CompleteDayMsg:
		s := m.Settings()
		engine, err := m.Ctx.Unlock(s)
		if err != nil {
			m.Status = err.Error()
			return true, nil
		}
		bg := context.Background()
		unlocked, err := engine.IsUnlocked(bg, msg.Day)
		if err != nil {
			m.Status = err.Error()
			return true, nil
		}
		if !unlocked {
			m.Status = fmt.Sprintf("Day %d is locked", msg.Day)
			return true, nil
		}
		if err := engine.Complete(bg, msg.Day); err != nil {
			m.Status = "Failed to complete day: " + err.Error()
			return true, nil
		}
		m.Status = fmt.Sprintf("✓ Day %d completed", msg.Day)
		if err := m.ReloadJourney(); err != nil {
			m.Status = err.Error()
		}
		// completion moves the next unlock, so re-arm
		return true, ScheduleWake(m)

	case content.CloseMsg:
		m.State = constants.StateJourney
		return true, nil
	}
	return false, nil
}

// HandleContentKeys handles keys the content pane does not consume.
func HandleContentKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "c" {
		day := m.ContentDay
		return true, func() tea.Msg { return journey.CompleteDayMsg{Day: day} }
	}
	return false, nil
}
