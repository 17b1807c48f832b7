package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/tui/state"
)

var tabOrder = []constants.SessionState{
	constants.StateJourney,
	constants.StatePrayers,
	constants.StateSettings,
}

func cycle(current constants.SessionState, step int) (constants.SessionState, bool) {
	for i, s := range tabOrder {
		if s == current {
			return tabOrder[(i+step+len(tabOrder))%len(tabOrder)], true
		}
	}
	// sub-states (forms, content) do not switch with tab
	return current, false
}

// HandleGlobalKeys handles global key presses
func HandleGlobalKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Quitting = true
		return true, tea.Quit
	case "q":
		if m.State == constants.StateContent {
			m.State = constants.StateJourney
			return true, nil
		}
		m.Quitting = true
		return true, tea.Quit
	case "?":
		m.Help.ShowAll = !m.Help.ShowAll
		return true, nil
	case "tab":
		next, ok := cycle(m.State, 1)
		if ok {
			m.State = next
			m.Status = ""
		}
		return ok, nil
	case "shift+tab":
		prev, ok := cycle(m.State, -1)
		if ok {
			m.State = prev
			m.Status = ""
		}
		return ok, nil
	}
	return false, nil
}
