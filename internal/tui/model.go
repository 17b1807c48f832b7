// Package tui is the interactive terminal interface: the journey grid, today's
// prayers and the settings dialog.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/tui/handlers"
	"github.com/julianstephens/sirr/internal/tui/state"
)

type Model struct {
	state.Model
}

func NewModel(ctx *cli.Context) (Model, error) {
	s, err := state.New(ctx)
	if err != nil {
		return Model{}, err
	}
	s.WakeSeq = 1
	return Model{Model: s}, nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.Keys.Tab, m.Keys.Quit, m.Keys.Help}
	switch m.State {
	case constants.StateJourney:
		keys = append(keys, m.Keys.Enter, m.Keys.Complete)
	case constants.StatePrayers:
		keys = append(keys, m.Keys.Enter, m.Keys.Late, m.Keys.Alarm, m.Keys.Refresh)
	case constants.StateSettings:
		keys = append(keys, m.Keys.Edit)
	case constants.StateContent:
		keys = []key.Binding{m.Keys.Back, m.Keys.Complete}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.Keys.Tab, m.Keys.ShiftTab, m.Keys.Quit, m.Keys.Help}
	navigation := []key.Binding{m.Keys.Up, m.Keys.Down, m.Keys.Enter, m.Keys.Back}

	var actions []key.Binding
	switch m.State {
	case constants.StateJourney, constants.StateContent:
		actions = []key.Binding{m.Keys.Complete}
	case constants.StatePrayers:
		actions = []key.Binding{m.Keys.Late, m.Keys.Alarm, m.Keys.Refresh}
	case constants.StateSettings:
		actions = []key.Binding{m.Keys.Edit}
	}

	return [][]key.Binding{global, navigation, actions}
}

// Init loads today's prayer times (cached when fresh) and arms the first
// wake.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		handlers.WakeCmd(&m.Model),
		handlers.RefreshPrayersCmd(m.Ctx, m.Settings(), false),
	)
}
