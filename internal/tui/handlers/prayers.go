package handlers

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/prayer"
	"github.com/julianstephens/sirr/internal/tui/components/prayers"
	"github.com/julianstephens/sirr/internal/tui/state"
)

func toggle(m *state.Model, name models.PrayerName, fn func(*prayer.Tracker, context.Context, models.PrayerName) (bool, error)) tea.Cmd {
	s := m.Settings()
	ok, err := fn(m.Ctx.Tracker(s), context.Background(), name)
	switch {
	case err != nil:
		m.Status = fmt.Sprintf("Failed to update %s: %v", name, err)
		return nil
	case !ok:
		m.Status = fmt.Sprintf("%s: not yet time", name)
		return nil
	}
	m.Status = ""
	if err := m.ReloadPrayers(); err != nil {
		m.Status = err.Error()
	}
	return RescheduleCmd(m.Ctx, s)
}

// HandlePrayerMessages handles messages from the prayers component
func HandlePrayerMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case prayers.ToggleOfferedMsg:
		return true, toggle(m, msg.Name, (*prayer.Tracker).ToggleOffered)
	case prayers.ToggleLateMsg:
		return true, toggle(m, msg.Name, (*prayer.Tracker).ToggleLate)
	case prayers.RefreshMsg:
		m.Status = "Refreshing prayer times..."
		return true, RefreshPrayersCmd(m.Ctx, m.Settings(), true)
	case prayers.EditNotificationMsg:
		s := m.Settings()
		tracker := m.Ctx.Tracker(s)
		p, err := m.Ctx.Store.GetPrayer(context.Background(), tracker.Date(), msg.Name)
		if err != nil {
			m.Status = fmt.Sprintf("Failed to load %s: %v", msg.Name, err)
			return true, nil
		}
		m.NotificationForm = &state.NotificationFormModel{
			Name:    p.Name,
			Enabled: p.NotificationEnabled,
			Offset:  p.NotificationOffset,
		}
		m.Form = NewNotificationForm(m.NotificationForm)
		m.FormError = ""
		m.State = constants.StateEditNotification
		return true, m.Form.Init()
	}
	return false, nil
}

// HandleEditNotificationState handles the alarm dialog
func HandleEditNotificationState(m *state.Model, msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.FormError = ""
		m.State = constants.StatePrayers
		return nil
	}

	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}
	cmds = append(cmds, cmd)

	switch m.Form.State {
	case huh.StateCompleted:
		s := m.Settings()
		fm := m.NotificationForm
		if err := m.Ctx.Tracker(s).UpdateNotification(context.Background(), fm.Name, fm.Enabled, fm.Offset); err != nil {
			m.FormError = "Failed to update alarm: " + err.Error()
			m.Form.State = huh.StateNormal
			return tea.Batch(cmds...)
		}
		m.FormError = ""
		if err := m.ReloadPrayers(); err != nil {
			m.Status = err.Error()
		}
		m.State = constants.StatePrayers
		cmds = append(cmds, RescheduleCmd(m.Ctx, s))
	case huh.StateAborted:
		m.FormError = ""
		m.State = constants.StatePrayers
	}
	return tea.Batch(cmds...)
}
