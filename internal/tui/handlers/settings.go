package handlers

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/location"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/tui/components/settings"
	"github.com/julianstephens/sirr/internal/tui/state"
)

// HandleEditSettingsState handles the edit settings state
func HandleEditSettingsState(m *state.Model, msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.FormError = "" // Clear error on cancel
		m.State = constants.StateSettings
		return nil
	}

	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}
	cmds = append(cmds, cmd)

	switch m.Form.State {
	case huh.StateCompleted:
		// Re-read so the journey state written by a sync is not overwritten
		current, err := m.Ctx.Settings()
		if err != nil {
			m.FormError = "Failed to load settings: " + err.Error()
			m.Form.State = huh.StateNormal
			return tea.Batch(cmds...)
		}
		if err := applySettingsForm(&current, m.SettingsForm); err != nil {
			m.FormError = err.Error()
			m.Form.State = huh.StateNormal
			return tea.Batch(cmds...)
		}
		if err := m.Ctx.Store.SaveSettings(current); err != nil {
			// Store error and stay in form state to allow retry
			m.FormError = "Failed to update settings: " + err.Error()
			m.Form.State = huh.StateNormal
			return tea.Batch(cmds...)
		}
		m.FormError = ""
		m.ReloadSettings()
		if err := m.ReloadJourney(); err != nil {
			m.Status = err.Error()
		}
		m.UpdateWarnings()
		m.State = constants.StateSettings
		// cutoff, timezone and alarm settings all move scheduled instants
		cmds = append(cmds, RescheduleCmd(m.Ctx, current), ScheduleWake(m))
	case huh.StateAborted:
		m.FormError = "" // Clear error on abort
		m.State = constants.StateSettings
	}
	return tea.Batch(cmds...)
}

func applySettingsForm(s *models.Settings, fm *state.SettingsFormModel) error {
	lat, err := strconv.ParseFloat(strings.TrimSpace(fm.Latitude), 64)
	if err != nil {
		return err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fm.Longitude), 64)
	if err != nil {
		return err
	}
	loc := models.Location{Latitude: lat, Longitude: lon}
	if err := location.Validate(loc); err != nil {
		return err
	}
	days, err := strconv.Atoi(fm.DataRetentionDays)
	if err != nil {
		return err
	}

	s.UnlockCutoff = fm.UnlockCutoff
	s.Timezone = fm.Timezone
	s.NotificationsEnabled = fm.NotificationsEnabled
	s.DefaultOffsetMin = fm.DefaultOffsetMin
	s.AlarmsExact = fm.AlarmsExact
	s.FiqhMethod = fm.FiqhMethod
	s.Latitude, s.Longitude = loc.Latitude, loc.Longitude
	s.DataRetentionDays = days
	return nil
}

// HandleSettingsMessages handles messages from the settings component
func HandleSettingsMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg.(type) {
	case settings.EditSettingsMsg:
		currentSettings, err := m.Ctx.Settings()
		if err != nil {
			m.FormError = "Failed to load settings: " + err.Error()
			// Initialize with defaults if loading fails
			currentSettings = models.DefaultSettings()
		} else {
			m.FormError = ""
		}

		m.SettingsForm = NewSettingsFormModel(currentSettings)
		m.Form = NewSettingsForm(m.SettingsForm)
		m.State = constants.StateEditSettings
		return true, m.Form.Init()
	}
	return false, nil
}

// NewSettingsFormModel fills the form from s.
func NewSettingsFormModel(s models.Settings) *state.SettingsFormModel {
	return &state.SettingsFormModel{
		UnlockCutoff:         s.UnlockCutoff,
		Timezone:             s.Timezone,
		NotificationsEnabled: s.NotificationsEnabled,
		DefaultOffsetMin:     s.DefaultOffsetMin,
		AlarmsExact:          s.AlarmsExact,
		FiqhMethod:           s.FiqhMethod,
		Latitude:             strconv.FormatFloat(s.Latitude, 'f', -1, 64),
		Longitude:            strconv.FormatFloat(s.Longitude, 'f', -1, 64),
		DataRetentionDays:    strconv.Itoa(s.DataRetentionDays),
	}
}
