package state

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/prayertimes"
	"github.com/julianstephens/sirr/internal/tui/components/content"
	"github.com/julianstephens/sirr/internal/tui/components/journey"
	"github.com/julianstephens/sirr/internal/tui/components/prayers"
	"github.com/julianstephens/sirr/internal/tui/components/settings"
	"github.com/julianstephens/sirr/internal/utils"
)

// SettingsFormModel represents the form model for settings
type SettingsFormModel struct {
	UnlockCutoff         string
	Timezone             string
	NotificationsEnabled bool
	DefaultOffsetMin     int
	AlarmsExact          bool
	FiqhMethod           int
	Latitude             string
	Longitude            string
	DataRetentionDays    string
}

// NotificationFormModel represents the alarm dialog of one prayer
type NotificationFormModel struct {
	Name    models.PrayerName
	Enabled bool
	Offset  int
}

// Model represents the shared state for the TUI
type Model struct {
	Ctx              *cli.Context
	State            constants.SessionState
	PreviousState    constants.SessionState
	Keys             KeyMap
	Help             help.Model
	JourneyModel     journey.Model
	PrayersModel     prayers.Model
	SettingsModel    settings.Model
	ContentModel     content.Model
	ContentDay       int // day shown in the content pane
	Form             *huh.Form
	SettingsForm     *SettingsFormModel
	NotificationForm *NotificationFormModel
	PrayerSource     prayertimes.Source
	Quitting         bool
	Width            int
	Height           int
	Warning          string // banner shown above every view
	Status           string // result of the last action
	FormError        string // Error message to display for form operations
	WakeSeq          int    // identifies the pending unlock wake
}

// New creates a new state Model and loads the first snapshot.
func New(ctx *cli.Context) (Model, error) {
	current, err := ctx.Settings()
	if err != nil {
		return Model{}, err
	}

	m := Model{
		Ctx:           ctx,
		State:         constants.StateJourney,
		Keys:          DefaultKeyMap(),
		Help:          help.New(),
		JourneyModel:  journey.New(0, 0),
		PrayersModel:  prayers.New(0, 0),
		SettingsModel: settings.New(current, 0, 0),
		ContentModel:  content.New(0, 0),
	}
	if err := m.ReloadJourney(); err != nil {
		return Model{}, err
	}
	if err := m.ReloadPrayers(); err != nil {
		return Model{}, err
	}
	m.UpdateWarnings()
	return m, nil
}

// Settings reads the current settings, falling back to defaults.
func (m *Model) Settings() models.Settings {
	s, err := m.Ctx.Settings()
	if err != nil {
		m.Status = "Failed to load settings: " + err.Error()
		return models.DefaultSettings()
	}
	return s
}

func (m *Model) location(s models.Settings) *time.Location {
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ReloadJourney takes a fresh snapshot of every day.
func (m *Model) ReloadJourney() error {
	s := m.Settings()
	engine, err := m.Ctx.Unlock(s)
	if err != nil {
		return err
	}
	bg := context.Background()
	days, err := engine.Snapshot(bg)
	if err != nil {
		return fmt.Errorf("failed to load journey: %w", err)
	}
	percent, err := engine.ProgressPercent(bg)
	if err != nil {
		return fmt.Errorf("failed to compute progress: %w", err)
	}
	status, err := m.Ctx.Store.GetRamadanStatus(bg)
	if err != nil {
		return fmt.Errorf("failed to read ramadan status: %w", err)
	}
	m.JourneyModel.SetDays(days, percent, status.CurrentDay, status.Active, m.location(s))
	return nil
}

// ReloadPrayers re-reads today's records.
func (m *Model) ReloadPrayers() error {
	s := m.Settings()
	tracker := m.Ctx.Tracker(s)
	bg := context.Background()
	list, err := tracker.Today(bg)
	if err != nil {
		return err
	}
	date := tracker.Date()
	hijri, _ := m.Ctx.PrayerTimes(s).Hijri(bg, date)
	m.PrayersModel.SetPrayers(list, date, hijri, m.Ctx.Now(s).Now())
	return nil
}

// ReloadSettings refreshes the settings view.
func (m *Model) ReloadSettings() {
	m.SettingsModel.SetSettings(m.Settings())
}
