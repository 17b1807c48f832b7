package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sirr/internal/alarm"
	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/content"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/prayertimes"
	"github.com/julianstephens/sirr/internal/tui/state"
	"github.com/julianstephens/sirr/internal/utils"
)

// ContentLoadedMsg carries a day's content (or its placeholder).
type ContentLoadedMsg struct {
	Day     int
	Content models.Content
}

// PrayersRefreshedMsg reports a background prayer time refresh.
type PrayersRefreshedMsg struct {
	Source prayertimes.Source
	Err    error
}

// AlarmsScheduledMsg reports a background reschedule.
type AlarmsScheduledMsg struct {
	Result alarm.Result
	Err    error
}

func offsetOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(constants.NotificationOffsets))
	for _, o := range constants.NotificationOffsets {
		opts = append(opts, huh.NewOption(models.OffsetLabel(o), o))
	}
	return opts
}

func methodOptions() []huh.Option[int] {
	ids := make([]int, 0, len(constants.FiqhMethods))
	for id := range constants.FiqhMethods {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	opts := make([]huh.Option[int], 0, len(ids))
	for _, id := range ids {
		opts = append(opts, huh.NewOption(constants.FiqhMethods[id], id))
	}
	return opts
}

func validateCoordinate(limit float64) func(string) error {
	return func(s string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if f < -limit || f > limit {
			return fmt.Errorf("must be between -%.0f and %.0f", limit, limit)
		}
		return nil
	}
}

// NewSettingsForm creates a new form for editing settings
func NewSettingsForm(fm *state.SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Unlock Cutoff (HH:MM)").
				Description("Once you are caught up, the next day opens at this time").
				Value(&fm.UnlockCutoff).
				Validate(func(s string) error {
					if !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("expected HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name such as Asia/Karachi, or Local").
				Value(&fm.Timezone).
				Validate(func(s string) error {
					if !utils.ValidateTimezone(s) {
						return fmt.Errorf("unknown timezone")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Calculation Method").
				Options(methodOptions()...).
				Value(&fm.FiqhMethod),
			huh.NewInput().
				Title("Latitude").
				Value(&fm.Latitude).
				Validate(validateCoordinate(90)),
			huh.NewInput().
				Title("Longitude").
				Value(&fm.Longitude).
				Validate(validateCoordinate(180)),
			huh.NewInput().
				Title("Keep Prayer Records (days)").
				Value(&fm.DataRetentionDays).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if i < 1 {
						return fmt.Errorf("must be at least 1 day")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Prayer Notifications").
				Value(&fm.NotificationsEnabled),
			huh.NewSelect[int]().
				Title("Default Alarm").
				Options(offsetOptions()...).
				Value(&fm.DefaultOffsetMin),
			huh.NewConfirm().
				Title("Exact Alarms").
				Description("Deliver alarms at the exact minute").
				Value(&fm.AlarmsExact),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewNotificationForm creates the alarm dialog for one prayer
func NewNotificationForm(fm *state.NotificationFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s Alarm", fm.Name)).
				Value(&fm.Enabled),
			huh.NewSelect[int]().
				Title("Notify").
				Options(offsetOptions()...).
				Value(&fm.Offset),
		),
	).WithTheme(huh.ThemeDracula())
}

// LoadContentCmd fetches a day's content, falling back to a placeholder, and
// records the lesson as viewed when real content was shown.
func LoadContentCmd(ctx *cli.Context, settings models.Settings, day int) tea.Cmd {
	return func() tea.Msg {
		bg, cancel := context.WithTimeout(context.Background(), constants.ServiceTimeout)
		defer cancel()

		c, err := ctx.Content(settings).FetchContent(bg, day)
		if err != nil {
			if !errors.Is(err, content.ErrNotFound) && !errors.Is(err, content.ErrUnavailable) {
				logger.Error("failed to fetch content", "day", day, "error", err)
			}
			return ContentLoadedMsg{Day: day, Content: content.Placeholder(day)}
		}
		if err := content.NewViewed(ctx.Store, ctx.Now(settings)).Mark(context.Background(), day, content.KindLesson); err != nil {
			logger.Warn("failed to record viewed lesson", "day", day, "error", err)
		}
		return ContentLoadedMsg{Day: day, Content: c}
	}
}

// RefreshPrayersCmd loads today's times in the background.
func RefreshPrayersCmd(ctx *cli.Context, settings models.Settings, force bool) tea.Cmd {
	return func() tea.Msg {
		res, err := ctx.RefreshPrayers(context.Background(), settings, force)
		return PrayersRefreshedMsg{Source: res.Source, Err: err}
	}
}

// RescheduleCmd re-installs today's alarms after a prayer changed.
func RescheduleCmd(ctx *cli.Context, settings models.Settings) tea.Cmd {
	return func() tea.Msg {
		res, err := ctx.Reschedule(context.Background(), settings, ctx.Ledger())
		return AlarmsScheduledMsg{Result: res, Err: err}
	}
}

// HandleBackgroundMessages applies the results of background commands.
func HandleBackgroundMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case ContentLoadedMsg:
		if m.State == constants.StateContent && m.ContentDay == msg.Day {
			m.ContentModel.SetContent(msg.Content)
		}
		return true, nil
	case PrayersRefreshedMsg:
		if msg.Err != nil {
			m.Status = "Failed to refresh prayer times: " + msg.Err.Error()
			return true, nil
		}
		m.PrayerSource = msg.Source
		if err := m.ReloadPrayers(); err != nil {
			m.Status = err.Error()
		}
		m.UpdateWarnings()
		return true, tea.Batch(RescheduleCmd(m.Ctx, m.Settings()), ScheduleWake(m))
	case AlarmsScheduledMsg:
		switch {
		case msg.Err != nil:
			m.Status = "Failed to schedule alarms: " + msg.Err.Error()
		case msg.Result.Denied():
			m.Status = "Alarms not scheduled: " + cli.ExactAlarmHint
		case len(msg.Result.Failed) > 0:
			m.Status = fmt.Sprintf("%d alarms failed to schedule", len(msg.Result.Failed))
		}
		return true, nil
	}
	return false, nil
}

// nextPrayerAt returns the first of today's prayer times after now.
func nextPrayerAt(list []models.Prayer, now time.Time) (time.Time, bool) {
	for _, p := range list {
		minutes, err := p.Minutes()
		if err != nil {
			continue
		}
		at := utils.AtMinutes(now, minutes)
		if at.After(now) {
			return at, true
		}
	}
	return time.Time{}, false
}
