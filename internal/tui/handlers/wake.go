package handlers

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/tui/state"
	"github.com/julianstephens/sirr/internal/utils"
)

// WakeMsg fires when something on screen is due to change. Seq matches the
// model's WakeSeq only for the most recently armed wake.
type WakeMsg struct{ Seq int }

// nextWake picks the earliest of: the next day unlock, the next prayer time
// and midnight. Without an unlock pending it falls back to the poll interval.
func nextWake(m *state.Model) time.Duration {
	s := m.Settings()
	now := m.Ctx.Now(s).Now()

	engine, err := m.Ctx.Unlock(s)
	if err != nil {
		return constants.UnlockPollInterval
	}
	next, ok, err := engine.NextChangeAt(context.Background())
	if err != nil || !ok {
		return constants.UnlockPollInterval
	}

	if list, err := m.Ctx.Tracker(s).Today(context.Background()); err == nil {
		if at, ok := nextPrayerAt(list, now); ok && at.Before(next) {
			next = at
		}
	}
	if midnight := utils.StartOfDay(now).AddDate(0, 0, 1); midnight.Before(next) {
		next = midnight
	}

	d := next.Sub(now)
	if d < time.Second {
		d = time.Second
	}
	return d
}

// ScheduleWake arms a one-shot wake, replacing any earlier one.
func ScheduleWake(m *state.Model) tea.Cmd {
	m.WakeSeq++
	return WakeCmd(m)
}

// WakeCmd arms a wake for the current WakeSeq without replacing it.
func WakeCmd(m *state.Model) tea.Cmd {
	seq := m.WakeSeq
	return tea.Tick(nextWake(m), func(time.Time) tea.Msg {
		return WakeMsg{Seq: seq}
	})
}

// HandleWake reloads everything time dependent and re-arms.
func HandleWake(m *state.Model, msg WakeMsg) tea.Cmd {
	if msg.Seq != m.WakeSeq {
		return nil
	}
	if err := m.ReloadJourney(); err != nil {
		m.Status = err.Error()
	}
	if err := m.ReloadPrayers(); err != nil {
		m.Status = err.Error()
	}

	cmds := []tea.Cmd{ScheduleWake(m)}
	s := m.Settings()
	if list, err := m.Ctx.Tracker(s).Today(context.Background()); err == nil && len(list) == 0 {
		// a new day started
		cmds = append(cmds, RefreshPrayersCmd(m.Ctx, s, false))
	}
	return tea.Batch(cmds...)
}
