// Package unlock decides which curriculum days are open.
//
// A day opens once the previous day is completed, subject to two rules. When
// the user trails the calendar pointer (catch-up) the next day opens
// immediately. When the user is level with the pointer (steady state) the
// next day opens at the first daily cutoff strictly after the previous
// completion. Day 1 is always open and no day beyond the pointer ever is.
package unlock

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
	"github.com/julianstephens/sirr/internal/utils"
)

// PointerSource reports how far the calendar has progressed.
type PointerSource interface {
	GetRamadanStatus(ctx context.Context) (models.RamadanStatus, error)
}

// Engine decides which of the 30 days are open, from stored progress, the
// calendar pointer and the clock.
type Engine struct {
	progress storage.ProgressStore
	pointer  PointerSource
	clock    clock.Clock

	cutoffHour   int
	cutoffMinute int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCutoff sets the daily wall-clock time steady-state days open at.
func WithCutoff(hour, minute int) Option {
	return func(e *Engine) {
		e.cutoffHour = hour
		e.cutoffMinute = minute
	}
}

func New(progress storage.ProgressStore, pointer PointerSource, clk clock.Clock, opts ...Option) *Engine {
	e := &Engine{
		progress:   progress,
		pointer:    pointer,
		clock:      clk,
		cutoffHour: 5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseCutoff parses an "HH:MM" cutoff setting into an Option.
func ParseCutoff(s string) (Option, error) {
	minutes, err := utils.ParseTimeToMinutes(s)
	if err != nil {
		return nil, fmt.Errorf("invalid unlock cutoff %q: %w", s, err)
	}
	return WithCutoff(minutes/60, minutes%60), nil
}

// DayState is the rendered state of one day.
type DayState struct {
	Day         int
	Completed   bool
	CompletedAt *time.Time
	Unlocked    bool
	UnlockAt    time.Time // zero when not determinable or ungated
	Description string
}

func inRange(day int) bool {
	return day >= 1 && day <= constants.TotalDays
}

func clampPointer(p int) int {
	switch {
	case p < 0:
		return 0
	case p > constants.TotalDays:
		return constants.TotalDays
	}
	return p
}

// view is one consistent read of the pointer and every progress record.
type view struct {
	now      time.Time
	pointer  int
	progress map[int]models.DayProgress

	cutoffHour   int
	cutoffMinute int
}

func (e *Engine) load(ctx context.Context) (*view, error) {
	status, err := e.pointer.GetRamadanStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read curriculum pointer: %w", err)
	}
	records, err := e.progress.ListProgress(ctx)
	if err != nil {
		return nil, err
	}

	v := &view{
		now:          e.clock.Now(),
		pointer:      clampPointer(status.CurrentDay),
		progress:     make(map[int]models.DayProgress, len(records)),
		cutoffHour:   e.cutoffHour,
		cutoffMinute: e.cutoffMinute,
	}
	for _, r := range records {
		v.progress[r.Day] = r
	}
	return v, nil
}

// nextCutoff returns the first cutoff strictly after t, in now's location.
func (v *view) nextCutoff(t time.Time) time.Time {
	local := t.In(v.now.Location())
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), v.cutoffHour, v.cutoffMinute, 0, 0, local.Location())
	if !cutoff.After(local) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff
}

// unlockAt returns when day opens. ok is false while that cannot be known:
// the previous day is incomplete, has no timestamp, or day is past the pointer.
// Day 1 reports a zero time with ok set.
func (v *view) unlockAt(day int) (time.Time, bool) {
	if !inRange(day) {
		return time.Time{}, false
	}
	if day == 1 {
		return time.Time{}, true
	}
	if day > v.pointer {
		return time.Time{}, false
	}
	prev := v.progress[day-1]
	if !prev.Completed || prev.CompletedAt == nil {
		return time.Time{}, false
	}
	if day < v.pointer {
		return *prev.CompletedAt, true
	}
	return v.nextCutoff(*prev.CompletedAt), true
}

func (v *view) unlocked(day int) bool {
	at, ok := v.unlockAt(day)
	return ok && !v.now.Before(at)
}

func (v *view) describe(day int) string {
	if !inRange(day) {
		return "Invalid day"
	}
	at, ok := v.unlockAt(day)
	switch {
	case ok && !v.now.Before(at):
		return "Available now"
	case day > v.pointer:
		return "Not yet available"
	case !ok:
		return fmt.Sprintf("Complete Day %d first", day-1)
	}
	return "Unlocks in " + utils.FormatRemaining(at.Sub(v.now))
}

func (v *view) completedWithin(max int) int {
	count := 0
	for day, p := range v.progress {
		if p.Completed && day >= 1 && day <= max {
			count++
		}
	}
	return count
}

// IsUnlocked reports whether day may be opened now. Out-of-range days are
// locked, never an error.
func (e *Engine) IsUnlocked(ctx context.Context, day int) (bool, error) {
	if !inRange(day) {
		return false, nil
	}
	if day == 1 {
		return true, nil
	}
	v, err := e.load(ctx)
	if err != nil {
		return false, err
	}
	return v.unlocked(day), nil
}

// Complete records day as completed now. It returns once the write has
// committed. Out-of-range days and repeat completions are no-ops.
func (e *Engine) Complete(ctx context.Context, day int) error {
	if !inRange(day) {
		return nil
	}
	current, err := e.progress.GetProgress(ctx, day)
	if err != nil {
		return err
	}
	if current.Completed && current.CompletedAt != nil {
		return nil
	}
	now := e.clock.Now()
	if err := e.progress.MarkCompleted(ctx, day, now); err != nil {
		return err
	}
	logger.Info("day completed", "day", day, "at", now.Format(time.RFC3339))
	return nil
}

// IsCompleted reports whether day was completed. Out-of-range days are not.
func (e *Engine) IsCompleted(ctx context.Context, day int) (bool, error) {
	if !inRange(day) {
		return false, nil
	}
	p, err := e.progress.GetProgress(ctx, day)
	if err != nil {
		return false, err
	}
	return p.Completed, nil
}

// ProgressPercent is the share of accessible days completed, rounded down.
func (e *Engine) ProgressPercent(ctx context.Context) (int, error) {
	v, err := e.load(ctx)
	if err != nil {
		return 0, err
	}
	if v.pointer == 0 {
		return 0, nil
	}
	return v.completedWithin(v.pointer) * 100 / v.pointer, nil
}

// TimeRemainingDescription explains when day opens.
func (e *Engine) TimeRemainingDescription(ctx context.Context, day int) (string, error) {
	if !inRange(day) {
		return "Invalid day", nil
	}
	v, err := e.load(ctx)
	if err != nil {
		return "", err
	}
	return v.describe(day), nil
}

// UnlockAt returns the instant day opens. See view.unlockAt for ok.
func (e *Engine) UnlockAt(ctx context.Context, day int) (time.Time, bool, error) {
	if !inRange(day) {
		return time.Time{}, false, nil
	}
	v, err := e.load(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	at, ok := v.unlockAt(day)
	return at, ok, nil
}

// NextChangeAt returns the earliest future instant a day opens, so callers
// can wake once instead of polling. ok is false when nothing is pending.
func (e *Engine) NextChangeAt(ctx context.Context) (time.Time, bool, error) {
	v, err := e.load(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	var next time.Time
	found := false
	for day := 2; day <= constants.TotalDays; day++ {
		at, ok := v.unlockAt(day)
		if !ok || !at.After(v.now) {
			continue
		}
		if !found || at.Before(next) {
			next, found = at, true
		}
	}
	return next, found, nil
}

// CompletedCount counts completed days across the whole journey.
func (e *Engine) CompletedCount(ctx context.Context) (int, error) {
	v, err := e.load(ctx)
	if err != nil {
		return 0, err
	}
	return v.completedWithin(constants.TotalDays), nil
}

// MaxAccessible is the clamped curriculum pointer.
func (e *Engine) MaxAccessible(ctx context.Context) (int, error) {
	status, err := e.pointer.GetRamadanStatus(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read curriculum pointer: %w", err)
	}
	return clampPointer(status.CurrentDay), nil
}

// ResetAll clears every completion record.
func (e *Engine) ResetAll(ctx context.Context) error {
	if err := e.progress.ResetProgress(ctx); err != nil {
		return err
	}
	logger.Warn("journey progress reset")
	return nil
}

// Snapshot returns the state of all days from a single read.
func (e *Engine) Snapshot(ctx context.Context) ([]DayState, error) {
	v, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]DayState, 0, constants.TotalDays)
	for day := 1; day <= constants.TotalDays; day++ {
		p := v.progress[day]
		at, _ := v.unlockAt(day)
		states = append(states, DayState{
			Day:         day,
			Completed:   p.Completed,
			CompletedAt: p.CompletedAt,
			Unlocked:    v.unlocked(day),
			UnlockAt:    at,
			Description: v.describe(day),
		})
	}
	return states, nil
}
