// Package prayer tracks the five daily prayer records: refreshing their times
// and applying the user's offered/late toggles.
package prayer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/guard"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/prayertimes"
	"github.com/julianstephens/sirr/internal/storage"
)

// Tracker owns the read-mutate-write cycle on today's prayer records.
// Toggles go through a guard and are dropped while another toggle runs.
type Tracker struct {
	store  storage.PrayerStore
	clock  clock.Clock
	guard  guard.Guard
	mu     sync.Mutex
	notify bool
	offset int
}

type Option func(*Tracker)

// WithDefaults sets the notification settings given to newly created records.
func WithDefaults(enabled bool, offsetMin int) Option {
	return func(t *Tracker) {
		t.notify = enabled
		if models.ValidOffset(offsetMin) {
			t.offset = offsetMin
		}
	}
}

func NewTracker(store storage.PrayerStore, clk clock.Clock, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		clock:  clk,
		notify: constants.DefaultNotificationsEnabled,
		offset: constants.DefaultOffsetMin,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Date returns today's date key.
func (t *Tracker) Date() string {
	return t.clock.Now().Format(constants.DateFormat)
}

// Today returns the records stored for today in prayer order. Missing
// prayers are not invented.
func (t *Tracker) Today(ctx context.Context) ([]models.Prayer, error) {
	prayers, err := t.store.GetPrayers(ctx, t.Date())
	if err != nil {
		return nil, fmt.Errorf("failed to load prayers: %w", err)
	}
	models.SortPrayers(prayers)
	return prayers, nil
}

// RefreshTimes writes fetched times for today. New records get the default
// notification settings; existing ones only have their time fields replaced.
func (t *Tracker) RefreshTimes(ctx context.Context, times []prayertimes.Time, method int) error {
	return t.RefreshDate(ctx, t.Date(), times, method)
}

// RefreshDate is RefreshTimes for an explicit date.
func (t *Tracker) RefreshDate(ctx context.Context, date string, times []prayertimes.Time, method int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	for _, pt := range times {
		if _, ok := pt.Name.Slot(); !ok {
			return fmt.Errorf("unknown prayer %q", pt.Name)
		}
		if _, err := models.ParseClock(pt.Clock); err != nil {
			return fmt.Errorf("%s: %w", pt.Name, err)
		}

		p, err := t.store.GetPrayer(ctx, date, pt.Name)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			p = models.NewPrayer(pt.Name, date, pt.Clock, method)
			p.NotificationEnabled = t.notify
			p.NotificationOffset = t.offset
			if pt.Arabic != "" {
				p.NameArabic = pt.Arabic
			}
		case err != nil:
			return fmt.Errorf("failed to load %s: %w", pt.Name, err)
		default:
			p.RefreshTime(pt.Clock, pt.Arabic, method)
		}

		p.UpdatedAt = now
		if err := t.store.SavePrayer(ctx, p); err != nil {
			return fmt.Errorf("failed to save %s: %w", pt.Name, err)
		}
	}
	logger.Debug("prayer times refreshed", "date", date, "count", len(times), "method", method)
	return nil
}

// MarkOffered records the prayer as offered, stamping the current time if no
// offered time is set. It is rejected before the prayer time arrives.
func (t *Tracker) MarkOffered(ctx context.Context, name models.PrayerName) (bool, error) {
	return t.update(ctx, name, func(p *models.Prayer, now time.Time) bool {
		if !p.HasTimeArrived(now) {
			return false
		}
		p.MarkOffered(now)
		return true
	})
}

// MarkLate records the prayer as qaza. It is rejected before the prayer time
// arrives.
func (t *Tracker) MarkLate(ctx context.Context, name models.PrayerName) (bool, error) {
	return t.update(ctx, name, func(p *models.Prayer, now time.Time) bool {
		return p.MarkLate(now)
	})
}

// Unmark returns the prayer to pending.
func (t *Tracker) Unmark(ctx context.Context, name models.PrayerName) (bool, error) {
	return t.update(ctx, name, func(p *models.Prayer, now time.Time) bool {
		p.Unmark()
		return true
	})
}

// ToggleOffered is the tap action: offered becomes pending, anything else
// becomes offered.
func (t *Tracker) ToggleOffered(ctx context.Context, name models.PrayerName) (bool, error) {
	return t.update(ctx, name, func(p *models.Prayer, now time.Time) bool {
		if p.Status.IsOffered() {
			p.Unmark()
			return true
		}
		if !p.HasTimeArrived(now) {
			return false
		}
		p.MarkOffered(now)
		return true
	})
}

// ToggleLate is the long-press action.
func (t *Tracker) ToggleLate(ctx context.Context, name models.PrayerName) (bool, error) {
	return t.update(ctx, name, func(p *models.Prayer, now time.Time) bool {
		if !p.HasTimeArrived(now) {
			return false
		}
		if p.Status.IsLate() {
			p.Unmark()
			return true
		}
		return p.MarkLate(now)
	})
}

// UpdateNotification changes the alarm settings of one prayer.
func (t *Tracker) UpdateNotification(ctx context.Context, name models.PrayerName, enabled bool, offsetMin int) error {
	if _, ok := name.Slot(); !ok {
		return fmt.Errorf("unknown prayer %q", name)
	}
	if !models.ValidOffset(offsetMin) {
		return fmt.Errorf("invalid notification offset %d (allowed: %v)", offsetMin, constants.NotificationOffsets)
	}
	ran, err := t.update(ctx, name, func(p *models.Prayer, now time.Time) bool {
		p.NotificationEnabled = enabled
		p.NotificationOffset = offsetMin
		return true
	})
	if err != nil {
		return err
	}
	if !ran {
		return fmt.Errorf("another update is in progress for %s", name)
	}
	return nil
}

// Counts returns how many of today's prayers are offered and late.
func (t *Tracker) Counts(ctx context.Context) (offered, late int, err error) {
	prayers, err := t.Today(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range prayers {
		switch {
		case p.Status.IsOffered():
			offered++
		case p.Status.IsLate():
			late++
		}
	}
	return offered, late, nil
}

// DeleteOld removes records dated more than daysToKeep days before today.
func (t *Tracker) DeleteOld(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = constants.DefaultDataRetentionDays
	}
	cutoff := t.clock.Now().AddDate(0, 0, -daysToKeep).Format(constants.DateFormat)

	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.store.DeletePrayersBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old prayers: %w", err)
	}
	if n > 0 {
		logger.Info("old prayer records deleted", "before", cutoff, "count", n)
	}
	return n, nil
}

// HasTimeArrived reports whether p's time has been reached at now.
func HasTimeArrived(p models.Prayer, now time.Time) bool {
	return p.HasTimeArrived(now)
}

// update runs one guarded read-mutate-write on today's record. mutate returns
// false to reject the transition, in which case nothing is written.
func (t *Tracker) update(ctx context.Context, name models.PrayerName, mutate func(*models.Prayer, time.Time) bool) (bool, error) {
	if _, ok := name.Slot(); !ok {
		return false, nil
	}

	changed := false
	ran, err := t.guard.TryRun(func() error {
		t.mu.Lock()
		defer t.mu.Unlock()

		now := t.clock.Now()
		date := now.Format(constants.DateFormat)
		p, err := t.store.GetPrayer(ctx, date, name)
		if err != nil {
			return fmt.Errorf("failed to load %s for %s: %w", name, date, err)
		}
		if !mutate(&p, now) {
			return nil
		}
		p.UpdatedAt = now
		if err := t.store.SavePrayer(ctx, p); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
		changed = true
		logger.Debug("prayer status updated", "prayer", name, "status", p.Status)
		return nil
	})
	if err != nil || !ran {
		return false, err
	}
	return changed, nil
}
