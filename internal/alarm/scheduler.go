package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
)

// ErrExactAlarmDenied is reported per prayer when the backend may not
// deliver alarms at an exact time.
var ErrExactAlarmDenied = errors.New("exact alarm permission not granted")

// Failure is one prayer that could not be scheduled or cancelled.
type Failure struct {
	Prayer models.PrayerName
	Slot   int
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Prayer, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result reports what ScheduleAll did with each prayer.
type Result struct {
	Scheduled []models.Alarm
	Skipped   []models.PrayerName // fire time already passed today
	Cancelled []models.PrayerName // disabled or already offered
	Failed    []Failure
}

// Err joins the per-prayer failures, or returns nil when there are none.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Denied reports whether any prayer failed for lack of exact alarm permission.
func (r Result) Denied() bool {
	for _, f := range r.Failed {
		if errors.Is(f.Err, ErrExactAlarmDenied) {
			return true
		}
	}
	return false
}

type Scheduler struct {
	backend Backend
	clock   clock.Clock
}

func NewScheduler(backend Backend, clk clock.Clock) *Scheduler {
	return &Scheduler{backend: backend, clock: clk}
}

// ScheduleAll installs an alarm for every prayer with notifications on that
// is not yet offered, and cancels the rest. Alarms whose fire minute has
// already passed are skipped. A failing prayer does not stop the others.
func (s *Scheduler) ScheduleAll(ctx context.Context, items []models.Prayer) (Result, error) {
	var res Result
	if err := ctx.Err(); err != nil {
		return res, err
	}

	now := s.clock.Now()
	exact := s.backend.CanScheduleExact(ctx)
	if !exact {
		logger.Warn("exact alarms not permitted, nothing will be installed")
	}

	for _, p := range items {
		slot, ok := p.Name.Slot()
		if !ok {
			res.Failed = append(res.Failed, Failure{Prayer: p.Name, Err: fmt.Errorf("unknown prayer %q", p.Name)})
			continue
		}

		if !p.NotificationEnabled || p.Status.IsOffered() {
			if err := s.backend.Cancel(ctx, slot); err != nil {
				res.Failed = append(res.Failed, Failure{Prayer: p.Name, Slot: slot, Err: fmt.Errorf("failed to cancel: %w", err)})
				continue
			}
			res.Cancelled = append(res.Cancelled, p.Name)
			continue
		}

		if !exact {
			res.Failed = append(res.Failed, Failure{Prayer: p.Name, Slot: slot, Err: ErrExactAlarmDenied})
			continue
		}

		fireAt, err := FireTime(p, now)
		if err != nil {
			res.Failed = append(res.Failed, Failure{Prayer: p.Name, Slot: slot, Err: err})
			continue
		}
		if fireAt.Before(now.Truncate(time.Minute)) {
			logger.Debug("alarm time passed, skipping", "prayer", p.Name, "fire_at", fireAt)
			res.Skipped = append(res.Skipped, p.Name)
			continue
		}

		a := NewAlarm(p, slot, fireAt)
		if err := s.backend.Install(ctx, a); err != nil {
			res.Failed = append(res.Failed, Failure{Prayer: p.Name, Slot: slot, Err: fmt.Errorf("failed to install: %w", err)})
			continue
		}
		res.Scheduled = append(res.Scheduled, a)
	}

	logger.Info("alarms scheduled",
		"scheduled", len(res.Scheduled),
		"skipped", len(res.Skipped),
		"cancelled", len(res.Cancelled),
		"failed", len(res.Failed))
	return res, nil
}

// CancelAll removes the alarms of all five prayers.
func (s *Scheduler) CancelAll(ctx context.Context) error {
	if err := s.backend.CancelAll(ctx, models.Slots()); err != nil {
		return fmt.Errorf("failed to cancel alarms: %w", err)
	}
	logger.Info("all prayer alarms cancelled")
	return nil
}

// ScheduleTest installs a test alarm a few seconds from now.
func (s *Scheduler) ScheduleTest(ctx context.Context) (models.Alarm, error) {
	if !s.backend.CanScheduleExact(ctx) {
		return models.Alarm{}, ErrExactAlarmDenied
	}
	a := models.Alarm{
		Slot:    constants.SlotTest,
		Token:   uuid.NewString(),
		Prayer:  "Test",
		FireAt:  s.clock.Now().Add(constants.TestAlarmDelay),
		Title:   "🕌 Test Notification",
		Message: "Prayer notifications are working!",
	}
	if err := s.backend.Install(ctx, a); err != nil {
		return models.Alarm{}, fmt.Errorf("failed to install test alarm: %w", err)
	}
	return a, nil
}

// FireTime is the prayer's time on its date (now's date if unset) minus the
// notification offset, in now's location.
func FireTime(p models.Prayer, now time.Time) (time.Time, error) {
	clockTime, err := models.ParseClock(p.Time)
	if err != nil {
		return time.Time{}, err
	}
	day := now
	if p.Date != "" {
		d, err := time.ParseInLocation(constants.DateFormat, p.Date, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid prayer date %q: %w", p.Date, err)
		}
		day = d
	}
	base := time.Date(day.Year(), day.Month(), day.Day(), clockTime.Hour(), clockTime.Minute(), 0, 0, now.Location())
	return base.Add(-time.Duration(p.NotificationOffset) * time.Minute), nil
}

// NewAlarm captures everything needed to display the notification later.
func NewAlarm(p models.Prayer, slot int, fireAt time.Time) models.Alarm {
	return models.Alarm{
		Slot:          slot,
		Token:         uuid.NewString(),
		Prayer:        string(p.Name),
		NameArabic:    p.NameArabic,
		BaseTime:      p.Time,
		OffsetMinutes: p.NotificationOffset,
		FireAt:        fireAt,
		Title:         Title(string(p.Name), p.NotificationOffset),
		Message:       Message(string(p.Name), p.NameArabic, p.Time, p.NotificationOffset),
	}
}

func Title(prayer string, offsetMin int) string {
	switch {
	case offsetMin == 0:
		return fmt.Sprintf("🕌 %s Time Now!", prayer)
	case offsetMin < 60:
		return fmt.Sprintf("🕌 %s in %d minutes", prayer, offsetMin)
	default:
		return fmt.Sprintf("🕌 %s in %d hour", prayer, offsetMin/60)
	}
}

func Message(prayer, arabic, baseTime string, offsetMin int) string {
	if offsetMin == 0 {
		return fmt.Sprintf("It's time for %s prayer (%s)", prayer, arabic)
	}
	return fmt.Sprintf("%s prayer at %s. Get ready!", prayer, baseTime)
}
