// Package ledger is the persistent alarm backend. Installed alarms are rows in
// the alarms table; a periodic `sirr notify` run delivers the ones that are
// due, so delivery happens without the scheduler running.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

// MaxLateness bounds how late an undelivered alarm may still be shown.
// Older alarms are dropped as missed.
const MaxLateness = 10 * time.Minute

type SettingsSource interface {
	GetSettings() (models.Settings, error)
}

// Sink shows one notification.
type Sink interface {
	Send(ctx context.Context, title, message string) error
}

type Backend struct {
	store    storage.AlarmStore
	settings SettingsSource
}

func New(store storage.AlarmStore, settings SettingsSource) *Backend {
	return &Backend{store: store, settings: settings}
}

// Install replaces the alarm in a's slot. Reinstalling an alarm that was
// already delivered for the same minute and payload keeps it delivered, so a
// reschedule right after firing does not show it again. Test alarms always
// fire.
func (b *Backend) Install(ctx context.Context, a models.Alarm) error {
	existing, err := b.store.GetAlarms(ctx)
	if err != nil {
		return err
	}
	for _, old := range existing {
		if a.Slot != constants.SlotTest && old.DeliveredAt != nil && old.SameDelivery(a) {
			logger.Debug("alarm already delivered, keeping", "slot", a.Slot, "prayer", a.Prayer)
			return nil
		}
	}

	a.DeliveredAt = nil
	if err := b.store.SaveAlarm(ctx, a); err != nil {
		return err
	}
	logger.Debug("alarm installed", "slot", a.Slot, "prayer", a.Prayer, "fire_at", a.FireAt)
	return nil
}

func (b *Backend) Cancel(ctx context.Context, slot int) error {
	return b.store.DeleteAlarm(ctx, slot)
}

func (b *Backend) CancelAll(ctx context.Context, slots []int) error {
	for _, slot := range slots {
		if err := b.store.DeleteAlarm(ctx, slot); err != nil {
			return err
		}
	}
	return nil
}

// CanScheduleExact follows the alarms_exact setting. Unreadable settings
// count as denied.
func (b *Backend) CanScheduleExact(ctx context.Context) bool {
	if b.settings == nil {
		return true
	}
	s, err := b.settings.GetSettings()
	if err != nil {
		logger.Warn("failed to read settings, treating exact alarms as denied", "error", err)
		return false
	}
	return s.AlarmsExact
}

// Pending returns the installed alarms that have not been delivered.
func (b *Backend) Pending(ctx context.Context) ([]models.Alarm, error) {
	alarms, err := b.store.GetAlarms(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Alarm
	for _, a := range alarms {
		if a.DeliveredAt == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// DeliveryReport summarizes one Deliver run.
type DeliveryReport struct {
	Delivered []models.Alarm
	Missed    []models.Alarm
	Failed    []error
}

// Deliver sends every due alarm to sink using the payload captured at
// install time. An alarm is claimed by token before it is sent, so
// overlapping runs never show it twice. Alarms more than MaxLateness past
// their fire time are claimed without being shown.
func (b *Backend) Deliver(ctx context.Context, now time.Time, sink Sink) (DeliveryReport, error) {
	var report DeliveryReport
	alarms, err := b.store.GetAlarms(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load alarms: %w", err)
	}

	for _, a := range alarms {
		if !a.Due(now) {
			continue
		}

		claimed, err := b.store.MarkAlarmDelivered(ctx, a.Token, now)
		if err != nil {
			report.Failed = append(report.Failed, fmt.Errorf("slot %d: %w", a.Slot, err))
			continue
		}
		if !claimed {
			continue
		}

		if now.Sub(a.FireAt) > MaxLateness {
			logger.Warn("alarm missed", "prayer", a.Prayer, "fire_at", a.FireAt)
			report.Missed = append(report.Missed, a)
			continue
		}

		if err := sink.Send(ctx, a.Title, a.Message); err != nil {
			logger.Error("failed to deliver alarm", "prayer", a.Prayer, "error", err)
			report.Failed = append(report.Failed, fmt.Errorf("%s: %w", a.Prayer, err))
			continue
		}
		logger.Info("alarm delivered", "prayer", a.Prayer, "slot", a.Slot)
		report.Delivered = append(report.Delivered, a)
	}
	return report, nil
}
