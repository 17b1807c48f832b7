// Package storetest runs the same behavioural checks against every
// storage.Provider implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

// Run exercises an initialized provider. The provider must start empty apart
// from default settings.
func Run(t *testing.T, p storage.Provider) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC)

	t.Run("Settings", func(t *testing.T) {
		settings, err := p.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if settings.UnlockCutoff != constants.DefaultUnlockCutoff {
			t.Errorf("UnlockCutoff = %q, want %q", settings.UnlockCutoff, constants.DefaultUnlockCutoff)
		}
		if settings.DefaultOffsetMin != constants.DefaultOffsetMin {
			t.Errorf("DefaultOffsetMin = %d, want %d", settings.DefaultOffsetMin, constants.DefaultOffsetMin)
		}

		settings.UnlockCutoff = "04:30"
		settings.Latitude = 21.4225
		settings.Longitude = 39.8262
		if err := p.SaveSettings(settings); err != nil {
			t.Fatalf("SaveSettings() error = %v", err)
		}
		got, err := p.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if got.UnlockCutoff != "04:30" || got.Latitude != 21.4225 || got.Longitude != 39.8262 {
			t.Errorf("GetSettings() = %+v, want saved values", got)
		}
	})

	t.Run("Progress", func(t *testing.T) {
		missing, err := p.GetProgress(ctx, 3)
		if err != nil {
			t.Fatalf("GetProgress() error = %v", err)
		}
		if missing.Completed || missing.CompletedAt != nil || missing.Day != 3 {
			t.Errorf("GetProgress(missing) = %+v, want empty day 3", missing)
		}

		if err := p.MarkCompleted(ctx, 1, base); err != nil {
			t.Fatalf("MarkCompleted() error = %v", err)
		}
		// second completion keeps the first timestamp
		if err := p.MarkCompleted(ctx, 1, base.Add(48*time.Hour)); err != nil {
			t.Fatalf("MarkCompleted() error = %v", err)
		}
		day1, err := p.GetProgress(ctx, 1)
		if err != nil {
			t.Fatalf("GetProgress() error = %v", err)
		}
		if !day1.Completed || day1.CompletedAt == nil || !day1.CompletedAt.Equal(base) {
			t.Errorf("GetProgress(1) = %+v, want completed at %v", day1, base)
		}

		if err := p.MarkCompleted(ctx, 2, base.Add(time.Hour)); err != nil {
			t.Fatalf("MarkCompleted() error = %v", err)
		}
		all, err := p.ListProgress(ctx)
		if err != nil {
			t.Fatalf("ListProgress() error = %v", err)
		}
		if len(all) != 2 || all[0].Day != 1 || all[1].Day != 2 {
			t.Errorf("ListProgress() = %+v, want days 1 and 2", all)
		}

		if err := p.ResetProgress(ctx); err != nil {
			t.Fatalf("ResetProgress() error = %v", err)
		}
		all, err = p.ListProgress(ctx)
		if err != nil {
			t.Fatalf("ListProgress() error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("ListProgress() after reset = %d records, want 0", len(all))
		}
	})

	t.Run("RamadanStatus", func(t *testing.T) {
		want := models.RamadanStatus{Active: true, CurrentDay: 12}
		if err := p.SaveRamadanStatus(ctx, want); err != nil {
			t.Fatalf("SaveRamadanStatus() error = %v", err)
		}
		got, err := p.GetRamadanStatus(ctx)
		if err != nil {
			t.Fatalf("GetRamadanStatus() error = %v", err)
		}
		if got != want {
			t.Errorf("GetRamadanStatus() = %+v, want %+v", got, want)
		}
		settings, err := p.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if settings.CurrentDay != 12 || !settings.RamadanActive {
			t.Errorf("settings journey state = %d/%v, want 12/true", settings.CurrentDay, settings.RamadanActive)
		}
	})

	t.Run("Prayers", func(t *testing.T) {
		date := "2026-03-01"
		for _, name := range []models.PrayerName{models.Isha, models.Fajr, models.Asr} {
			pr := models.NewPrayer(name, date, "05:00 AM", 1)
			pr.UpdatedAt = base
			if err := p.SavePrayer(ctx, pr); err != nil {
				t.Fatalf("SavePrayer(%s) error = %v", name, err)
			}
		}

		fajr, err := p.GetPrayer(ctx, date, models.Fajr)
		if err != nil {
			t.Fatalf("GetPrayer() error = %v", err)
		}
		fajr.Status = models.Offered("05:20 AM")
		fajr.NotificationOffset = 30
		fajr.UpdatedAt = base.Add(time.Hour)
		if err := p.SavePrayer(ctx, fajr); err != nil {
			t.Fatalf("SavePrayer() error = %v", err)
		}

		list, err := p.GetPrayers(ctx, date)
		if err != nil {
			t.Fatalf("GetPrayers() error = %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("GetPrayers() = %d records, want 3", len(list))
		}
		if list[0].Name != models.Fajr || list[1].Name != models.Asr || list[2].Name != models.Isha {
			t.Errorf("GetPrayers() order = %s,%s,%s, want Fajr,Asr,Isha", list[0].Name, list[1].Name, list[2].Name)
		}
		at, ok := list[0].Status.OfferedAt()
		if !list[0].Status.IsOffered() || !ok || at != "05:20 AM" {
			t.Errorf("Fajr status = %v (%q), want offered at 05:20 AM", list[0].Status, at)
		}
		if list[0].NotificationOffset != 30 {
			t.Errorf("Fajr offset = %d, want 30", list[0].NotificationOffset)
		}
		if list[1].Status.Kind() != models.StatusPending {
			t.Errorf("Asr status = %v, want pending", list[1].Status)
		}

		_, err = p.GetPrayer(ctx, date, models.Dhuhr)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetPrayer(missing) error = %v, want ErrNotFound", err)
		}

		old := models.NewPrayer(models.Fajr, "2026-02-01", "05:30 AM", 1)
		old.UpdatedAt = base
		if err := p.SavePrayer(ctx, old); err != nil {
			t.Fatalf("SavePrayer() error = %v", err)
		}
		n, err := p.DeletePrayersBefore(ctx, date)
		if err != nil {
			t.Fatalf("DeletePrayersBefore() error = %v", err)
		}
		if n != 1 {
			t.Errorf("DeletePrayersBefore() = %d, want 1", n)
		}
		all, err := p.ListPrayers(ctx)
		if err != nil {
			t.Fatalf("ListPrayers() error = %v", err)
		}
		if len(all) != 3 {
			t.Errorf("ListPrayers() = %d records, want 3", len(all))
		}
	})

	t.Run("Alarms", func(t *testing.T) {
		first := models.Alarm{
			Slot:          constants.SlotFajr,
			Token:         "token-1",
			Prayer:        "Fajr",
			BaseTime:      "05:15 AM",
			OffsetMinutes: 15,
			FireAt:        base,
			Title:         "🕌 Fajr in 15 minutes",
			Message:       "Fajr prayer at 05:15 AM. Get ready!",
		}
		if err := p.SaveAlarm(ctx, first); err != nil {
			t.Fatalf("SaveAlarm() error = %v", err)
		}
		replacement := first
		replacement.Token = "token-2"
		replacement.FireAt = base.Add(10 * time.Minute)
		if err := p.SaveAlarm(ctx, replacement); err != nil {
			t.Fatalf("SaveAlarm() error = %v", err)
		}

		alarms, err := p.GetAlarms(ctx)
		if err != nil {
			t.Fatalf("GetAlarms() error = %v", err)
		}
		if len(alarms) != 1 || alarms[0].Token != "token-2" || !alarms[0].FireAt.Equal(replacement.FireAt) {
			t.Fatalf("GetAlarms() = %+v, want only the replacement", alarms)
		}

		ok, err := p.MarkAlarmDelivered(ctx, "token-1", base)
		if err != nil {
			t.Fatalf("MarkAlarmDelivered() error = %v", err)
		}
		if ok {
			t.Error("MarkAlarmDelivered(stale token) = true, want false")
		}
		ok, err = p.MarkAlarmDelivered(ctx, "token-2", base)
		if err != nil || !ok {
			t.Fatalf("MarkAlarmDelivered() = %v, %v, want true", ok, err)
		}
		ok, err = p.MarkAlarmDelivered(ctx, "token-2", base)
		if err != nil || ok {
			t.Errorf("MarkAlarmDelivered(again) = %v, %v, want false", ok, err)
		}

		if err := p.DeleteAlarm(ctx, constants.SlotFajr); err != nil {
			t.Fatalf("DeleteAlarm() error = %v", err)
		}
		alarms, err = p.GetAlarms(ctx)
		if err != nil {
			t.Fatalf("GetAlarms() error = %v", err)
		}
		if len(alarms) != 0 {
			t.Errorf("GetAlarms() after delete = %d, want 0", len(alarms))
		}
	})

	t.Run("Cache", func(t *testing.T) {
		if _, _, err := p.GetCache(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetCache(missing) error = %v, want ErrNotFound", err)
		}
		if err := p.PutCache(ctx, "hijri:2026-03-01", "11 Ramadan 1447", base); err != nil {
			t.Fatalf("PutCache() error = %v", err)
		}
		if err := p.PutCache(ctx, "hijri:2026-03-01", "12 Ramadan 1447", base.Add(time.Minute)); err != nil {
			t.Fatalf("PutCache() error = %v", err)
		}
		value, at, err := p.GetCache(ctx, "hijri:2026-03-01")
		if err != nil {
			t.Fatalf("GetCache() error = %v", err)
		}
		if value != "12 Ramadan 1447" || !at.Equal(base.Add(time.Minute)) {
			t.Errorf("GetCache() = %q at %v, want overwritten value", value, at)
		}
	})

	t.Run("Viewed", func(t *testing.T) {
		viewed, err := p.IsViewed(ctx, 4, "video")
		if err != nil || viewed {
			t.Fatalf("IsViewed() = %v, %v, want false", viewed, err)
		}
		for i := 0; i < 2; i++ {
			if err := p.MarkViewed(ctx, 4, "video", base); err != nil {
				t.Fatalf("MarkViewed() error = %v", err)
			}
		}
		viewed, err = p.IsViewed(ctx, 4, "video")
		if err != nil || !viewed {
			t.Errorf("IsViewed() = %v, %v, want true", viewed, err)
		}
		viewed, err = p.IsViewed(ctx, 4, "audio")
		if err != nil || viewed {
			t.Errorf("IsViewed(other kind) = %v, %v, want false", viewed, err)
		}
	})
}
