package system

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/alarm/inprocess"
	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/prayertimes"
)

func TestDaemonWatchAppliesRecordChanges(t *testing.T) {
	ctx, _ := setupTestStore(t)
	ctx.Clock = clock.NewFake(time.Date(2026, 2, 20, 13, 0, 0, 0, time.UTC))
	ctx.Notifier = &recordingSink{}
	bg := context.Background()

	settings, err := ctx.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	tracker := ctx.Tracker(settings)
	if err := tracker.RefreshTimes(bg, prayertimes.Defaults("2026-02-20", 1).Times, 1); err != nil {
		t.Fatalf("RefreshTimes() error = %v", err)
	}

	backend := inprocess.New(time.UTC, ctx.Sink())
	d := &daemon{ctx: ctx, backend: backend}

	d.watch()
	if got := len(backend.Installed()); got != 3 {
		t.Fatalf("Installed() after first watch = %d, want 3 (Asr, Maghrib, Isha)", got)
	}
	seen := d.lastSeen

	d.watch()
	if d.lastSeen != seen {
		t.Error("unchanged records produced a new fingerprint")
	}

	if err := tracker.UpdateNotification(bg, models.Isha, false, 15); err != nil {
		t.Fatalf("UpdateNotification() error = %v", err)
	}
	d.watch()
	installed := backend.Installed()
	if len(installed) != 2 {
		t.Fatalf("Installed() after disabling Isha = %d, want 2", len(installed))
	}
	for _, a := range installed {
		if a.Prayer == string(models.Isha) {
			t.Error("Isha alarm still installed after it was disabled")
		}
	}
}
