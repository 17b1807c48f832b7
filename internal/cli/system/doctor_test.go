package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/sirr/internal/backup"
	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

func setupTestStore(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store}, store
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestStore(t)

	// Missing backups and tray are warnings, not failures
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _ := setupTestStore(t)

	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := checkBackupsPresent(ctx); err != nil {
		t.Errorf("checkBackupsPresent() error = %v, want nil", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store := setupTestStore(t)

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store := setupTestStore(t)

	if _, err := store.GetDB().Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to clear schema version: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete() should fail when migrations are pending")
	}
}

func TestCheckProgressIntegrity(t *testing.T) {
	ctx, store := setupTestStore(t)

	if err := checkProgressIntegrity(ctx); err != nil {
		t.Fatalf("checkProgressIntegrity() on empty store error = %v", err)
	}
	if _, err := store.GetDB().Exec("INSERT INTO day_progress (day, completed, completed_at) VALUES (4, 1, NULL)"); err != nil {
		t.Fatalf("failed to insert progress: %v", err)
	}
	if err := checkProgressIntegrity(ctx); err == nil {
		t.Error("checkProgressIntegrity() should flag a completed day without a timestamp")
	}
}

func TestCheckPrayerIntegrity(t *testing.T) {
	ctx, store := setupTestStore(t)
	bg := context.Background()

	p := models.NewPrayer(models.Fajr, "2026-03-01", "05:15 AM", 1)
	p.Status = models.Offered("05:20 AM")
	if err := store.SavePrayer(bg, p); err != nil {
		t.Fatalf("SavePrayer() error = %v", err)
	}
	if err := checkPrayerIntegrity(ctx); err != nil {
		t.Fatalf("checkPrayerIntegrity() error = %v, want nil", err)
	}

	untimed := models.NewPrayer(models.Dhuhr, "2026-03-01", "12:30 PM", 1)
	untimed.Status = models.Offered("")
	if err := store.SavePrayer(bg, untimed); err != nil {
		t.Fatalf("SavePrayer() error = %v", err)
	}
	if err := checkPrayerIntegrity(ctx); err == nil {
		t.Error("checkPrayerIntegrity() should flag an offered prayer without an offered time")
	}
}

func TestCheckPointer(t *testing.T) {
	ctx, store := setupTestStore(t)
	bg := context.Background()

	if err := store.SaveRamadanStatus(bg, models.RamadanStatus{Active: true, CurrentDay: 12}); err != nil {
		t.Fatalf("SaveRamadanStatus() error = %v", err)
	}
	if err := checkPointer(ctx); err != nil {
		t.Errorf("checkPointer() error = %v, want nil", err)
	}

	if err := store.SaveRamadanStatus(bg, models.RamadanStatus{Active: true, CurrentDay: 45}); err != nil {
		t.Fatalf("SaveRamadanStatus() error = %v", err)
	}
	if err := checkPointer(ctx); err == nil {
		t.Error("checkPointer() should flag a pointer past the last day")
	}
}

func TestCheckClockTimezone_InvalidSettings(t *testing.T) {
	ctx, store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	settings.Timezone = "Mars/Olympus"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("checkClockTimezone() should flag an unknown timezone")
	}

	settings.Timezone = "UTC"
	settings.UnlockCutoff = "25:99"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("checkClockTimezone() should flag an invalid unlock cutoff")
	}
}

