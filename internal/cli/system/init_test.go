package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return &cli.Context{Store: store}, dbPath
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get initial settings: %v", err)
	}
	settings.UnlockCutoff = "04:00"
	if err := ctx.Store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save modified settings: %v", err)
	}
	if err := ctx.Store.MarkCompleted(context.Background(), 1, time.Now()); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not recreated after force")
	}

	newSettings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings after force: %v", err)
	}
	if newSettings.UnlockCutoff != "05:00" {
		t.Errorf("expected default UnlockCutoff '05:00', got '%s'", newSettings.UnlockCutoff)
	}
	p, err := ctx.Store.GetProgress(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if p.Completed {
		t.Error("day 1 should not be completed after force reset")
	}
}

func TestInitCmd_ForceSameSource(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("init --force with source == destination should fail")
	}
}

func TestInitCmd_MigrateFromSource(t *testing.T) {
	bg := context.Background()
	srcPath := filepath.Join(t.TempDir(), "source.db")
	src := sqlite.NewStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatalf("source Init() error = %v", err)
	}
	completedAt := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	if err := src.MarkCompleted(bg, 1, completedAt); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	p := models.NewPrayer(models.Asr, "2026-03-01", "04:15 PM", 1)
	p.Status = models.Offered("04:30 PM")
	if err := src.SavePrayer(bg, p); err != nil {
		t.Fatalf("SavePrayer() error = %v", err)
	}
	if err := src.SaveRamadanStatus(bg, models.RamadanStatus{Active: true, CurrentDay: 2}); err != nil {
		t.Fatalf("SaveRamadanStatus() error = %v", err)
	}
	src.Close()

	ctx, _ := setupTestInitDB(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	got, err := ctx.Store.GetProgress(bg, 1)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if !got.Completed || got.CompletedAt == nil || !got.CompletedAt.Equal(completedAt) {
		t.Errorf("migrated day 1 = %+v, want completed at %v", got, completedAt)
	}

	prayer, err := ctx.Store.GetPrayer(bg, "2026-03-01", models.Asr)
	if err != nil {
		t.Fatalf("GetPrayer() error = %v", err)
	}
	if at, ok := prayer.Status.OfferedAt(); !ok || at != "04:30 PM" {
		t.Errorf("migrated Asr offered at = %q, %v", at, ok)
	}

	status, err := ctx.Store.GetRamadanStatus(bg)
	if err != nil {
		t.Fatalf("GetRamadanStatus() error = %v", err)
	}
	if status.CurrentDay != 2 || !status.Active {
		t.Errorf("migrated status = %+v", status)
	}
}
