package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

func setupStore(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sirr.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := store.MarkCompleted(context.Background(), 1, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	store.Close()
	return dbPath
}

func completedDays(t *testing.T, dbPath string) int {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer store.Close()
	progress, err := store.ListProgress(context.Background())
	if err != nil {
		t.Fatalf("ListProgress() error = %v", err)
	}
	n := 0
	for _, p := range progress {
		if p.Completed {
			n++
		}
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupStore(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC))
	mgr := NewManager(dbPath, WithClock(clk))

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if want := filepath.Join(mgr.Dir(), "sirr-20260301-0430.db"); path != want {
		t.Errorf("Create() = %s, want %s", path, want)
	}
	if got := completedDays(t, path); got != 1 {
		t.Errorf("backup holds %d completed days, want 1", got)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("Create() error = nil, want error for missing database")
	}
}

func TestUniqueNames(t *testing.T) {
	dbPath := setupStore(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 4, 30, 15, 0, time.UTC))
	mgr := NewManager(dbPath, WithClock(clk))

	want := []string{"sirr-20260301-0430.db", "sirr-20260301-043015.db", "sirr-20260301-043015-1.db"}
	for _, name := range want {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if filepath.Base(path) != name {
			t.Errorf("Create() = %s, want %s", filepath.Base(path), name)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"sirr-20260301-0430.db", true, time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC)},
		{"sirr-20260301-043015.db", true, time.Date(2026, 3, 1, 4, 30, 15, 0, time.UTC)},
		{"sirr-20260301-043015-2.db", true, time.Date(2026, 3, 1, 4, 30, 15, 0, time.UTC)},
		{"sirr-latest.db", false, time.Time{}},
		{"other-20260301-0430.db", false, time.Time{}},
		{"sirr-20260301-0430.txt", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseName(tt.name)
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("parseName(%q) = %v, %v, want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestListAndRotate(t *testing.T) {
	dbPath := setupStore(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	mgr := NewManager(dbPath, WithClock(clk), WithKeep(3))

	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Fatalf("List() before any backup = %v, %v, want empty", backups, err)
	}

	for i := 0; i < 5; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		clk.Advance(time.Hour)
	}
	os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600)

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() = %d backups, want 3", len(backups))
	}
	if backups[0].Name != "sirr-20260301-0400.db" || backups[2].Name != "sirr-20260301-0200.db" {
		t.Errorf("List() order = %s .. %s, want newest first", backups[0].Name, backups[2].Name)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := setupStore(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC))
	mgr := NewManager(dbPath, WithClock(clk))

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	store.MarkCompleted(ctx, 2, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	store.Close()
	if got := completedDays(t, dbPath); got != 2 {
		t.Fatalf("completed days before restore = %d, want 2", got)
	}

	clk.Advance(time.Minute)
	previous, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := completedDays(t, dbPath); got != 1 {
		t.Errorf("completed days after restore = %d, want 1", got)
	}
	if previous == "" {
		t.Fatal("Restore() did not back up the current database")
	}
	if got := completedDays(t, previous); got != 2 {
		t.Errorf("pre-restore backup holds %d days, want 2", got)
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database, just text that is long enough"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("Restore(bogus) error = nil, want error")
	}
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("Restore(missing) error = nil, want error")
	}
	if got := completedDays(t, dbPath); got != 1 {
		t.Errorf("database changed after failed restore: %d days", got)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupStore(t)
	mgr := NewManager(dbPath, WithClock(clock.NewFake(time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC))))
	path, _ := mgr.Create()

	got, err := mgr.Resolve("sirr-20260301-0430.db")
	if err != nil || got != path {
		t.Errorf("Resolve(name) = %s, %v, want %s", got, err, path)
	}
	if _, err := mgr.Resolve("sirr-19990101-0000.db"); err == nil {
		t.Error("Resolve(unknown) error = nil, want error")
	}
	if got, _ := mgr.Resolve(path); got != path {
		t.Errorf("Resolve(path) = %s, want %s", got, path)
	}
}
