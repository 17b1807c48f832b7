package system

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/models"
)

type recordingSink struct {
	mu     sync.Mutex
	titles []string
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(ctx context.Context, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

func installFajr(t *testing.T, ctxInstall func(context.Context, models.Alarm) error, fireAt time.Time) {
	t.Helper()
	a := models.Alarm{
		Slot:    100,
		Token:   "fajr-token",
		Prayer:  "Fajr",
		FireAt:  fireAt,
		Title:   "🕌 Fajr in 15 minutes",
		Message: "Fajr prayer at 05:15 AM. Get ready!",
	}
	if err := ctxInstall(context.Background(), a); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
}

func TestNotifyCmd_Idempotency(t *testing.T) {
	ctx, _ := setupTestStore(t)
	fireAt := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	ctx.Clock = clock.NewFake(fireAt.Add(30 * time.Second))
	ctx.Notifier = sink
	installFajr(t, ctx.Ledger().Install, fireAt)

	cmd := &NotifyCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first notify run failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second notify run failed: %v", err)
	}
	if got := sink.count(); got != 1 {
		t.Errorf("notifications sent = %d, want 1", got)
	}
}

func TestNotifyCmd_NotDueYet(t *testing.T) {
	ctx, _ := setupTestStore(t)
	fireAt := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	ctx.Clock = clock.NewFake(fireAt.Add(-time.Minute))
	ctx.Notifier = sink
	installFajr(t, ctx.Ledger().Install, fireAt)

	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("notify run failed: %v", err)
	}
	if got := sink.count(); got != 0 {
		t.Errorf("notifications sent = %d, want 0", got)
	}
}

func TestNotifyCmd_DryRunDoesNotClaim(t *testing.T) {
	ctx, _ := setupTestStore(t)
	fireAt := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	ctx.Clock = clock.NewFake(fireAt)
	ctx.Notifier = sink
	installFajr(t, ctx.Ledger().Install, fireAt)

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if got := sink.count(); got != 0 {
		t.Errorf("dry run sent %d notifications, want 0", got)
	}

	pending, err := ctx.Ledger().Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending alarms after dry run = %d, want 1", len(pending))
	}
}

func TestNotifyCmd_Disabled(t *testing.T) {
	ctx, store := setupTestStore(t)
	fireAt := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	ctx.Clock = clock.NewFake(fireAt)
	ctx.Notifier = sink
	installFajr(t, ctx.Ledger().Install, fireAt)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	settings.NotificationsEnabled = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("notify run failed: %v", err)
	}
	if got := sink.count(); got != 0 {
		t.Errorf("notifications sent while disabled = %d, want 0", got)
	}
}
