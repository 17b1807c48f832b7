package inprocess

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/alarm"
	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/models"
)

type chanSink struct {
	mu     sync.Mutex
	titles []string
	done   chan struct{}
}

func (c *chanSink) Send(ctx context.Context, title, message string) error {
	c.mu.Lock()
	c.titles = append(c.titles, title)
	c.mu.Unlock()
	if c.done != nil {
		c.done <- struct{}{}
	}
	return nil
}

func TestInstallReplacesSlot(t *testing.T) {
	ctx := context.Background()
	b := New(time.UTC, &chanSink{})
	fireAt := time.Now().Add(time.Hour)

	for _, token := range []string{"a", "b"} {
		if err := b.Install(ctx, models.Alarm{Slot: 100, Token: token, FireAt: fireAt}); err != nil {
			t.Fatalf("Install() error = %v", err)
		}
	}
	if got := len(b.Scheduler().Jobs()); got != 1 {
		t.Errorf("jobs = %d, want 1", got)
	}
	installed := b.Installed()
	if len(installed) != 1 || installed[0].Token != "b" {
		t.Errorf("Installed() = %v, want token b", installed)
	}

	if err := b.Cancel(ctx, 100); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := b.Cancel(ctx, 100); err != nil {
		t.Errorf("Cancel() of empty slot error = %v", err)
	}
	if got := len(b.Scheduler().Jobs()); got != 0 {
		t.Errorf("jobs after Cancel = %d, want 0", got)
	}
}

func TestScheduleAllThroughGocron(t *testing.T) {
	ctx := context.Background()
	b := New(time.UTC, &chanSink{})
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	s := alarm.NewScheduler(b, clock.NewFake(now))

	var prayers []models.Prayer
	for _, name := range models.PrayerNames {
		prayers = append(prayers, models.NewPrayer(name, "2026-03-01", "09:00 PM", 1))
	}
	for i := 0; i < 2; i++ {
		if _, err := s.ScheduleAll(ctx, prayers); err != nil {
			t.Fatalf("ScheduleAll() error = %v", err)
		}
	}
	if got := len(b.Scheduler().Jobs()); got != 5 {
		t.Errorf("jobs = %d, want 5", got)
	}

	if err := s.CancelAll(ctx); err != nil {
		t.Fatalf("CancelAll() error = %v", err)
	}
	if got := len(b.Installed()); got != 0 {
		t.Errorf("Installed() after CancelAll = %d, want 0", got)
	}
}

func TestFireDeliversOnce(t *testing.T) {
	sink := &chanSink{}
	b := New(time.UTC, sink)
	a := models.Alarm{Slot: 100, Token: "t1", Prayer: "Fajr", Title: "🕌 Fajr in 15 minutes", FireAt: time.Now().Add(time.Hour)}
	if err := b.Install(context.Background(), a); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	b.fire(a)
	b.fire(a)
	if len(sink.titles) != 1 {
		t.Errorf("sent %d notifications, want 1", len(sink.titles))
	}
}

func TestFireIgnoresReplacedAlarm(t *testing.T) {
	sink := &chanSink{}
	b := New(time.UTC, sink)
	old := models.Alarm{Slot: 200, Token: "old", FireAt: time.Now().Add(time.Hour)}
	b.Install(context.Background(), old)
	b.Install(context.Background(), models.Alarm{Slot: 200, Token: "new", FireAt: time.Now().Add(2 * time.Hour)})

	b.fire(old)
	if len(sink.titles) != 0 {
		t.Errorf("replaced alarm fired: %v", sink.titles)
	}
}

func TestReinstallAfterFireIsSkipped(t *testing.T) {
	sink := &chanSink{}
	b := New(time.UTC, sink)
	fireAt := time.Now().Add(time.Hour).Truncate(time.Minute)
	a := models.Alarm{Slot: 100, Token: "t1", Title: "🕌 Fajr in 15 minutes", FireAt: fireAt}
	if err := b.Install(context.Background(), a); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	b.fire(a)

	again := a
	again.Token = "t2"
	if err := b.Install(context.Background(), again); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if got := len(b.Installed()); got != 0 {
		t.Errorf("Installed() after reinstalling a fired alarm = %d, want 0", got)
	}

	changed := again
	changed.Title = "🕌 Fajr in 10 minutes"
	changed.FireAt = fireAt.Add(5 * time.Minute)
	if err := b.Install(context.Background(), changed); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if got := len(b.Installed()); got != 1 {
		t.Errorf("Installed() after a changed alarm = %d, want 1", got)
	}
}

func TestJobFires(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real timer")
	}
	sink := &chanSink{done: make(chan struct{}, 1)}
	b := New(time.UTC, sink)
	b.Start()
	defer b.Stop()

	a := models.Alarm{Slot: 9999, Token: "test", Title: "🕌 Test Notification", FireAt: time.Now().Add(time.Second)}
	if err := b.Install(context.Background(), a); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	select {
	case <-sink.done:
	case <-time.After(10 * time.Second):
		t.Fatal("alarm did not fire")
	}
}

func TestCanScheduleExact(t *testing.T) {
	if New(nil, nil).CanScheduleExact(context.Background()) {
		t.Error("CanScheduleExact() = true without a sink")
	}
	if !New(nil, &chanSink{}).CanScheduleExact(context.Background()) {
		t.Error("CanScheduleExact() = false with a sink")
	}
}
