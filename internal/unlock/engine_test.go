package unlock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

type memStore struct {
	pointer int
	days    map[int]models.DayProgress
	err     error
	writes  int
}

func newMemStore(pointer int) *memStore {
	return &memStore{pointer: pointer, days: map[int]models.DayProgress{}}
}

func (m *memStore) complete(day int, at time.Time) {
	m.days[day] = models.DayProgress{Day: day, Completed: true, CompletedAt: &at}
}

func (m *memStore) GetRamadanStatus(ctx context.Context) (models.RamadanStatus, error) {
	if m.err != nil {
		return models.RamadanStatus{}, m.err
	}
	return models.RamadanStatus{Active: true, CurrentDay: m.pointer}, nil
}

func (m *memStore) GetProgress(ctx context.Context, day int) (models.DayProgress, error) {
	if m.err != nil {
		return models.DayProgress{}, m.err
	}
	if p, ok := m.days[day]; ok {
		return p, nil
	}
	return models.DayProgress{Day: day}, nil
}

func (m *memStore) ListProgress(ctx context.Context) ([]models.DayProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.DayProgress, 0, len(m.days))
	for _, p := range m.days {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) MarkCompleted(ctx context.Context, day int, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	p := m.days[day]
	p.Day = day
	p.Completed = true
	if p.CompletedAt == nil {
		p.CompletedAt = &at
	}
	m.days[day] = p
	return nil
}

func (m *memStore) ResetProgress(ctx context.Context) error {
	m.days = map[int]models.DayProgress{}
	return nil
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 2, day, hour, minute, 0, 0, time.UTC)
}

func newTestEngine(store *memStore, now time.Time) (*Engine, *clock.Fake) {
	clk := clock.NewFake(now)
	return New(store, store, clk), clk
}

func mustUnlocked(t *testing.T, e *Engine, day int) bool {
	t.Helper()
	ok, err := e.IsUnlocked(context.Background(), day)
	if err != nil {
		t.Fatalf("IsUnlocked(%d) error = %v", day, err)
	}
	return ok
}

func TestCatchUpUnlocksImmediately(t *testing.T) {
	store := newMemStore(5)
	store.complete(1, at(20, 9, 0))
	e, _ := newTestEngine(store, at(20, 9, 0))

	if !mustUnlocked(t, e, 2) {
		t.Error("IsUnlocked(2) = false, want true in catch-up")
	}
	if mustUnlocked(t, e, 3) {
		t.Error("IsUnlocked(3) = true, want false while day 2 is incomplete")
	}
}

func TestSteadyStateWaitsForCutoff(t *testing.T) {
	store := newMemStore(5)
	for d := 1; d <= 3; d++ {
		store.complete(d, at(15+d, 10, 0))
	}
	store.complete(4, at(20, 23, 0))
	e, clk := newTestEngine(store, at(20, 23, 30))

	if mustUnlocked(t, e, 5) {
		t.Error("IsUnlocked(5) at 23:30 = true, want false")
	}
	clk.Set(at(21, 4, 59))
	if mustUnlocked(t, e, 5) {
		t.Error("IsUnlocked(5) at 04:59 = true, want false")
	}
	clk.Set(at(21, 5, 0))
	if !mustUnlocked(t, e, 5) {
		t.Error("IsUnlocked(5) at 05:00 = false, want true")
	}
	clk.Set(at(21, 5, 1))
	if !mustUnlocked(t, e, 5) {
		t.Error("IsUnlocked(5) at 05:01 = false, want true")
	}
}

func TestNextCutoffBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		completed time.Time
		want      time.Time
	}{
		{"before cutoff opens same day", at(10, 3, 0), at(10, 5, 0)},
		{"exactly at cutoff rolls over", at(10, 5, 0), at(11, 5, 0)},
		{"after cutoff rolls over", at(10, 5, 1), at(11, 5, 0)},
		{"late evening", at(10, 23, 59), at(11, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(2)
			store.complete(1, tt.completed)
			e, _ := newTestEngine(store, tt.completed)

			got, ok, err := e.UnlockAt(context.Background(), 2)
			if err != nil || !ok {
				t.Fatalf("UnlockAt(2) = %v, %v, %v", got, ok, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("UnlockAt(2) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCustomCutoff(t *testing.T) {
	store := newMemStore(2)
	store.complete(1, at(10, 3, 0))
	opt, err := ParseCutoff("03:30")
	if err != nil {
		t.Fatalf("ParseCutoff() error = %v", err)
	}
	e := New(store, store, clock.NewFake(at(10, 3, 29)), opt)

	if mustUnlocked(t, e, 2) {
		t.Error("IsUnlocked(2) at 03:29 = true, want false")
	}
	got, _, _ := e.UnlockAt(context.Background(), 2)
	if !got.Equal(at(10, 3, 30)) {
		t.Errorf("UnlockAt(2) = %v, want 03:30 same day", got)
	}

	if _, err := ParseCutoff("5am"); err == nil {
		t.Error("ParseCutoff(5am) should fail")
	}
}

func TestDayOneAlwaysUnlocked(t *testing.T) {
	for _, pointer := range []int{0, 1, 30} {
		e, _ := newTestEngine(newMemStore(pointer), at(1, 0, 0))
		if !mustUnlocked(t, e, 1) {
			t.Errorf("IsUnlocked(1) with pointer %d = false, want true", pointer)
		}
	}
}

func TestLockedCases(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*memStore)
		day   int
	}{
		{"zero ordinal", func(*memStore) {}, 0},
		{"negative ordinal", func(*memStore) {}, -3},
		{"past the curriculum", func(*memStore) {}, 31},
		{"ahead of pointer", func(m *memStore) {
			m.pointer = 3
			for d := 1; d <= 3; d++ {
				m.complete(d, at(1, 1, 0))
			}
		}, 4},
		{"previous incomplete", func(m *memStore) { m.pointer = 10 }, 4},
		{"completed without timestamp", func(m *memStore) {
			m.pointer = 10
			m.complete(1, at(1, 1, 0))
			m.days[2] = models.DayProgress{Day: 2, Completed: true}
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(30)
			tt.setup(store)
			e, _ := newTestEngine(store, at(25, 12, 0))
			if mustUnlocked(t, e, tt.day) {
				t.Errorf("IsUnlocked(%d) = true, want false", tt.day)
			}
		})
	}
}

func TestPointerIsClamped(t *testing.T) {
	store := newMemStore(45)
	e, _ := newTestEngine(store, at(1, 0, 0))

	max, err := e.MaxAccessible(context.Background())
	if err != nil {
		t.Fatalf("MaxAccessible() error = %v", err)
	}
	if max != 30 {
		t.Errorf("MaxAccessible() = %d, want 30", max)
	}

	store.pointer = -2
	max, _ = e.MaxAccessible(context.Background())
	if max != 0 {
		t.Errorf("MaxAccessible() = %d, want 0", max)
	}
}

func TestProgressPercent(t *testing.T) {
	store := newMemStore(10)
	store.complete(1, at(1, 6, 0))
	store.complete(2, at(2, 6, 0))
	store.complete(3, at(3, 6, 0))
	e, _ := newTestEngine(store, at(12, 0, 0))

	got, err := e.ProgressPercent(context.Background())
	if err != nil {
		t.Fatalf("ProgressPercent() error = %v", err)
	}
	if got != 30 {
		t.Errorf("ProgressPercent() = %d, want 30", got)
	}

	store.pointer = 3
	store.complete(4, at(4, 6, 0)) // outside the accessible range
	got, _ = e.ProgressPercent(context.Background())
	if got != 100 {
		t.Errorf("ProgressPercent() = %d, want 100", got)
	}

	store.pointer = 7
	got, _ = e.ProgressPercent(context.Background())
	if got != 57 {
		t.Errorf("ProgressPercent() = %d, want 57 (floor of 4/7)", got)
	}

	store.pointer = 0
	got, _ = e.ProgressPercent(context.Background())
	if got != 0 {
		t.Errorf("ProgressPercent() = %d, want 0 with no accessible days", got)
	}
}

func TestTimeRemainingDescription(t *testing.T) {
	store := newMemStore(5)
	for d := 1; d <= 3; d++ {
		store.complete(d, at(10+d, 8, 0))
	}
	store.complete(4, at(20, 22, 15))
	e, _ := newTestEngine(store, at(20, 23, 0))

	tests := []struct {
		day  int
		want string
	}{
		{0, "Invalid day"},
		{1, "Available now"},
		{3, "Available now"},
		{5, "Unlocks in 6h 0m"},
		{6, "Not yet available"},
		{31, "Invalid day"},
	}
	for _, tt := range tests {
		got, err := e.TimeRemainingDescription(context.Background(), tt.day)
		if err != nil {
			t.Fatalf("TimeRemainingDescription(%d) error = %v", tt.day, err)
		}
		if got != tt.want {
			t.Errorf("TimeRemainingDescription(%d) = %q, want %q", tt.day, got, tt.want)
		}
	}

	store.pointer = 10
	got, _ := e.TimeRemainingDescription(context.Background(), 7)
	if got != "Complete Day 6 first" {
		t.Errorf("TimeRemainingDescription(7) = %q, want %q", got, "Complete Day 6 first")
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	store := newMemStore(5)
	e, clk := newTestEngine(store, at(3, 7, 0))
	ctx := context.Background()

	if err := e.Complete(ctx, 1); err != nil {
		t.Fatalf("Complete(1) error = %v", err)
	}
	clk.Advance(36 * time.Hour)
	if err := e.Complete(ctx, 1); err != nil {
		t.Fatalf("Complete(1) again error = %v", err)
	}
	if store.writes != 1 {
		t.Errorf("store writes = %d, want 1", store.writes)
	}
	if got := store.days[1].CompletedAt; got == nil || !got.Equal(at(3, 7, 0)) {
		t.Errorf("CompletedAt = %v, want first completion", got)
	}

	for _, day := range []int{0, 31} {
		if err := e.Complete(ctx, day); err != nil {
			t.Errorf("Complete(%d) error = %v, want no-op", day, err)
		}
	}
	if store.writes != 1 {
		t.Errorf("out-of-range Complete wrote to the store")
	}

	done, err := e.IsCompleted(ctx, 1)
	if err != nil || !done {
		t.Errorf("IsCompleted(1) = %v, %v, want true", done, err)
	}
	count, err := e.CompletedCount(ctx)
	if err != nil || count != 1 {
		t.Errorf("CompletedCount() = %d, %v, want 1", count, err)
	}
}

func TestNextChangeAt(t *testing.T) {
	store := newMemStore(3)
	store.complete(1, at(1, 8, 0))
	store.complete(2, at(2, 8, 0))
	e, clk := newTestEngine(store, at(2, 9, 0))
	ctx := context.Background()

	next, ok, err := e.NextChangeAt(ctx)
	if err != nil || !ok {
		t.Fatalf("NextChangeAt() = %v, %v, %v", next, ok, err)
	}
	if !next.Equal(at(3, 5, 0)) {
		t.Errorf("NextChangeAt() = %v, want next day 05:00", next)
	}

	clk.Set(at(3, 5, 0))
	_, ok, err = e.NextChangeAt(ctx)
	if err != nil {
		t.Fatalf("NextChangeAt() error = %v", err)
	}
	if ok {
		t.Error("NextChangeAt() reported a change with nothing pending")
	}
}

func TestSnapshot(t *testing.T) {
	store := newMemStore(4)
	store.complete(1, at(1, 8, 0))
	e, _ := newTestEngine(store, at(1, 9, 0))

	states, err := e.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(states) != 30 {
		t.Fatalf("Snapshot() = %d days, want 30", len(states))
	}
	if !states[0].Completed || !states[0].Unlocked {
		t.Errorf("day 1 = %+v, want completed and unlocked", states[0])
	}
	if !states[1].Unlocked {
		t.Errorf("day 2 = %+v, want unlocked (catch-up)", states[1])
	}
	if states[2].Unlocked || states[2].Description != "Complete Day 2 first" {
		t.Errorf("day 3 = %+v, want locked behind day 2", states[2])
	}
	if states[4].Description != "Not yet available" {
		t.Errorf("day 5 description = %q, want %q", states[4].Description, "Not yet available")
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	store := newMemStore(5)
	store.err = errors.New("disk unplugged")
	e, _ := newTestEngine(store, at(1, 0, 0))
	ctx := context.Background()

	if _, err := e.IsUnlocked(ctx, 2); err == nil {
		t.Error("IsUnlocked() should return the store error")
	}
	if _, err := e.ProgressPercent(ctx); err == nil {
		t.Error("ProgressPercent() should return the store error")
	}
	if err := e.Complete(ctx, 2); err == nil {
		t.Error("Complete() should return the store error")
	}
	// out-of-range and day 1 never consult the store
	if ok, err := e.IsUnlocked(ctx, 1); err != nil || !ok {
		t.Errorf("IsUnlocked(1) = %v, %v, want true without error", ok, err)
	}
	if ok, err := e.IsUnlocked(ctx, 99); err != nil || ok {
		t.Errorf("IsUnlocked(99) = %v, %v, want false without error", ok, err)
	}
}

func TestCompletionVisibleThroughSQLite(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "sirr.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.SaveRamadanStatus(ctx, models.RamadanStatus{Active: true, CurrentDay: 6}); err != nil {
		t.Fatalf("SaveRamadanStatus() error = %v", err)
	}

	e := New(store, store, clock.NewFake(at(14, 20, 0)))
	for day := 1; day <= 5; day++ {
		if !mustUnlocked(t, e, day) {
			t.Fatalf("IsUnlocked(%d) = false before completing it", day)
		}
		if err := e.Complete(ctx, day); err != nil {
			t.Fatalf("Complete(%d) error = %v", day, err)
		}
	}
	// day 6 is level with the pointer
	if mustUnlocked(t, e, 6) {
		t.Error("IsUnlocked(6) = true, want steady-state wait")
	}
	desc, err := e.TimeRemainingDescription(ctx, 6)
	if err != nil {
		t.Fatalf("TimeRemainingDescription() error = %v", err)
	}
	if desc != "Unlocks in 9h 0m" {
		t.Errorf("TimeRemainingDescription(6) = %q, want %q", desc, "Unlocks in 9h 0m")
	}
}
