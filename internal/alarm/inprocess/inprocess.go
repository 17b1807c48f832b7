// Package inprocess is the alarm backend used by `sirr daemon`: each alarm is
// a one-shot gocron job tagged with its slot.
package inprocess

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
)

// Sink shows one notification.
type Sink interface {
	Send(ctx context.Context, title, message string) error
}

type Backend struct {
	scheduler *gocron.Scheduler
	sink      Sink

	mu        sync.Mutex
	installed map[int]models.Alarm
	fired     map[int]models.Alarm
}

func New(loc *time.Location, sink Sink) *Backend {
	if loc == nil {
		loc = time.Local
	}
	return &Backend{
		scheduler: gocron.NewScheduler(loc),
		sink:      sink,
		installed: map[int]models.Alarm{},
		fired:     map[int]models.Alarm{},
	}
}

// Scheduler exposes the underlying gocron scheduler so the daemon can add
// its own periodic jobs.
func (b *Backend) Scheduler() *gocron.Scheduler {
	return b.scheduler
}

func (b *Backend) Start() {
	b.scheduler.StartAsync()
}

func (b *Backend) Stop() {
	b.scheduler.Stop()
}

func slotTag(slot int) string {
	return "slot-" + strconv.Itoa(slot)
}

// Install replaces any job at a.Slot with a single run at a.FireAt. An alarm
// that already fired with the same payload is not installed again.
func (b *Backend) Install(ctx context.Context, a models.Alarm) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.fired[a.Slot]; ok && a.Slot != constants.SlotTest && prev.SameDelivery(a) {
		return nil
	}

	if err := b.remove(a.Slot); err != nil {
		return err
	}
	_, err := b.scheduler.Every(1).Day().
		StartAt(a.FireAt).
		LimitRunsTo(1).
		Tag(slotTag(a.Slot)).
		Do(b.fire, a)
	if err != nil {
		return err
	}
	b.installed[a.Slot] = a
	logger.Debug("alarm job added", "slot", a.Slot, "fire_at", a.FireAt)
	return nil
}

func (b *Backend) Cancel(ctx context.Context, slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove(slot)
}

func (b *Backend) CancelAll(ctx context.Context, slots []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, slot := range slots {
		if err := b.remove(slot); err != nil {
			return err
		}
	}
	return nil
}

// CanScheduleExact is true whenever there is a sink to deliver to.
func (b *Backend) CanScheduleExact(ctx context.Context) bool {
	return b.sink != nil
}

// Installed returns the alarms that have not fired yet.
func (b *Backend) Installed() []models.Alarm {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Alarm, 0, len(b.installed))
	for _, a := range b.installed {
		out = append(out, a)
	}
	return out
}

func (b *Backend) remove(slot int) error {
	delete(b.installed, slot)
	err := b.scheduler.RemoveByTag(slotTag(slot))
	if err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return err
	}
	return nil
}

// fire only hands the captured payload to the sink.
func (b *Backend) fire(a models.Alarm) {
	b.mu.Lock()
	current, ok := b.installed[a.Slot]
	if !ok || current.Token != a.Token {
		b.mu.Unlock()
		return
	}
	delete(b.installed, a.Slot)
	b.fired[a.Slot] = a
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), constants.ServiceTimeout)
	defer cancel()
	if err := b.sink.Send(ctx, a.Title, a.Message); err != nil {
		logger.Error("failed to deliver alarm", "prayer", a.Prayer, "error", err)
		return
	}
	logger.Info("alarm delivered", "prayer", a.Prayer, "slot", a.Slot)
}
