package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/julianstephens/sirr/internal/alarm/inprocess"
	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/content"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/utils"
)

// DaemonCmd keeps today's alarms in memory and fires them itself, for hosts
// without cron.
type DaemonCmd struct {
	Refresh time.Duration `help:"How often to refresh prayer times and reschedule." default:"1h"`
}

// daemon is the state of one daemon run. Jobs run on gocron's goroutines, so
// every reschedule holds mu.
type daemon struct {
	ctx     *cli.Context
	backend *inprocess.Backend

	mu       sync.Mutex
	lastSeen string
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	backend := inprocess.New(loc, ctx.Sink())
	d := &daemon{ctx: ctx, backend: backend}
	if err := d.schedule(); err != nil {
		return err
	}

	sched := backend.Scheduler()
	if _, err := sched.Every(c.Refresh).Tag("refresh").WaitForSchedule().Do(d.tick); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	// Marks and alarm edits made from the CLI or TUI
	if _, err := sched.Every(1).Minute().Tag("watch").WaitForSchedule().Do(d.watch); err != nil {
		return fmt.Errorf("failed to schedule watch: %w", err)
	}
	// New day, new prayer records
	if _, err := sched.Every(1).Day().At("00:01").Tag("midnight").Do(d.tick); err != nil {
		return fmt.Errorf("failed to schedule daily refresh: %w", err)
	}

	backend.Start()
	defer backend.Stop()
	fmt.Printf("sirr daemon running (refresh every %s). Press Ctrl+C to stop.\n", c.Refresh)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	fmt.Println("Stopping daemon...")
	return nil
}

func (d *daemon) tick() {
	if err := d.schedule(); err != nil {
		logger.Error("daemon refresh failed", "error", err)
	}
}

// watch reinstalls alarms when today's prayer records or the notification
// setting changed since the last schedule. It never calls remote services.
func (d *daemon) watch() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx := d.ctx
	bg := context.Background()
	settings, err := ctx.Settings()
	if err != nil {
		logger.Error("daemon watch failed", "error", err)
		return
	}
	prayers, err := ctx.Tracker(settings).Today(bg)
	if err != nil {
		logger.Error("daemon watch failed", "error", err)
		return
	}
	if fingerprint(settings, prayers) == d.lastSeen {
		return
	}
	logger.Info("prayer records changed, rescheduling")
	if err := d.reschedule(settings); err != nil {
		logger.Error("daemon reschedule failed", "error", err)
	}
}

func fingerprint(settings models.Settings, prayers []models.Prayer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%t", settings.NotificationsEnabled)
	for _, p := range prayers {
		fmt.Fprintf(&b, "|%s %s %s %s %t %d", p.Date, p.Name, p.Time, p.Status, p.NotificationEnabled, p.NotificationOffset)
	}
	return b.String()
}

// schedule syncs the calendar, refreshes prayer times and reinstalls alarms.
// Settings are re-read so changes apply without a restart.
func (d *daemon) schedule() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx := d.ctx
	bg := context.Background()
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if _, err := content.NewSyncer(ctx.Content(settings), ctx.Store).Sync(bg); err != nil {
		logger.Warn("ramadan status sync failed", "error", err)
	}
	if _, err := ctx.RefreshPrayers(bg, settings, false); err != nil {
		return err
	}
	return d.reschedule(settings)
}

// reschedule installs today's alarms and remembers the records they came
// from. Callers hold d.mu.
func (d *daemon) reschedule(settings models.Settings) error {
	ctx := d.ctx
	bg := context.Background()
	prayers, err := ctx.Tracker(settings).Today(bg)
	if err != nil {
		return err
	}
	res, err := ctx.Reschedule(bg, settings, d.backend)
	if err != nil {
		return err
	}
	d.lastSeen = fingerprint(settings, prayers)
	fmt.Printf("[%s] alarms refreshed\n", ctx.Now(settings).Now().Format("15:04:05"))
	cli.PrintSchedule(res)
	return nil
}
