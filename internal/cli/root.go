package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/sirr/internal/alarm"
	"github.com/julianstephens/sirr/internal/alarm/ledger"
	"github.com/julianstephens/sirr/internal/backup"
	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/content"
	apperrors "github.com/julianstephens/sirr/internal/errors"
	"github.com/julianstephens/sirr/internal/location"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/notifier"
	"github.com/julianstephens/sirr/internal/prayer"
	"github.com/julianstephens/sirr/internal/prayertimes"
	"github.com/julianstephens/sirr/internal/storage"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
	"github.com/julianstephens/sirr/internal/unlock"
	"github.com/julianstephens/sirr/internal/utils"
)

// Config is the environment-derived configuration of a run.
type Config struct {
	ContentURL     string
	PrayerAPIURL   string
	TelegramToken  string
	TelegramChatID int64
}

type Context struct {
	Store  storage.Provider
	Config Config
	// Clock overrides the system clock. Tests set a clock.Fake.
	Clock clock.Clock
	// Notifier overrides the configured sinks.
	Notifier notifier.Sink
}

// Settings returns the stored settings with defaults filled in.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// Now returns the clock commands should read, in the configured timezone.
func (c *Context) Now(settings models.Settings) clock.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, using local time", "timezone", settings.Timezone, "error", err)
		loc = time.Local
	}
	return clock.NewSystem(loc)
}

func (c *Context) Unlock(settings models.Settings) (*unlock.Engine, error) {
	cutoff, err := unlock.ParseCutoff(settings.UnlockCutoff)
	if err != nil {
		return nil, err
	}
	return unlock.New(c.Store, c.Store, c.Now(settings), cutoff), nil
}

func (c *Context) Tracker(settings models.Settings) *prayer.Tracker {
	return prayer.NewTracker(c.Store, c.Now(settings),
		prayer.WithDefaults(settings.NotificationsEnabled, settings.DefaultOffsetMin))
}

func (c *Context) PrayerTimes(settings models.Settings) *prayertimes.Service {
	return prayertimes.NewService(prayertimes.NewClient(c.Config.PrayerAPIURL), c.Store, c.Now(settings))
}

// Content returns the content client. The environment URL wins over the
// stored setting.
func (c *Context) Content(settings models.Settings) *content.Service {
	url := c.Config.ContentURL
	if url == "" {
		url = settings.ContentURL
	}
	return content.NewService(url)
}

// Sink returns the notification sinks configured for this run: the tray
// app always, Telegram when a token and chat are set.
func (c *Context) Sink() notifier.Sink {
	if c.Notifier != nil {
		return c.Notifier
	}
	sinks := notifier.Multi{notifier.NewTray()}
	if c.Config.TelegramToken != "" && c.Config.TelegramChatID != 0 {
		sinks = append(sinks, notifier.NewTelegram(c.Config.TelegramToken, c.Config.TelegramChatID, ""))
	}
	return sinks
}

// RefreshPrayers loads today's prayer times (remote, cached or default) and
// merges them into today's records without touching user state.
func (c *Context) RefreshPrayers(ctx context.Context, settings models.Settings, force bool) (prayertimes.Result, error) {
	now := c.Now(settings)
	loc, err := location.NewProvider(c.Store, c.Store, now).Current(ctx)
	if err != nil {
		return prayertimes.Result{}, fmt.Errorf("failed to resolve location: %w", err)
	}

	svc := c.PrayerTimes(settings)
	var res prayertimes.Result
	if force {
		res, err = svc.Refresh(ctx, loc, settings.FiqhMethod)
	} else {
		res, err = svc.Today(ctx, loc, settings.FiqhMethod)
	}
	if err != nil {
		return prayertimes.Result{}, fmt.Errorf("failed to load prayer times: %w", err)
	}
	if res.Err != nil {
		logger.Warn("prayer times service unavailable", "source", res.Source, "error", res.Err)
	}

	if err := c.Tracker(settings).RefreshTimes(ctx, res.Times, settings.FiqhMethod); err != nil {
		return res, fmt.Errorf("failed to save prayer times: %w", err)
	}
	return res, nil
}

// Ledger is the persistent alarm backend driven by `sirr notify`.
func (c *Context) Ledger() *ledger.Backend {
	return ledger.New(c.Store, c.Store)
}

// Reschedule installs today's prayer alarms on backend. With notifications
// switched off globally every slot is cancelled instead.
func (c *Context) Reschedule(ctx context.Context, settings models.Settings, backend alarm.Backend) (alarm.Result, error) {
	sched := alarm.NewScheduler(backend, c.Now(settings))
	if !settings.NotificationsEnabled {
		return alarm.Result{}, sched.CancelAll(ctx)
	}
	prayers, err := c.Tracker(settings).Today(ctx)
	if err != nil {
		return alarm.Result{}, fmt.Errorf("failed to load today's prayers: %w", err)
	}
	return sched.ScheduleAll(ctx, prayers)
}

// ApplyAlarms reschedules the persistent alarms after prayers or settings
// changed. Per-prayer failures are logged and reported on stdout; only store
// errors are returned.
func (c *Context) ApplyAlarms(ctx context.Context, settings models.Settings) error {
	res, err := c.Reschedule(ctx, settings, c.Ledger())
	if err != nil {
		return fmt.Errorf("failed to update alarms: %w", err)
	}
	if err := res.Err(); err != nil {
		logger.Warn("some alarms were not updated", "error", err)
		if res.Denied() {
			fmt.Println(apperrors.Format(apperrors.WithHint(alarm.ErrExactAlarmDenied, ExactAlarmHint)))
		} else {
			fmt.Printf("⚠  Some alarms were not updated: %v\n", err)
		}
	}
	return nil
}

// PrintSchedule writes a scheduling result the way every command shows it.
func PrintSchedule(res alarm.Result) {
	for _, a := range res.Scheduled {
		fmt.Printf("  ⏰ %-8s %s  %s\n", a.Prayer, a.FireAt.Format(constants.ClockFormat), a.Title)
	}
	for _, name := range res.Skipped {
		fmt.Printf("  ⊘ %-8s time already passed\n", name)
	}
	for _, name := range res.Cancelled {
		fmt.Printf("  ✗ %-8s cancelled\n", name)
	}
	for _, f := range res.Failed {
		fmt.Printf("  ❌ %-8s %v\n", f.Prayer, f.Err)
	}
	if res.Denied() {
		fmt.Println()
		fmt.Println(apperrors.Format(apperrors.WithHint(alarm.ErrExactAlarmDenied, ExactAlarmHint)))
	}
}

// ExactAlarmHint tells the user how to grant exact alarm delivery.
const ExactAlarmHint = "enable exact alarms: sirr settings --alarms-exact=true"

// PerformAutomaticBackup backs up a SQLite database and silently handles
// errors. PostgreSQL databases are left to the server's own backups.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Stdin is read by Confirm.
var Stdin io.Reader = os.Stdin

// Confirm asks a yes/no question and reports whether the answer was yes.
func Confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
