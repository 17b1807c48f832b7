// Package prayers holds the daily prayer commands.
package prayers

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/prayer"
)

func parseName(s string) (models.PrayerName, error) {
	name, ok := models.ParsePrayerName(s)
	if !ok {
		return "", fmt.Errorf("unknown prayer %q (expected one of %v)", s, models.PrayerNames)
	}
	return name, nil
}

func statusIcon(p models.Prayer) string {
	switch {
	case p.Status.IsOffered():
		return "✓"
	case p.Status.IsLate():
		return "⏱"
	default:
		return "○"
	}
}

type PrayerListCmd struct{}

func (c *PrayerListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	bg := context.Background()
	tracker := ctx.Tracker(settings)

	prayers, err := tracker.Today(bg)
	if err != nil {
		return err
	}
	if len(prayers) == 0 {
		if _, err := ctx.RefreshPrayers(bg, settings, false); err != nil {
			return err
		}
		if prayers, err = tracker.Today(bg); err != nil {
			return err
		}
		if err := ctx.ApplyAlarms(bg, settings); err != nil {
			return err
		}
	}

	date := tracker.Date()
	fmt.Printf("Prayers for %s", date)
	if hijri, ok := ctx.PrayerTimes(settings).Hijri(bg, date); ok {
		fmt.Printf(" (%s)", hijri)
	}
	fmt.Println()
	fmt.Println()

	now := ctx.Now(settings).Now()
	for _, p := range prayers {
		alarm := "🔕"
		if p.NotificationEnabled {
			alarm = "🔔 " + models.OffsetLabel(p.NotificationOffset)
		}
		line := fmt.Sprintf("  %s %-8s %-7s %s  %s", statusIcon(p), p.Name, p.NameArabic, p.Time, alarm)
		if at, ok := p.Status.OfferedAt(); ok {
			line += "  offered " + at
		} else if !prayer.HasTimeArrived(p, now) {
			line += "  upcoming"
		}
		fmt.Println(line)
	}

	offered, late, err := tracker.Counts(bg)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d offered, %d qaza, %d remaining\n", offered, late, len(prayers)-offered-late)
	return nil
}

type PrayerRefreshCmd struct{}

func (c *PrayerRefreshCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	bg := context.Background()
	res, err := ctx.RefreshPrayers(bg, settings, true)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Prayer times for %s refreshed (source: %s)\n", res.Date, res.Source)
	if res.Err != nil {
		fmt.Printf("⚠  Prayer time service unavailable: %v\n", res.Err)
	}
	for _, t := range res.Times {
		fmt.Printf("  %-8s %s\n", t.Name, t.Clock)
	}
	return ctx.ApplyAlarms(bg, settings)
}

// mark runs one status transition and reports a rejection without failing.
// Accepted transitions reschedule the alarms: an offered prayer needs none.
func mark(ctx *cli.Context, raw string, verb string, fn func(*prayer.Tracker, context.Context, models.PrayerName) (bool, error)) error {
	name, err := parseName(raw)
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	bg := context.Background()
	ok, err := fn(ctx.Tracker(settings), bg, name)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", name, err)
	}
	if !ok {
		fmt.Printf("%s rejected: the prayer time has not arrived yet\n", name)
		return nil
	}
	fmt.Printf("✓ %s %s\n", name, verb)
	return ctx.ApplyAlarms(bg, settings)
}

type PrayerOfferCmd struct {
	Name string `arg:"" help:"Prayer name (Fajr, Dhuhr, Asr, Maghrib, Isha)."`
}

func (c *PrayerOfferCmd) Run(ctx *cli.Context) error {
	return mark(ctx, c.Name, "marked offered", (*prayer.Tracker).MarkOffered)
}

type PrayerLateCmd struct {
	Name string `arg:"" help:"Prayer name (Fajr, Dhuhr, Asr, Maghrib, Isha)."`
}

func (c *PrayerLateCmd) Run(ctx *cli.Context) error {
	return mark(ctx, c.Name, "marked qaza", (*prayer.Tracker).MarkLate)
}

type PrayerUnmarkCmd struct {
	Name string `arg:"" help:"Prayer name (Fajr, Dhuhr, Asr, Maghrib, Isha)."`
}

func (c *PrayerUnmarkCmd) Run(ctx *cli.Context) error {
	return mark(ctx, c.Name, "marked pending", (*prayer.Tracker).Unmark)
}

type PrayerNotifyCmd struct {
	Name    string `arg:"" help:"Prayer name (Fajr, Dhuhr, Asr, Maghrib, Isha)."`
	Enabled *bool  `help:"Enable or disable the alarm." negatable:""`
	Offset  *int   `help:"Minutes before the prayer time (0, 5, 10, 15, 30, 60)."`
}

func (c *PrayerNotifyCmd) Run(ctx *cli.Context) error {
	name, err := parseName(c.Name)
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	bg := context.Background()
	tracker := ctx.Tracker(settings)

	current, err := ctx.Store.GetPrayer(bg, tracker.Date(), name)
	if err != nil {
		return fmt.Errorf("failed to load %s, run 'sirr prayer refresh' first: %w", name, err)
	}
	enabled, offset := current.NotificationEnabled, current.NotificationOffset
	if c.Enabled != nil {
		enabled = *c.Enabled
	}
	if c.Offset != nil {
		if !models.ValidOffset(*c.Offset) {
			return fmt.Errorf("invalid offset %d (allowed: %v)", *c.Offset, constants.NotificationOffsets)
		}
		offset = *c.Offset
	}

	if err := tracker.UpdateNotification(bg, name, enabled, offset); err != nil {
		return err
	}
	state := "off"
	if enabled {
		state = models.OffsetLabel(offset)
	}
	fmt.Printf("✓ %s alarm: %s\n", name, state)
	return ctx.ApplyAlarms(bg, settings)
}

type PrayerCleanupCmd struct {
	Days int `help:"Keep records from the last N days (defaults to the data retention setting)."`
}

func (c *PrayerCleanupCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	days := c.Days
	if days <= 0 {
		days = settings.DataRetentionDays
	}
	n, err := ctx.Tracker(settings).DeleteOld(context.Background(), days)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %d prayer records older than %d days\n", n, days)
	return nil
}
