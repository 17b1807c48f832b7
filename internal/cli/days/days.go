// Package days holds the journey commands: showing, completing and resetting
// curriculum days.
package days

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/content"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
)

type DayListCmd struct{}

func (c *DayListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	engine, err := ctx.Unlock(settings)
	if err != nil {
		return err
	}

	bg := context.Background()
	states, err := engine.Snapshot(bg)
	if err != nil {
		return fmt.Errorf("failed to load journey: %w", err)
	}
	percent, err := engine.ProgressPercent(bg)
	if err != nil {
		return fmt.Errorf("failed to compute progress: %w", err)
	}
	status, err := ctx.Store.GetRamadanStatus(bg)
	if err != nil {
		return fmt.Errorf("failed to read ramadan status: %w", err)
	}

	active := "inactive"
	if status.Active {
		active = "active"
	}
	fmt.Printf("Ramadan %s, day %d of %d. Progress: %d%%\n\n", active, status.CurrentDay, constants.TotalDays, percent)
	for _, s := range states {
		switch {
		case s.Completed:
			at := ""
			if s.CompletedAt != nil {
				at = s.CompletedAt.In(ctx.Now(settings).Now().Location()).Format("Jan 2 15:04")
			}
			fmt.Printf("  ✓ Day %2d  completed %s\n", s.Day, at)
		case s.Unlocked:
			fmt.Printf("  ○ Day %2d  open\n", s.Day)
		default:
			fmt.Printf("  🔒 Day %2d  %s\n", s.Day, s.Description)
		}
	}
	return nil
}

type DayShowCmd struct {
	Day int `arg:"" help:"Day number (1-30)."`
}

func (c *DayShowCmd) Run(ctx *cli.Context) error {
	if c.Day < 1 || c.Day > constants.TotalDays {
		return fmt.Errorf("invalid day %d: must be between 1 and %d", c.Day, constants.TotalDays)
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	engine, err := ctx.Unlock(settings)
	if err != nil {
		return err
	}

	bg := context.Background()
	unlocked, err := engine.IsUnlocked(bg, c.Day)
	if err != nil {
		return fmt.Errorf("failed to check day %d: %w", c.Day, err)
	}
	if !unlocked {
		desc, err := engine.TimeRemainingDescription(bg, c.Day)
		if err != nil {
			return err
		}
		fmt.Printf("🔒 Day %d is locked. %s\n", c.Day, desc)
		return nil
	}

	day, err := ctx.Content(settings).FetchContent(bg, c.Day)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) && !errors.Is(err, content.ErrUnavailable) {
			return fmt.Errorf("failed to fetch content: %w", err)
		}
		logger.Warn("day content unavailable, showing placeholder", "day", c.Day, "error", err)
		day = content.Placeholder(c.Day)
	}

	printContent(day)

	if !day.Placeholder {
		viewed := content.NewViewed(ctx.Store, ctx.Now(settings))
		if err := viewed.Mark(bg, c.Day, content.KindLesson); err != nil {
			logger.Warn("failed to record viewed lesson", "day", c.Day, "error", err)
		}
	}

	completed, err := engine.IsCompleted(bg, c.Day)
	if err == nil && completed {
		fmt.Println("\n✓ Completed")
	}
	return nil
}

func printContent(c models.Content) {
	fmt.Printf("Day %d", c.Day)
	if c.Juz > 0 {
		fmt.Printf(" · Juz %d", c.Juz)
	}
	fmt.Println()
	if c.SurahRange != "" {
		fmt.Println(c.SurahRange)
	}
	fmt.Printf("\n%s\n", c.CoreTheme)
	if c.Explanation != "" {
		fmt.Printf("\n%s\n", c.Explanation)
	}
	if len(c.KeyTakeaways) > 0 {
		fmt.Println("\nKey takeaways:")
		for _, k := range c.KeyTakeaways {
			fmt.Printf("  • %s\n", k)
		}
	}
	if c.ReflectionQuestion != "" {
		fmt.Printf("\nReflect: %s\n", c.ReflectionQuestion)
	}
	var extra []string
	if c.RelatedAyah != "" {
		extra = append(extra, "Ayah: "+c.RelatedAyah)
	}
	if c.RelatedHadith != "" {
		extra = append(extra, "Hadith: "+c.RelatedHadith)
	}
	if c.VideoURL != "" {
		extra = append(extra, "Video: "+c.VideoURL)
	}
	if c.AudioURL != "" {
		extra = append(extra, "Audio: "+c.AudioURL)
	}
	if len(extra) > 0 {
		fmt.Printf("\n%s\n", strings.Join(extra, "\n"))
	}
}

type DayCompleteCmd struct {
	Day int `arg:"" help:"Day number (1-30)."`
}

func (c *DayCompleteCmd) Run(ctx *cli.Context) error {
	if c.Day < 1 || c.Day > constants.TotalDays {
		return fmt.Errorf("invalid day %d: must be between 1 and %d", c.Day, constants.TotalDays)
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	engine, err := ctx.Unlock(settings)
	if err != nil {
		return err
	}

	bg := context.Background()
	unlocked, err := engine.IsUnlocked(bg, c.Day)
	if err != nil {
		return fmt.Errorf("failed to check day %d: %w", c.Day, err)
	}
	if !unlocked {
		desc, _ := engine.TimeRemainingDescription(bg, c.Day)
		return fmt.Errorf("day %d is locked: %s", c.Day, desc)
	}

	if err := engine.Complete(bg, c.Day); err != nil {
		return fmt.Errorf("failed to complete day %d: %w", c.Day, err)
	}
	fmt.Printf("✓ Day %d completed\n", c.Day)

	if next := c.Day + 1; next <= constants.TotalDays {
		desc, err := engine.TimeRemainingDescription(bg, next)
		if err == nil {
			fmt.Printf("Day %d: %s\n", next, desc)
		}
	}
	return nil
}

type DayResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *DayResetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	engine, err := ctx.Unlock(settings)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm("Reset all journey progress?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := engine.ResetAll(context.Background()); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	fmt.Println("✓ Journey progress reset")
	return nil
}

// DayPointerCmd sets the calendar day by hand, for use when the status
// service cannot be reached.
type DayPointerCmd struct {
	Day    int  `arg:"" help:"Current Ramadan day (0-30)."`
	Active bool `help:"Mark Ramadan as active." default:"true" negatable:""`
}

func (c *DayPointerCmd) Run(ctx *cli.Context) error {
	if c.Day < 0 || c.Day > constants.TotalDays {
		return fmt.Errorf("invalid day %d: must be between 0 and %d", c.Day, constants.TotalDays)
	}
	status := models.RamadanStatus{Active: c.Active, CurrentDay: content.ClampDay(c.Day)}
	if err := ctx.Store.SaveRamadanStatus(context.Background(), status); err != nil {
		return fmt.Errorf("failed to save ramadan status: %w", err)
	}
	fmt.Printf("✓ Current day set to %d\n", status.CurrentDay)
	return nil
}
