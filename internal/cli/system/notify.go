package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/logger"
)

// NotifyCmd delivers due alarms from the ledger. Cron or the tray app runs
// it once a minute.
type NotifyCmd struct {
	DryRun bool `help:"Print due notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	bg := context.Background()
	now := ctx.Now(settings).Now()
	ledger := ctx.Ledger()

	if c.DryRun {
		alarms, err := ledger.Pending(bg)
		if err != nil {
			return err
		}
		due := 0
		for _, a := range alarms {
			if !a.Due(now) {
				continue
			}
			due++
			fmt.Printf("[DryRun] %s: %s\n", a.Title, a.Message)
		}
		if due == 0 {
			fmt.Println("No notifications due.")
		}
		return nil
	}

	report, err := ledger.Deliver(bg, now, ctx.Sink())
	if err != nil {
		return err
	}
	for _, a := range report.Missed {
		fmt.Printf("Missed notification for %s (was due %s)\n", a.Prayer, a.FireAt.Format(constants.ClockFormat))
	}
	for _, err := range report.Failed {
		// Log error but keep the exit status clean for cron
		logger.Error("notification failed", "error", err)
		fmt.Printf("Failed to send notification: %v\n", err)
	}
	return nil
}
