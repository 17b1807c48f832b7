// Package alarms holds the commands that manage prayer alarms in the
// persistent ledger delivered by `sirr notify`.
package alarms

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/alarm"
	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	apperrors "github.com/julianstephens/sirr/internal/errors"
)

type AlarmScheduleCmd struct {
	Refresh bool `help:"Refresh prayer times before scheduling."`
}

func (c *AlarmScheduleCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	bg := context.Background()

	if c.Refresh {
		if _, err := ctx.RefreshPrayers(bg, settings, true); err != nil {
			return err
		}
	}

	res, err := ctx.Reschedule(bg, settings, ctx.Ledger())
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled {
		fmt.Println("Notifications are disabled, all prayer alarms cancelled.")
		return nil
	}

	fmt.Println("Prayer alarms:")
	cli.PrintSchedule(res)
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d prayer alarms could not be scheduled", len(res.Failed), len(res.Failed)+len(res.Scheduled)+len(res.Skipped)+len(res.Cancelled))
	}
	return nil
}

type AlarmTestCmd struct{}

func (c *AlarmTestCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	a, err := alarm.NewScheduler(ctx.Ledger(), ctx.Now(settings)).ScheduleTest(context.Background())
	if err != nil {
		return apperrors.WithHint(err, cli.ExactAlarmHint)
	}
	fmt.Printf("✓ Test alarm scheduled for %s\n", a.FireAt.Format("15:04:05"))
	fmt.Println("It is shown by the next 'sirr notify' run.")
	return nil
}

type AlarmListCmd struct{}

func (c *AlarmListCmd) Run(ctx *cli.Context) error {
	pending, err := ctx.Ledger().Pending(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list alarms: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("No pending alarms.")
		return nil
	}
	for _, a := range pending {
		fmt.Printf("  [%4d] %-8s %s  %s\n", a.Slot, a.Prayer, a.FireAt.Format(constants.DateFormat+" "+constants.ClockFormat), a.Title)
	}
	return nil
}

type AlarmCancelCmd struct{}

func (c *AlarmCancelCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if err := alarm.NewScheduler(ctx.Ledger(), ctx.Now(settings)).CancelAll(context.Background()); err != nil {
		return err
	}
	fmt.Println("✓ All prayer alarms cancelled")
	return nil
}
