package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/location"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	UnlockCutoff         *string  `help:"Daily time (HH:MM) new days open at once caught up."`
	Timezone             *string  `help:"IANA timezone name or Local."`
	NotificationsEnabled *bool    `help:"Enable or disable prayer notifications."`
	DefaultOffset        *int     `help:"Minutes before a prayer new records notify at (0, 5, 10, 15, 30 or 60)."`
	AlarmsExact          *bool    `help:"Allow exact-time alarm delivery."`
	FiqhMethod           *int     `help:"Prayer time calculation method id."`
	Latitude             *float64 `help:"Latitude for prayer times."`
	Longitude            *float64 `help:"Longitude for prayer times."`
	ContentURL           *string  `name:"content-url" help:"Base URL of the day content service."`
	DataRetentionDays    *int     `help:"Days of prayer history kept by cleanup."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	updated, err := c.apply(&settings)
	if err != nil {
		return err
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
		if c.NotificationsEnabled != nil || c.AlarmsExact != nil {
			if err := ctx.ApplyAlarms(context.Background(), settings); err != nil {
				return err
			}
		}
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}

func (c *SettingsCmd) apply(settings *models.Settings) (bool, error) {
	updated := false
	if c.UnlockCutoff != nil {
		if !utils.ValidateTimeFormat(*c.UnlockCutoff) {
			return false, fmt.Errorf("invalid unlock cutoff %q (expected HH:MM)", *c.UnlockCutoff)
		}
		settings.UnlockCutoff = *c.UnlockCutoff
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return false, fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.DefaultOffset != nil {
		if !models.ValidOffset(*c.DefaultOffset) {
			return false, fmt.Errorf("invalid offset %d (allowed: %v)", *c.DefaultOffset, constants.NotificationOffsets)
		}
		settings.DefaultOffsetMin = *c.DefaultOffset
		updated = true
	}
	if c.AlarmsExact != nil {
		settings.AlarmsExact = *c.AlarmsExact
		updated = true
	}
	if c.FiqhMethod != nil {
		if _, ok := constants.FiqhMethods[*c.FiqhMethod]; !ok {
			return false, fmt.Errorf("unknown fiqh method %d", *c.FiqhMethod)
		}
		settings.FiqhMethod = *c.FiqhMethod
		updated = true
	}
	if c.Latitude != nil || c.Longitude != nil {
		loc := settings.Location()
		if c.Latitude != nil {
			loc.Latitude = *c.Latitude
		}
		if c.Longitude != nil {
			loc.Longitude = *c.Longitude
		}
		if err := location.Validate(loc); err != nil {
			return false, err
		}
		settings.Latitude, settings.Longitude = loc.Latitude, loc.Longitude
		updated = true
	}
	if c.ContentURL != nil {
		settings.ContentURL = *c.ContentURL
		updated = true
	}
	if c.DataRetentionDays != nil {
		if *c.DataRetentionDays < 1 {
			return false, errors.New("data retention must be at least 1 day")
		}
		settings.DataRetentionDays = *c.DataRetentionDays
		updated = true
	}
	return updated, nil
}

func printSettings(settings models.Settings) {
	fmt.Println("Current Settings:")
	fmt.Printf("  Unlock Cutoff:         %s\n", settings.UnlockCutoff)
	fmt.Printf("  Timezone:              %s\n", settings.Timezone)
	fmt.Printf("  Content URL:           %s\n", settings.ContentURL)
	fmt.Printf("  Data Retention:        %d days\n", settings.DataRetentionDays)
	fmt.Println("\nPrayer Times:")
	fmt.Printf("  Fiqh Method:           %d (%s)\n", settings.FiqhMethod, constants.FiqhMethods[settings.FiqhMethod])
	fmt.Printf("  Location:              %.4f, %.4f\n", settings.Latitude, settings.Longitude)
	fmt.Println("\nNotification Settings:")
	fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
	fmt.Printf("  Default Offset:        %s\n", models.OffsetLabel(settings.DefaultOffsetMin))
	fmt.Printf("  Exact Alarms:          %v\n", settings.AlarmsExact)
	fmt.Println("\nJourney:")
	fmt.Printf("  Ramadan Active:        %v\n", settings.RamadanActive)
	fmt.Printf("  Current Day:           %d\n", settings.CurrentDay)
}
