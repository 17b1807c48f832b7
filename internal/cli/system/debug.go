package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings as JSON."`
	DumpProgress *DebugDumpProgressCmd `cmd:"" help:"Dump day progress and the calendar pointer as JSON."`
	DumpPrayers  *DebugDumpPrayersCmd  `cmd:"" help:"Dump prayer records of a date as JSON."`
	DumpAlarms   *DebugDumpAlarmsCmd   `cmd:"" help:"Dump the alarm ledger as JSON."`
	DumpCache    *DebugDumpCacheCmd    `cmd:"" help:"Dump one cache entry."`
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(settings)
}

type DebugDumpProgressCmd struct{}

type progressDump struct {
	Status   models.RamadanStatus `json:"status"`
	Progress []models.DayProgress `json:"progress"`
}

func (cmd *DebugDumpProgressCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	bg := context.Background()
	status, err := ctx.Store.GetRamadanStatus(bg)
	if err != nil {
		return fmt.Errorf("failed to get ramadan status: %w", err)
	}
	progress, err := ctx.Store.ListProgress(bg)
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	return printJSON(progressDump{Status: status, Progress: progress})
}

type DebugDumpPrayersCmd struct {
	Date string `arg:"" optional:"" default:"today" help:"Date of the records to dump (YYYY-MM-DD or 'today')."`
}

// prayerDump adds the status fields the model keeps unexported.
type prayerDump struct {
	models.Prayer
	Status    string `json:"status"`
	OfferedAt string `json:"offered_at,omitempty"`
}

func (cmd *DebugDumpPrayersCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	date := cmd.Date
	if date == "today" {
		date = getCurrentDate()
	}
	if !isValidDate(date) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}

	prayers, err := ctx.Store.GetPrayers(context.Background(), date)
	if err != nil {
		return fmt.Errorf("failed to get prayers: %w", err)
	}
	if len(prayers) == 0 {
		return fmt.Errorf("no prayer records found for date: %s", date)
	}

	out := make([]prayerDump, 0, len(prayers))
	for _, p := range prayers {
		at, _ := p.Status.OfferedAt()
		out = append(out, prayerDump{Prayer: p, Status: p.Status.String(), OfferedAt: at})
	}
	return printJSON(out)
}

type DebugDumpAlarmsCmd struct{}

func (cmd *DebugDumpAlarmsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	alarms, err := ctx.Store.GetAlarms(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get alarms: %w", err)
	}
	return printJSON(alarms)
}

type DebugDumpCacheCmd struct {
	Key string `arg:"" help:"Cache key, e.g. prayer_times:2026-03-01 or location:last."`
}

func (cmd *DebugDumpCacheCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	value, updatedAt, err := ctx.Store.GetCache(context.Background(), cmd.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("cache entry not found: %s", cmd.Key)
		}
		return fmt.Errorf("failed to get cache entry: %w", err)
	}

	entry := map[string]any{"key": cmd.Key, "updated_at": updatedAt.Format(time.RFC3339)}
	var decoded any
	if json.Unmarshal([]byte(value), &decoded) == nil {
		entry["value"] = decoded
	} else {
		entry["value"] = value
	}
	return printJSON(entry)
}

func getCurrentDate() string {
	return time.Now().Format(constants.DateFormat)
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}
