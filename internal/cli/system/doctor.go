package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/sirr/internal/backup"
	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/notifier"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
	"github.com/julianstephens/sirr/internal/unlock"
	"github.com/julianstephens/sirr/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly checks print a warning but never fail the run
	warnOnly bool
	needsDB  bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Day pointer", run: checkPointer, needsDB: true},
	{name: "Progress timestamps", run: checkProgressIntegrity, needsDB: true},
	{name: "Prayer records", run: checkPrayerIntegrity, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Tray notifier", run: checkTrayNotifier, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func schemaVersions(ctx *cli.Context) (int, int, error) {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return 0, 0, nil
	}
	return m.SchemaVersion()
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := schemaVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := schemaVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'sirr backup create'")
	}
	return nil
}

func checkPointer(ctx *cli.Context) error {
	status, err := ctx.Store.GetRamadanStatus(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read ramadan status: %w", err)
	}
	if status.CurrentDay < 0 || status.CurrentDay > constants.TotalDays {
		return fmt.Errorf("current day %d is outside 0..%d (run 'sirr sync' or 'sirr day pointer')", status.CurrentDay, constants.TotalDays)
	}
	return nil
}

func checkProgressIntegrity(ctx *cli.Context) error {
	progress, err := ctx.Store.ListProgress(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	bad := 0
	for _, p := range progress {
		if p.Day < 1 || p.Day > constants.TotalDays || (p.Completed && p.CompletedAt == nil) {
			bad++
		}
	}
	if bad > 0 {
		// such days keep the next day locked
		return fmt.Errorf("found %d progress records out of range or completed without a timestamp", bad)
	}
	return nil
}

func checkPrayerIntegrity(ctx *cli.Context) error {
	prayers, err := ctx.Store.ListPrayers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list prayers: %w", err)
	}
	invalid, untimed := 0, 0
	for _, p := range prayers {
		if err := p.Validate(); err != nil {
			invalid++
		}
		if _, ok := p.Status.OfferedAt(); p.Status.IsOffered() && !ok {
			untimed++
		}
	}
	if invalid > 0 || untimed > 0 {
		return fmt.Errorf("found %d invalid prayer records and %d offered without an offered time", invalid, untimed)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system clock appears to be incorrect: %s", now.Format(time.RFC3339))
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return nil // reported by the database checks
	}
	if settings.Timezone != "" && !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting %q", settings.Timezone)
	}
	if settings.UnlockCutoff != "" {
		if _, err := unlock.ParseCutoff(settings.UnlockCutoff); err != nil {
			return err
		}
	}
	return nil
}

func checkTrayNotifier(ctx *cli.Context) error {
	return notifier.NewTray().Available()
}
