package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
	"github.com/julianstephens/sirr/internal/storage/postgres"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// If force flag is provided, delete existing database
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized sirr storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(context.Background(), ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

func openSource(source string) (storage.Provider, error) {
	if strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://") {
		if valid, err := postgres.ValidateConnString(source); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

// migrateData copies settings, day progress and prayer records. Cached
// prayer times and the alarm ledger are rebuilt by the next refresh.
func (c *InitCmd) migrateData(ctx context.Context, dst *cli.Context, sourcePath string) error {
	sourceStore, err := openSource(sourcePath)
	if err != nil {
		return err
	}
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Migrating progress...")
	progress, err := sourceStore.ListProgress(ctx)
	if err != nil {
		return fmt.Errorf("failed to get progress from source: %w", err)
	}
	migrated := 0
	for _, p := range progress {
		if !p.Completed || p.CompletedAt == nil {
			continue
		}
		if err := dst.Store.MarkCompleted(ctx, p.Day, *p.CompletedAt); err != nil {
			return fmt.Errorf("failed to migrate day %d: %w", p.Day, err)
		}
		migrated++
	}
	fmt.Printf("    Migrated %d completed days\n", migrated)

	fmt.Println("  Migrating prayers...")
	prayers, err := sourceStore.ListPrayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to get prayers from source: %w", err)
	}
	for _, p := range prayers {
		if err := dst.Store.SavePrayer(ctx, p); err != nil {
			return fmt.Errorf("failed to migrate %s on %s: %w", p.Name, p.Date, err)
		}
	}
	fmt.Printf("    Migrated %d prayer records\n", len(prayers))

	status, err := sourceStore.GetRamadanStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get ramadan status from source: %w", err)
	}
	if status != (models.RamadanStatus{}) {
		if err := dst.Store.SaveRamadanStatus(ctx, status); err != nil {
			return fmt.Errorf("failed to migrate ramadan status: %w", err)
		}
	}

	return nil
}
