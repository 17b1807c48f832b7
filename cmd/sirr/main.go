package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/cli/alarms"
	"github.com/julianstephens/sirr/internal/cli/backups"
	"github.com/julianstephens/sirr/internal/cli/days"
	"github.com/julianstephens/sirr/internal/cli/prayers"
	"github.com/julianstephens/sirr/internal/cli/settings"
	"github.com/julianstephens/sirr/internal/cli/system"
	"github.com/julianstephens/sirr/internal/constants"
	apperrors "github.com/julianstephens/sirr/internal/errors"
	"github.com/julianstephens/sirr/internal/keyring"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/storage"
	"github.com/julianstephens/sirr/internal/storage/postgres"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use SIRR_DB_CONNECTION, .pgpass, or the OS keyring instead." type:"string" default:"~/.config/sirr/sirr.db"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize sirr storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Sync    system.SyncCmd    `cmd:"" help:"Fetch the current Ramadan day from the content service."`
	Export  system.ExportCmd  `cmd:"" help:"Export progress and prayer history to a spreadsheet."`
	Daemon  system.DaemonCmd  `cmd:"" help:"Keep prayer times and alarms up to date in the foreground."`
	Debugs  system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show keyring availability and stored secrets." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Day      struct {
		List     days.DayListCmd     `cmd:"" help:"Show the journey." default:"1"`
		Show     days.DayShowCmd     `cmd:"" help:"Show a day's content."`
		Complete days.DayCompleteCmd `cmd:"" help:"Mark a day as completed."`
		Reset    days.DayResetCmd    `cmd:"" help:"Clear all journey progress."`
		Pointer  days.DayPointerCmd  `cmd:"" help:"Set the current Ramadan day by hand."`
	} `cmd:"" help:"Follow the 30 day journey."`
	Prayer struct {
		List    prayers.PrayerListCmd    `cmd:"" help:"Show today's prayers." default:"1"`
		Refresh prayers.PrayerRefreshCmd `cmd:"" help:"Fetch today's prayer times."`
		Offer   prayers.PrayerOfferCmd   `cmd:"" help:"Mark a prayer as offered."`
		Late    prayers.PrayerLateCmd    `cmd:"" help:"Mark a prayer as qaza."`
		Unmark  prayers.PrayerUnmarkCmd  `cmd:"" help:"Return a prayer to pending."`
		Notify  prayers.PrayerNotifyCmd  `cmd:"" help:"Change a prayer's alarm."`
		Cleanup prayers.PrayerCleanupCmd `cmd:"" help:"Delete old prayer records."`
	} `cmd:"" help:"Track the five daily prayers."`
	Alarm struct {
		Schedule alarms.AlarmScheduleCmd `cmd:"" help:"Schedule today's prayer alarms." default:"1"`
		Test     alarms.AlarmTestCmd     `cmd:"" help:"Schedule a test alarm."`
		List     alarms.AlarmListCmd     `cmd:"" help:"List pending alarms."`
		Cancel   alarms.AlarmCancelCmd   `cmd:"" help:"Cancel all prayer alarms."`
	} `cmd:"" help:"Manage prayer alarms."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Notify system.NotifyCmd `cmd:"" hidden:"" help:"Deliver due alarms (run periodically)."`
}

func isPostgres(conn string) bool {
	return strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// resolveConnection picks the database: an explicit --config wins, then
// SIRR_DB_CONNECTION, then a connection string stored in the keyring.
// Only --config is checked for embedded credentials; the other two are
// where credentials belong.
func resolveConnection(flag string) (string, error) {
	if flag != constants.DefaultConfigPath {
		if isPostgres(flag) {
			if _, err := postgres.ValidateConnString(flag); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return "", apperrors.WithHint(err,
						"use SIRR_DB_CONNECTION, the OS keyring (sirr keyring set db <conn>) or a .pgpass file")
				}
				return "", err
			}
		}
		return flag, nil
	}
	if env := os.Getenv("SIRR_DB_CONNECTION"); env != "" {
		return env, nil
	}
	if conn, err := keyring.Get(keyring.ConnectionString); err == nil && conn != "" {
		return conn, nil
	}
	return flag, nil
}

func telegramConfig() (string, int64) {
	token := os.Getenv("SIRR_TELEGRAM_TOKEN")
	if token == "" {
		token, _ = keyring.Get(keyring.TelegramToken)
	}
	var chatID int64
	if raw := os.Getenv("SIRR_TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Warn("invalid SIRR_TELEGRAM_CHAT_ID, telegram disabled", "value", raw)
			return "", 0
		}
		chatID = id
	}
	return token, chatID
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Ramadan companion: a 30 day journey, daily prayers and prayer alarms"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configDir, err := expandHome(filepath.Dir(constants.DefaultConfigPath))
	if err != nil {
		apperrors.Fatal(err)
	}
	// .env in the working directory, then in the config directory; variables
	// already set in the environment always win
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	conn, err := resolveConnection(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	var store storage.Provider
	if isPostgres(conn) {
		store = postgres.New(conn)
	} else {
		path, err := expandHome(conn)
		if err != nil {
			apperrors.Fatal(err)
		}
		configDir = filepath.Dir(path)
		store = sqlite.NewStore(path)
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:      CLI.Debug,
		ConfigDir:  configDir,
		Foreground: strings.HasPrefix(command, "daemon"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	token, chatID := telegramConfig()
	appCtx := &cli.Context{
		Store: store,
		Config: cli.Config{
			ContentURL:     os.Getenv("SIRR_CONTENT_URL"),
			PrayerAPIURL:   os.Getenv("SIRR_PRAYER_API_URL"),
			TelegramToken:  token,
			TelegramChatID: chatID,
		},
	}

	// Init handles its own loading; keyring commands never touch the store
	if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring") {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}
	defer store.Close()

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}
