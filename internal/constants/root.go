package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName             = "sirr"
	DefaultKeyringUser  = "database-connection"
	TelegramKeyringUser = "telegram-token"
	DefaultConfigPath   = "~/.config/sirr/sirr.db"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the 24h format used for settings such as the unlock cutoff (HH:MM)
	TimeFormat = "15:04"

	// ClockFormat is the 12h format prayer times are stored and displayed in (hh:mm AM/PM)
	ClockFormat = "03:04 PM"

	// Curriculum
	TotalDays = 30

	// Alarm slots. Stable per prayer, never derived from list position.
	SlotFajr    = 100
	SlotDhuhr   = 200
	SlotAsr     = 300
	SlotMaghrib = 400
	SlotIsha    = 500
	SlotTest    = 9999

	TestAlarmDelay = 10 * time.Second

	// External services
	ServiceTimeout          = 10 * time.Second
	DefaultPrayerAPIURL     = "https://api.aladhan.com/v1"
	DefaultContentURL       = "https://sirrallquran-default-rtdb.firebaseio.com"
	SignificantLocationMove = 500.0 // meters

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "sirr-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "sirr-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.sirr"
	TrayExecutablePrefix   = "sirr-tray"

	// Auto refresh
	UnlockPollInterval = 30 * time.Second
)

// Session States
const (
	StateJourney SessionState = iota
	StatePrayers
	StateSettings
	StateEditSettings
	StateEditNotification
	StateContent
)

// NotificationOffsets lists the offsets (minutes before the prayer) a user may pick from.
var NotificationOffsets = []int{0, 5, 10, 15, 30, 60}
