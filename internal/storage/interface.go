package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/sirr/internal/models"
)

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// ProgressStore persists per-day completion.
type ProgressStore interface {
	// GetProgress returns the record for day. A day with no record is
	// returned as not completed.
	GetProgress(ctx context.Context, day int) (models.DayProgress, error)
	ListProgress(ctx context.Context) ([]models.DayProgress, error)
	// MarkCompleted sets the day completed. An existing timestamp is kept.
	MarkCompleted(ctx context.Context, day int, at time.Time) error
	ResetProgress(ctx context.Context) error
}

// PointerStore holds the curriculum pointer published by the status sync.
type PointerStore interface {
	GetRamadanStatus(ctx context.Context) (models.RamadanStatus, error)
	SaveRamadanStatus(ctx context.Context, status models.RamadanStatus) error
}

type PrayerStore interface {
	GetPrayers(ctx context.Context, date string) ([]models.Prayer, error)
	GetPrayer(ctx context.Context, date string, name models.PrayerName) (models.Prayer, error)
	// SavePrayer inserts or replaces the record keyed by (date, name).
	SavePrayer(ctx context.Context, p models.Prayer) error
	ListPrayers(ctx context.Context) ([]models.Prayer, error)
	DeletePrayersBefore(ctx context.Context, date string) (int64, error)
}

// AlarmStore is the persistent alarm ledger, one row per slot.
type AlarmStore interface {
	SaveAlarm(ctx context.Context, a models.Alarm) error
	DeleteAlarm(ctx context.Context, slot int) error
	GetAlarms(ctx context.Context) ([]models.Alarm, error)
	// MarkAlarmDelivered stamps the alarm installed under token. It reports
	// false when the token is unknown or was already delivered.
	MarkAlarmDelivered(ctx context.Context, token string, at time.Time) (bool, error)
}

type CacheStore interface {
	GetCache(ctx context.Context, key string) (value string, updatedAt time.Time, err error)
	PutCache(ctx context.Context, key, value string, at time.Time) error
}

type ViewedStore interface {
	MarkViewed(ctx context.Context, day int, kind string, at time.Time) error
	IsViewed(ctx context.Context, day int, kind string) (bool, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	ProgressStore
	PointerStore
	PrayerStore
	AlarmStore
	CacheStore
	ViewedStore

	// Utils
	GetConfigPath() string
}
