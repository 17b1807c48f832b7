package content

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

// StatusFetcher reads the published calendar state.
type StatusFetcher interface {
	FetchActive(ctx context.Context) (bool, error)
	FetchCurrentDay(ctx context.Context) (int, error)
}

// Syncer copies the published calendar state into the local pointer store.
type Syncer struct {
	remote StatusFetcher
	store  storage.PointerStore
}

func NewSyncer(remote StatusFetcher, store storage.PointerStore) *Syncer {
	return &Syncer{remote: remote, store: store}
}

// Sync fetches the active flag and current day and saves them. If the active
// flag cannot be fetched the local state is kept and the error returned. If
// only the day fails while Ramadan is active, the local day is kept (1 when
// none was stored).
func (s *Syncer) Sync(ctx context.Context) (models.RamadanStatus, error) {
	local, err := s.store.GetRamadanStatus(ctx)
	if err != nil {
		return models.RamadanStatus{}, fmt.Errorf("failed to read local status: %w", err)
	}

	active, err := s.remote.FetchActive(ctx)
	if err != nil {
		logger.Warn("ramadan status sync failed, keeping local state", "error", err)
		return local, fmt.Errorf("failed to fetch ramadan status: %w", err)
	}

	status := models.RamadanStatus{Active: active, CurrentDay: local.CurrentDay}
	var dayErr error
	if active {
		day, err := s.remote.FetchCurrentDay(ctx)
		switch {
		case err != nil:
			logger.Warn("current day fetch failed, keeping local day", "error", err)
			dayErr = fmt.Errorf("failed to fetch current day: %w", err)
			if status.CurrentDay < 1 {
				status.CurrentDay = 1
			}
		default:
			status.CurrentDay = day
		}
	}
	status.CurrentDay = ClampDay(status.CurrentDay)

	if err := s.store.SaveRamadanStatus(ctx, status); err != nil {
		return local, fmt.Errorf("failed to save ramadan status: %w", err)
	}
	logger.Info("ramadan status synced", "active", status.Active, "current_day", status.CurrentDay)
	return status, dayErr
}

// ClampDay limits a published day to 0..30.
func ClampDay(day int) int {
	switch {
	case day < 0:
		return 0
	case day > 30:
		return 30
	default:
		return day
	}
}
