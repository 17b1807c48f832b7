// Package alarm turns prayer records into point-in-time alarms. Each prayer
// owns a stable slot, so rescheduling replaces the alarm in place instead of
// stacking duplicates.
package alarm

//go:generate mockgen -source=backend.go -destination=mock_backend.go -package=alarm

import (
	"context"

	"github.com/julianstephens/sirr/internal/models"
)

// Backend is the host scheduler alarms are installed into. Once installed,
// firing happens without the Scheduler running.
type Backend interface {
	// Install places a, replacing whatever is installed at a.Slot.
	Install(ctx context.Context, a models.Alarm) error
	Cancel(ctx context.Context, slot int) error
	CancelAll(ctx context.Context, slots []int) error
	// CanScheduleExact reports whether exact-time delivery is permitted.
	CanScheduleExact(ctx context.Context) bool
}
