// Package guard serializes status updates without queueing them. An update
// that arrives while another is running is dropped, matching a user
// double-tapping a control.
package guard

import (
	"sync"

	"github.com/julianstephens/sirr/internal/logger"
)

// Guard admits one update at a time. The zero value is ready to use.
type Guard struct {
	mu sync.Mutex
}

// TryRun runs fn if no other update holds the guard and reports whether it
// ran. A contended call returns (false, nil) immediately.
func (g *Guard) TryRun(fn func() error) (bool, error) {
	if !g.mu.TryLock() {
		logger.Debug("status update dropped, another update in progress")
		return false, nil
	}
	defer g.mu.Unlock()
	return true, fn()
}

// Busy reports whether an update currently holds the guard.
func (g *Guard) Busy() bool {
	if g.mu.TryLock() {
		g.mu.Unlock()
		return false
	}
	return true
}
