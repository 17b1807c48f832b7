package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/sirr/internal/logger"
)

// ErrNoSink is returned when no delivery channel is configured.
var ErrNoSink = errors.New("no notification sink configured")

// Sink delivers one notification.
type Sink interface {
	Name() string
	Send(ctx context.Context, title, message string) error
}

// Multi fans a notification out to every sink. It succeeds when at least one
// sink accepted the notification.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, title, message string) error {
	if len(m) == 0 {
		return ErrNoSink
	}
	var errs []error
	delivered := false
	for _, s := range m {
		if err := s.Send(ctx, title, message); err != nil {
			logger.Debug("notification sink failed", "sink", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	return errors.Join(errs...)
}
