package content

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/storage"
)

// Kinds of content a day can have viewed.
const (
	KindLesson = "lesson"
	KindVideo  = "video"
	KindAudio  = "audio"
)

// Viewed records which parts of a day's content were opened.
type Viewed struct {
	store storage.ViewedStore
	clock clock.Clock
}

func NewViewed(store storage.ViewedStore, clk clock.Clock) *Viewed {
	return &Viewed{store: store, clock: clk}
}

func validKind(kind string) bool {
	switch kind {
	case KindLesson, KindVideo, KindAudio:
		return true
	}
	return false
}

// Mark records kind as viewed for day. Marking twice keeps the first time.
func (v *Viewed) Mark(ctx context.Context, day int, kind string) error {
	if !validKind(kind) {
		return fmt.Errorf("unknown content kind %q", kind)
	}
	if day < 1 || day > 30 {
		return fmt.Errorf("invalid day %d", day)
	}
	return v.store.MarkViewed(ctx, day, kind, v.clock.Now())
}

func (v *Viewed) Seen(ctx context.Context, day int, kind string) (bool, error) {
	if !validKind(kind) {
		return false, nil
	}
	return v.store.IsViewed(ctx, day, kind)
}
