package state

import (
	"context"
	"strings"

	"github.com/julianstephens/sirr/internal/prayertimes"
)

// UpdateWarnings recomputes the banner from conditions the user should fix.
func (m *Model) UpdateWarnings() {
	s, err := m.Ctx.Settings()
	if err != nil {
		m.Warning = "⚠ Settings unavailable"
		return
	}

	var warnings []string
	if s.NotificationsEnabled && !s.AlarmsExact {
		warnings = append(warnings, "exact alarms denied")
	}
	switch m.PrayerSource {
	case prayertimes.SourceStale:
		warnings = append(warnings, "prayer times from an earlier day")
	case prayertimes.SourceDefault:
		warnings = append(warnings, "using default prayer times")
	}
	if list, err := m.Ctx.Tracker(s).Today(context.Background()); err == nil && len(list) == 0 {
		warnings = append(warnings, "no prayer times for today")
	}

	if len(warnings) == 0 {
		m.Warning = ""
		return
	}
	m.Warning = "⚠ " + strings.Join(warnings, ", ")
}
