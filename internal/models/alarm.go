package models

import "time"

// Alarm is a scheduled prayer notification. The payload (titles, times) is
// captured at schedule time so firing never has to re-read prayer state.
type Alarm struct {
	Slot          int        `json:"slot"`
	Token         string     `json:"token"`
	Prayer        string     `json:"prayer"`
	NameArabic    string     `json:"name_arabic"`
	BaseTime      string     `json:"base_time"`
	OffsetMinutes int        `json:"offset_minutes"`
	FireAt        time.Time  `json:"fire_at"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
}

// Due reports whether the alarm should fire at now (minute granularity) and
// has not been delivered yet.
func (a *Alarm) Due(now time.Time) bool {
	if a.DeliveredAt != nil {
		return false
	}
	return !now.Truncate(time.Minute).Before(a.FireAt.Truncate(time.Minute))
}

// SameDelivery reports whether b would show the same notification as a in the
// same minute.
func (a Alarm) SameDelivery(b Alarm) bool {
	return a.Slot == b.Slot &&
		a.FireAt.Truncate(time.Minute).Equal(b.FireAt.Truncate(time.Minute)) &&
		a.Title == b.Title &&
		a.Message == b.Message
}
