package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/sirr/internal/constants"
)

// PrayerName identifies one of the five daily prayers.
type PrayerName string

const (
	Fajr    PrayerName = "Fajr"
	Dhuhr   PrayerName = "Dhuhr"
	Asr     PrayerName = "Asr"
	Maghrib PrayerName = "Maghrib"
	Isha    PrayerName = "Isha"
)

// PrayerNames lists the prayers in the order they occur during the day.
var PrayerNames = []PrayerName{Fajr, Dhuhr, Asr, Maghrib, Isha}

var prayerArabic = map[PrayerName]string{
	Fajr:    "الفجر",
	Dhuhr:   "الظهر",
	Asr:     "العصر",
	Maghrib: "المغرب",
	Isha:    "العشاء",
}

var prayerSlots = map[PrayerName]int{
	Fajr:    constants.SlotFajr,
	Dhuhr:   constants.SlotDhuhr,
	Asr:     constants.SlotAsr,
	Maghrib: constants.SlotMaghrib,
	Isha:    constants.SlotIsha,
}

// ParsePrayerName matches s case-insensitively against the known prayers.
func ParsePrayerName(s string) (PrayerName, bool) {
	s = strings.TrimSpace(s)
	for _, n := range PrayerNames {
		if strings.EqualFold(string(n), s) {
			return n, true
		}
	}
	return "", false
}

// Arabic returns the Arabic name of the prayer, or "" for an unknown name.
func (n PrayerName) Arabic() string {
	return prayerArabic[n]
}

// Slot returns the stable alarm slot of the prayer.
func (n PrayerName) Slot() (int, bool) {
	slot, ok := prayerSlots[n]
	return slot, ok
}

// Order returns the position of the prayer within the day, or -1.
func (n PrayerName) Order() int {
	for i, p := range PrayerNames {
		if p == n {
			return i
		}
	}
	return -1
}

// Slots returns the alarm slots of all five prayers.
func Slots() []int {
	slots := make([]int, 0, len(PrayerNames))
	for _, n := range PrayerNames {
		slots = append(slots, prayerSlots[n])
	}
	return slots
}

// SortPrayers orders prayers by date, then by their position within the day.
func SortPrayers(prayers []Prayer) {
	sort.SliceStable(prayers, func(i, j int) bool {
		if prayers[i].Date != prayers[j].Date {
			return prayers[i].Date < prayers[j].Date
		}
		return prayers[i].Name.Order() < prayers[j].Name.Order()
	})
}

// StatusKind tags the variant held by a PrayerStatus.
type StatusKind string

const (
	StatusPending StatusKind = "pending"
	StatusOffered StatusKind = "offered"
	StatusLate    StatusKind = "late"
)

// PrayerStatus is the user-controlled state of a prayer: Pending, Offered (with
// the time it was offered) or Late (qaza). The offered time only exists inside
// the Offered variant, so an offered-and-late combination cannot be built.
type PrayerStatus struct {
	kind      StatusKind
	offeredAt string
}

func Pending() PrayerStatus { return PrayerStatus{kind: StatusPending} }

func Late() PrayerStatus { return PrayerStatus{kind: StatusLate} }

// Offered builds the Offered variant. offeredAt may be empty for records that
// predate offered-time tracking.
func Offered(offeredAt string) PrayerStatus {
	return PrayerStatus{kind: StatusOffered, offeredAt: offeredAt}
}

// ParseStatus rebuilds a status from its stored form.
func ParseStatus(kind string, offeredAt string) (PrayerStatus, error) {
	switch StatusKind(kind) {
	case StatusPending, "":
		return Pending(), nil
	case StatusOffered:
		return Offered(offeredAt), nil
	case StatusLate:
		return Late(), nil
	default:
		return PrayerStatus{}, fmt.Errorf("unknown prayer status %q", kind)
	}
}

// Kind returns the variant tag. The zero value reads as pending.
func (s PrayerStatus) Kind() StatusKind {
	if s.kind == "" {
		return StatusPending
	}
	return s.kind
}

func (s PrayerStatus) IsOffered() bool { return s.kind == StatusOffered }
func (s PrayerStatus) IsLate() bool    { return s.kind == StatusLate }

// OfferedAt returns the offered time and whether one is recorded.
func (s PrayerStatus) OfferedAt() (string, bool) {
	if s.kind != StatusOffered || s.offeredAt == "" {
		return "", false
	}
	return s.offeredAt, true
}

func (s PrayerStatus) String() string {
	return string(s.Kind())
}

// Prayer is one daily prayer record. Base time fields are refreshed from the
// prayer time service; Status and the notification fields belong to the user.
type Prayer struct {
	Name                PrayerName   `json:"name"`
	NameArabic          string       `json:"name_arabic"`
	Date                string       `json:"date"` // YYYY-MM-DD
	Time                string       `json:"time"` // hh:mm AM/PM
	Status              PrayerStatus `json:"-"`
	NotificationEnabled bool         `json:"notification_enabled"`
	NotificationOffset  int          `json:"notification_offset"`
	FiqhMethod          int          `json:"fiqh_method"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// NewPrayer returns a pending prayer with default notification settings.
func NewPrayer(name PrayerName, date, clock string, fiqhMethod int) Prayer {
	return Prayer{
		Name:                name,
		NameArabic:          name.Arabic(),
		Date:                date,
		Time:                clock,
		Status:              Pending(),
		NotificationEnabled: constants.DefaultNotificationsEnabled,
		NotificationOffset:  constants.DefaultOffsetMin,
		FiqhMethod:          fiqhMethod,
	}
}

func (p *Prayer) Validate() error {
	if _, ok := p.Name.Slot(); !ok {
		return fmt.Errorf("unknown prayer %q", p.Name)
	}
	if _, err := time.Parse(constants.DateFormat, p.Date); err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	if _, err := ParseClock(p.Time); err != nil {
		return err
	}
	if !ValidOffset(p.NotificationOffset) {
		return fmt.Errorf("invalid notification offset %d (allowed: %v)", p.NotificationOffset, constants.NotificationOffsets)
	}
	return nil
}

// Minutes returns the prayer time as minutes after midnight.
func (p *Prayer) Minutes() (int, error) {
	t, err := ParseClock(p.Time)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// HasTimeArrived reports whether the prayer time has been reached at minute
// granularity. A record dated before now's day has arrived; one dated after
// has not. On the same day the minutes of day are compared, so "11:58 PM" has
// not arrived at "12:02 AM" of the same date.
func (p *Prayer) HasTimeArrived(now time.Time) bool {
	today := now.Format(constants.DateFormat)
	if p.Date != "" && p.Date != today {
		return p.Date < today
	}
	minutes, err := p.Minutes()
	if err != nil {
		return false
	}
	return now.Hour()*60+now.Minute() >= minutes
}

// MarkOffered moves the prayer to Offered, stamping the offered time if none
// is recorded yet. Late is cleared by construction.
func (p *Prayer) MarkOffered(now time.Time) {
	if at, ok := p.Status.OfferedAt(); ok {
		p.Status = Offered(at)
		return
	}
	p.Status = Offered(FormatClock(now))
}

// MarkLate moves the prayer to Late. It is rejected (returns false) while the
// prayer time has not arrived.
func (p *Prayer) MarkLate(now time.Time) bool {
	if !p.HasTimeArrived(now) {
		return false
	}
	p.Status = Late()
	return true
}

// Unmark returns the prayer to Pending, dropping any offered time.
func (p *Prayer) Unmark() {
	p.Status = Pending()
}

// RefreshTime copies base-time fields from fresh, leaving user state alone.
func (p *Prayer) RefreshTime(clock, nameArabic string, fiqhMethod int) {
	p.Time = clock
	if nameArabic != "" {
		p.NameArabic = nameArabic
	}
	p.FiqhMethod = fiqhMethod
}

// ValidOffset reports whether minutes is one of the selectable notification offsets.
func ValidOffset(minutes int) bool {
	for _, o := range constants.NotificationOffsets {
		if o == minutes {
			return true
		}
	}
	return false
}

// OffsetLabel renders an offset the way the settings dialog shows it.
func OffsetLabel(minutes int) string {
	switch {
	case minutes == 0:
		return "At prayer time"
	case minutes < 60:
		return fmt.Sprintf("%d min before", minutes)
	default:
		return fmt.Sprintf("%d hour before", minutes/60)
	}
}

// ParseClock parses a 12-hour "hh:mm AM/PM" time of day.
func ParseClock(s string) (time.Time, error) {
	value := strings.ToUpper(strings.TrimSpace(s))
	t, err := time.Parse(constants.ClockFormat, value)
	if err != nil {
		// unpadded hours ("5:15 AM")
		if t2, err2 := time.Parse("3:04 PM", value); err2 == nil {
			return t2, nil
		}
		return time.Time{}, fmt.Errorf("invalid time %q (expected hh:mm AM/PM): %w", s, err)
	}
	return t, nil
}

// FormatClock renders t as "hh:mm AM/PM".
func FormatClock(t time.Time) string {
	return t.Format(constants.ClockFormat)
}
