package models

// Settings represents application-wide settings
type Settings struct {
	UnlockCutoff         string  `json:"unlock_cutoff"`         // daily time new days open in steady state, e.g. "05:00"
	Timezone             string  `json:"timezone"`              // IANA timezone name or "Local"
	NotificationsEnabled bool    `json:"notifications_enabled"` // master switch for prayer alarms
	DefaultOffsetMin     int     `json:"default_offset_min"`    // offset given to newly created prayer records
	AlarmsExact          bool    `json:"alarms_exact"`          // whether exact-time alarm delivery is granted
	FiqhMethod           int     `json:"fiqh_method"`           // prayer time calculation method id
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	ContentURL           string  `json:"content_url"`         // base URL of the day content service
	DataRetentionDays    int     `json:"data_retention_days"` // prayer records older than this are cleaned up

	// Journey state, written by the Ramadan status sync
	RamadanActive bool `json:"ramadan_active"`
	CurrentDay    int  `json:"current_day"`
}

// Location returns the configured coordinates.
func (s Settings) Location() Location {
	return Location{Latitude: s.Latitude, Longitude: s.Longitude}
}
