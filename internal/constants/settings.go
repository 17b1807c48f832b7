package constants

const (
	// General Settings
	SettingUnlockCutoff         = "unlock_cutoff"
	SettingTimezone             = "timezone"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingDefaultOffsetMin     = "default_offset_min"
	SettingAlarmsExact          = "alarms_exact"
	SettingFiqhMethod           = "fiqh_method"
	SettingLatitude             = "latitude"
	SettingLongitude            = "longitude"
	SettingContentURL           = "content_url"
	SettingDataRetentionDays    = "data_retention_days"

	// Journey state written by the Ramadan status sync
	SettingRamadanActive = "ramadan_active"
	SettingCurrentDay    = "current_day"

	// Default Settings Values
	DefaultUnlockCutoff         = "05:00"
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled = true
	DefaultOffsetMin            = 15
	DefaultAlarmsExact          = true
	DefaultFiqhMethod           = 1 // University of Islamic Sciences, Karachi
	DefaultLatitude             = 31.5204
	DefaultLongitude            = 74.3587
	DefaultDataRetentionDays    = 30
)

// FiqhMethods maps calculation method ids to their display names.
var FiqhMethods = map[int]string{
	0: "Shia Ithna-Ashari",
	1: "University of Islamic Sciences, Karachi",
	2: "Islamic Society of North America",
	3: "Muslim World League",
	4: "Umm Al-Qura University, Makkah",
	5: "Egyptian General Authority of Survey",
}
