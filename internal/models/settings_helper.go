package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/sirr/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingUnlockCutoff:
			settings.UnlockCutoff = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingContentURL:
			settings.ContentURL = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingAlarmsExact:
			settings.AlarmsExact = value == "true"
		case constants.SettingRamadanActive:
			settings.RamadanActive = value == "true"
		case constants.SettingDefaultOffsetMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultOffsetMin); err != nil {
				return Settings{}, fmt.Errorf("parsing default_offset_min: %w", err)
			}
		case constants.SettingFiqhMethod:
			if _, err := fmt.Sscanf(value, "%d", &settings.FiqhMethod); err != nil {
				return Settings{}, fmt.Errorf("parsing fiqh_method: %w", err)
			}
		case constants.SettingDataRetentionDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.DataRetentionDays); err != nil {
				return Settings{}, fmt.Errorf("parsing data_retention_days: %w", err)
			}
		case constants.SettingCurrentDay:
			if _, err := fmt.Sscanf(value, "%d", &settings.CurrentDay); err != nil {
				return Settings{}, fmt.Errorf("parsing current_day: %w", err)
			}
		case constants.SettingLatitude:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing latitude: %w", err)
			}
			settings.Latitude = f
		case constants.SettingLongitude:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing longitude: %w", err)
			}
			settings.Longitude = f
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingUnlockCutoff:         settings.UnlockCutoff,
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingContentURL:           settings.ContentURL,
		constants.SettingNotificationsEnabled: fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingAlarmsExact:          fmt.Sprintf("%v", settings.AlarmsExact),
		constants.SettingRamadanActive:        fmt.Sprintf("%v", settings.RamadanActive),
		constants.SettingDefaultOffsetMin:     fmt.Sprintf("%d", settings.DefaultOffsetMin),
		constants.SettingFiqhMethod:           fmt.Sprintf("%d", settings.FiqhMethod),
		constants.SettingDataRetentionDays:    fmt.Sprintf("%d", settings.DataRetentionDays),
		constants.SettingCurrentDay:           fmt.Sprintf("%d", settings.CurrentDay),
		constants.SettingLatitude:             strconv.FormatFloat(settings.Latitude, 'f', -1, 64),
		constants.SettingLongitude:            strconv.FormatFloat(settings.Longitude, 'f', -1, 64),
	}
}

// DefaultSettings returns the settings written by init.
func DefaultSettings() Settings {
	return Settings{
		UnlockCutoff:         constants.DefaultUnlockCutoff,
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		DefaultOffsetMin:     constants.DefaultOffsetMin,
		AlarmsExact:          constants.DefaultAlarmsExact,
		FiqhMethod:           constants.DefaultFiqhMethod,
		Latitude:             constants.DefaultLatitude,
		Longitude:            constants.DefaultLongitude,
		ContentURL:           constants.DefaultContentURL,
		DataRetentionDays:    constants.DefaultDataRetentionDays,
		CurrentDay:           1,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.UnlockCutoff == "" {
		settings.UnlockCutoff = constants.DefaultUnlockCutoff
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.ContentURL == "" {
		settings.ContentURL = constants.DefaultContentURL
	}
	if !ValidOffset(settings.DefaultOffsetMin) {
		settings.DefaultOffsetMin = constants.DefaultOffsetMin
	}
	if _, ok := constants.FiqhMethods[settings.FiqhMethod]; !ok {
		settings.FiqhMethod = constants.DefaultFiqhMethod
	}
	if settings.Latitude == 0 && settings.Longitude == 0 {
		settings.Latitude = constants.DefaultLatitude
		settings.Longitude = constants.DefaultLongitude
	}
	if settings.DataRetentionDays <= 0 {
		settings.DataRetentionDays = constants.DefaultDataRetentionDays
	}
}
