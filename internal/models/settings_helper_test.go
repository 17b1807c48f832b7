package models

import (
	"testing"

	"github.com/julianstephens/sirr/internal/constants"
)

func TestSettingsMapRoundTrip(t *testing.T) {
	in := DefaultSettings()
	in.Latitude = 21.4225
	in.Longitude = 39.8262
	in.CurrentDay = 12
	in.RamadanActive = true

	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestMapToSettingsRejectsGarbage(t *testing.T) {
	_, err := MapToSettings(map[string]string{constants.SettingLatitude: "north"})
	if err == nil {
		t.Error("MapToSettings() should fail on a non-numeric latitude")
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{DefaultOffsetMin: 7, FiqhMethod: 42}
	ApplyDefaultSettings(&s)

	if s.UnlockCutoff != constants.DefaultUnlockCutoff {
		t.Errorf("UnlockCutoff = %q, want %q", s.UnlockCutoff, constants.DefaultUnlockCutoff)
	}
	if s.DefaultOffsetMin != constants.DefaultOffsetMin {
		t.Errorf("DefaultOffsetMin = %d, want %d", s.DefaultOffsetMin, constants.DefaultOffsetMin)
	}
	if s.FiqhMethod != constants.DefaultFiqhMethod {
		t.Errorf("FiqhMethod = %d, want %d", s.FiqhMethod, constants.DefaultFiqhMethod)
	}
	if s.Latitude != constants.DefaultLatitude || s.Longitude != constants.DefaultLongitude {
		t.Errorf("location = %v,%v, want Lahore", s.Latitude, s.Longitude)
	}
}
