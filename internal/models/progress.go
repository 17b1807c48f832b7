package models

import "time"

// DayProgress is the completion record of one curriculum day.
type DayProgress struct {
	Day         int        `json:"day"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // RFC3339 timestamp
}

// RamadanStatus is the calendar state published by the content service.
type RamadanStatus struct {
	Active     bool `json:"is_ramadan_active"`
	CurrentDay int  `json:"current_day"`
}

// Content is the devotional material for one curriculum day.
type Content struct {
	Day                int      `json:"day_number"`
	Juz                int      `json:"juz"`
	SurahRange         string   `json:"surah_range"`
	CoreTheme          string   `json:"core_theme"`
	Explanation        string   `json:"explanation"`
	KeyTakeaways       []string `json:"key_takeaways"`
	ReflectionQuestion string   `json:"reflection_question"`
	VideoURL           string   `json:"video_url"`
	AudioURL           string   `json:"audio_url"`
	RelatedAyah        string   `json:"related_ayah"`
	RelatedHadith      string   `json:"related_hadith"`
	Scholar            string   `json:"scholar"`
	DurationMinutes    int      `json:"duration_minutes"`
	DifficultyLevel    string   `json:"difficulty_level"`
	Placeholder        bool     `json:"-"`
}

// Location is a coordinate pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
