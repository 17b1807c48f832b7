package prayertimes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/models"
)

const timingsBody = `{
  "code": 200,
  "status": "OK",
  "data": {
    "timings": {
      "Fajr": "04:52 (PKT)",
      "Sunrise": "06:14 (PKT)",
      "Dhuhr": "12:11 (PKT)",
      "Asr": "15:36 (PKT)",
      "Maghrib": "18:08 (PKT)",
      "Isha": "19:30 (PKT)"
    },
    "date": {
      "hijri": {"day": "11", "year": "1447", "month": {"number": 9, "en": "Ramaḍān"}}
    }
  }
}`

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"04:52 (PKT)", "04:52 AM", false},
		{"12:11", "12:11 PM", false},
		{"00:05 (UTC)", "12:05 AM", false},
		{"19:30 (+03)", "07:30 PM", false},
		{"7pm", "", true},
	}
	for _, tt := range tests {
		got, err := To12Hour(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("To12Hour(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("To12Hour(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientFetchTimes(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/timings/1772323200") {
			t.Errorf("path = %s, want unix timestamp of the date", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("latitude") != "31.5204" || q.Get("longitude") != "74.3587" || q.Get("method") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(timingsBody))
	}))
	defer server.Close()

	c := NewClient(server.URL + "/")
	day, err := c.FetchTimes(context.Background(), date, models.Location{Latitude: 31.5204, Longitude: 74.3587}, 1)
	if err != nil {
		t.Fatalf("FetchTimes() error = %v", err)
	}
	if len(day.Times) != 5 {
		t.Fatalf("FetchTimes() = %d times, want 5", len(day.Times))
	}
	want := []string{"04:52 AM", "12:11 PM", "03:36 PM", "06:08 PM", "07:30 PM"}
	for i, tm := range day.Times {
		if tm.Name != models.PrayerNames[i] || tm.Clock != want[i] {
			t.Errorf("time %d = %s %s, want %s %s", i, tm.Name, tm.Clock, models.PrayerNames[i], want[i])
		}
		if tm.Arabic == "" {
			t.Errorf("time %d has no Arabic name", i)
		}
	}
	if day.Hijri != "11 Ramaḍān 1447" {
		t.Errorf("Hijri = %q, want %q", day.Hijri, "11 Ramaḍān 1447")
	}
	if day.Date != "2026-03-01" || day.Method != 1 {
		t.Errorf("Day = %s/%d, want 2026-03-01/1", day.Date, day.Method)
	}
}

func TestClientFetchTimesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusInternalServerError, `{}`},
		{"api error", http.StatusOK, `{"code": 400, "status": "BAD_REQUEST"}`},
		{"malformed json", http.StatusOK, `{"code":`},
		{"missing prayer", http.StatusOK, `{"code": 200, "data": {"timings": {"Fajr": "05:00"}}}`},
		{"bad time", http.StatusOK, `{"code": 200, "data": {"timings": {"Fajr": "x", "Dhuhr": "12:00", "Asr": "15:00", "Maghrib": "18:00", "Isha": "19:00"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).FetchTimes(context.Background(), time.Now(), models.Location{}, 1)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("FetchTimes() error = %v, want ErrUnavailable", err)
			}
		})
	}
}
