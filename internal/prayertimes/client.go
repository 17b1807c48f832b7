// Package prayertimes fetches daily prayer times for a location and keeps a
// cached copy so the tracker always has five times to show.
package prayertimes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
)

// ErrUnavailable wraps every failure to obtain times from the remote service.
var ErrUnavailable = errors.New("prayer time service unavailable")

// Time is one prayer's time of day on a given date.
type Time struct {
	Name   models.PrayerName `json:"name"`
	Arabic string            `json:"arabic"`
	Clock  string            `json:"clock"` // hh:mm AM/PM
}

// Day is the set of times for one date plus its Hijri rendering.
type Day struct {
	Date   string `json:"date"`
	Times  []Time `json:"times"`
	Hijri  string `json:"hijri,omitempty"`
	Method int    `json:"method"`
	// Location the times were computed for; nil in caches written before it
	// was recorded.
	Location *models.Location `json:"location,omitempty"`
}

// Client talks to an aladhan-compatible timings endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultPrayerAPIURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.ServiceTimeout},
	}
}

type timingsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Hijri struct {
				Day   string `json:"day"`
				Year  string `json:"year"`
				Month struct {
					En string `json:"en"`
				} `json:"month"`
			} `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

// FetchTimes requests the five times for date at the given coordinates.
func (c *Client) FetchTimes(ctx context.Context, date time.Time, loc models.Location, method int) (Day, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("method", strconv.Itoa(method))
	endpoint := fmt.Sprintf("%s/timings/%d?%s", c.baseURL, date.Unix(), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Day{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Day{}, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if body.Code != http.StatusOK {
		return Day{}, fmt.Errorf("%w: api status %q", ErrUnavailable, body.Status)
	}

	day := Day{Date: date.Format(constants.DateFormat), Method: method}
	for _, name := range models.PrayerNames {
		raw, ok := body.Data.Timings[string(name)]
		if !ok {
			return Day{}, fmt.Errorf("%w: response has no %s time", ErrUnavailable, name)
		}
		clock, err := To12Hour(raw)
		if err != nil {
			return Day{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		day.Times = append(day.Times, Time{Name: name, Arabic: name.Arabic(), Clock: clock})
	}

	h := body.Data.Date.Hijri
	if h.Day != "" && h.Month.En != "" && h.Year != "" {
		day.Hijri = fmt.Sprintf("%s %s %s", h.Day, h.Month.En, h.Year)
	}
	return day, nil
}

// To12Hour converts the service's "HH:mm (TZ)" form to "hh:mm AM/PM".
func To12Hour(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if i := strings.IndexByte(value, ' '); i >= 0 {
		value = value[:i]
	}
	t, err := time.Parse(constants.TimeFormat, value)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %w", raw, err)
	}
	return models.FormatClock(t), nil
}
