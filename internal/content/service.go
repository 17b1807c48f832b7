// Package content reads day content and the Ramadan calendar state from the
// realtime database REST API.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/models"
)

var (
	// ErrNotFound means the service answered but holds nothing at the path.
	ErrNotFound = errors.New("content not found")
	// ErrUnavailable wraps transport and decoding failures.
	ErrUnavailable = errors.New("content service unavailable")
)

const (
	dayContentPath    = "ramadan_day_content"
	ramadanActivePath = "app_config/ramadan/is_ramadan_active"
	currentDayPath    = "app_config/ramadan/current_day"
)

type Service struct {
	baseURL    string
	httpClient *http.Client
}

func NewService(baseURL string) *Service {
	if baseURL == "" {
		baseURL = constants.DefaultContentURL
	}
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.ServiceTimeout},
	}
}

// FetchContent returns the content of day. Days outside 1..30 and days the
// service has no entry for return ErrNotFound. There is no retry.
func (s *Service) FetchContent(ctx context.Context, day int) (models.Content, error) {
	if day < 1 || day > constants.TotalDays {
		return models.Content{}, fmt.Errorf("day %d: %w", day, ErrNotFound)
	}

	var c models.Content
	if err := s.get(ctx, fmt.Sprintf("%s/day_%d", dayContentPath, day), &c); err != nil {
		return models.Content{}, fmt.Errorf("day %d: %w", day, err)
	}
	if c.Day == 0 {
		c.Day = day
	}
	return c, nil
}

// FetchActive reports whether Ramadan is currently active.
func (s *Service) FetchActive(ctx context.Context) (bool, error) {
	var active bool
	if err := s.get(ctx, ramadanActivePath, &active); err != nil {
		return false, err
	}
	return active, nil
}

// FetchCurrentDay returns the published curriculum pointer.
func (s *Service) FetchCurrentDay(ctx context.Context) (int, error) {
	var day int
	if err := s.get(ctx, currentDayPath, &day); err != nil {
		return 0, err
	}
	return day, nil
}

// FetchStatus returns both calendar values. It fails if either does.
func (s *Service) FetchStatus(ctx context.Context) (models.RamadanStatus, error) {
	active, err := s.FetchActive(ctx)
	if err != nil {
		return models.RamadanStatus{}, err
	}
	day, err := s.FetchCurrentDay(ctx)
	if err != nil {
		return models.RamadanStatus{}, err
	}
	return models.RamadanStatus{Active: active, CurrentDay: day}, nil
}

// get decodes the JSON value at path into v. A JSON null body means the path
// does not exist.
func (s *Service) get(ctx context.Context, path string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ServiceTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+path+".json", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrUnavailable, err)
	}
	return nil
}

// Placeholder is shown when a day's content cannot be loaded.
func Placeholder(day int) models.Content {
	return models.Content{
		Day:                day,
		CoreTheme:          fmt.Sprintf("Day %d", day),
		Explanation:        "Content for this day is not available right now. Check your connection and try again.",
		KeyTakeaways:       []string{"Recite the day's portion of the Quran", "Reflect on its meaning"},
		ReflectionQuestion: "What stood out to you in today's recitation?",
		Placeholder:        true,
	}
}
