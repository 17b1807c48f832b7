package prayertimes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/location"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

// Source says where a Result came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceCache   Source = "cache"   // today's cached copy
	SourceStale   Source = "stale"   // last successful fetch, another day
	SourceDefault Source = "default" // built-in times
)

const (
	cacheKeyPrefix = "prayer_times:"
	lastGoodKey    = "prayer_times:last"
	hijriKeyPrefix = "hijri:"
)

// DefaultTimes are used when nothing has ever been fetched.
var DefaultTimes = map[models.PrayerName]string{
	models.Fajr:    "05:15 AM",
	models.Dhuhr:   "12:30 PM",
	models.Asr:     "04:15 PM",
	models.Maghrib: "06:45 PM",
	models.Isha:    "08:15 PM",
}

// Result is a Day annotated with its provenance. Err holds the remote
// failure when Source is stale or default.
type Result struct {
	Day
	Source Source
	Err    error
}

// Fetcher is the remote half of the service.
type Fetcher interface {
	FetchTimes(ctx context.Context, date time.Time, loc models.Location, method int) (Day, error)
}

type Service struct {
	fetcher Fetcher
	cache   storage.CacheStore
	clock   clock.Clock
}

func NewService(fetcher Fetcher, cache storage.CacheStore, clk clock.Clock) *Service {
	return &Service{fetcher: fetcher, cache: cache, clock: clk}
}

// Today returns today's times. A cached copy for today is reused unless it
// was computed with another method or for a location at least 500 m away.
func (s *Service) Today(ctx context.Context, loc models.Location, method int) (Result, error) {
	now := s.clock.Now()
	date := now.Format(constants.DateFormat)

	var cached Day
	if ok, err := s.readCache(ctx, cacheKeyPrefix+date, &cached); err != nil {
		return Result{}, err
	} else if ok && cached.Method == method {
		if cached.Location == nil || !location.IsSignificantChange(*cached.Location, loc) {
			return Result{Day: cached, Source: SourceCache}, nil
		}
		logger.Info("location changed, refetching prayer times", "date", date)
	}

	return s.fetch(ctx, now, loc, method)
}

// Refresh always asks the remote service, falling back like Today.
func (s *Service) Refresh(ctx context.Context, loc models.Location, method int) (Result, error) {
	return s.fetch(ctx, s.clock.Now(), loc, method)
}

func (s *Service) fetch(ctx context.Context, now time.Time, loc models.Location, method int) (Result, error) {
	date := now.Format(constants.DateFormat)

	fetchCtx, cancel := context.WithTimeout(ctx, constants.ServiceTimeout)
	day, fetchErr := s.fetcher.FetchTimes(fetchCtx, now, loc, method)
	cancel()

	if fetchErr == nil {
		day.Date = date
		day.Location = &loc
		if err := s.writeCache(ctx, cacheKeyPrefix+date, day, now); err != nil {
			return Result{}, err
		}
		if err := s.writeCache(ctx, lastGoodKey, day, now); err != nil {
			return Result{}, err
		}
		if day.Hijri != "" {
			if err := s.cache.PutCache(ctx, hijriKeyPrefix+date, day.Hijri, now); err != nil {
				return Result{}, err
			}
		}
		logger.Info("prayer times fetched", "date", date, "method", method)
		return Result{Day: day, Source: SourceRemote}, nil
	}

	logger.Warn("prayer time fetch failed, using fallback", "error", fetchErr)

	var last Day
	ok, err := s.readCache(ctx, lastGoodKey, &last)
	if err != nil {
		return Result{}, err
	}
	if ok && len(last.Times) == len(models.PrayerNames) {
		last.Date = date
		last.Hijri, _ = s.Hijri(ctx, date)
		return Result{Day: last, Source: SourceStale, Err: fetchErr}, nil
	}

	return Result{Day: Defaults(date, method), Source: SourceDefault, Err: fetchErr}, nil
}

// Hijri returns the cached Hijri date for a Gregorian date.
func (s *Service) Hijri(ctx context.Context, date string) (string, bool) {
	value, _, err := s.cache.GetCache(ctx, hijriKeyPrefix+date)
	if err != nil {
		return "", false
	}
	return value, true
}

// Defaults builds a Day from DefaultTimes.
func Defaults(date string, method int) Day {
	day := Day{Date: date, Method: method}
	for _, name := range models.PrayerNames {
		day.Times = append(day.Times, Time{Name: name, Arabic: name.Arabic(), Clock: DefaultTimes[name]})
	}
	return day
}

func (s *Service) readCache(ctx context.Context, key string, into *Day) (bool, error) {
	raw, _, err := s.cache.GetCache(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		logger.Warn("discarding unreadable prayer time cache", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *Service) writeCache(ctx context.Context, key string, day Day, now time.Time) error {
	data, err := json.Marshal(day)
	if err != nil {
		return err
	}
	return s.cache.PutCache(ctx, key, string(data), now)
}
