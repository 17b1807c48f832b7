// Package location resolves the coordinates prayer times are computed for.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/constants"
	"github.com/julianstephens/sirr/internal/logger"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

const cacheKey = "location:last"

const earthRadiusMeters = 6371000.0

// Fallback is used when no location was ever configured (Lahore).
var Fallback = models.Location{Latitude: constants.DefaultLatitude, Longitude: constants.DefaultLongitude}

type SettingsSource interface {
	GetSettings() (models.Settings, error)
}

type Provider struct {
	settings SettingsSource
	cache    storage.CacheStore
	clock    clock.Clock
}

func NewProvider(settings SettingsSource, cache storage.CacheStore, clk clock.Clock) *Provider {
	return &Provider{settings: settings, cache: cache, clock: clk}
}

// Current returns the configured location, the last location that was used,
// or Fallback, in that order.
func (p *Provider) Current(ctx context.Context) (models.Location, error) {
	settings, err := p.settings.GetSettings()
	if err == nil {
		loc := settings.Location()
		if Validate(loc) == nil && !(loc.Latitude == 0 && loc.Longitude == 0) {
			p.remember(ctx, loc)
			return loc, nil
		}
	} else {
		logger.Warn("settings unavailable, using cached location", "error", err)
	}

	raw, _, err := p.cache.GetCache(ctx, cacheKey)
	if err == nil {
		var cached models.Location
		if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil && Validate(cached) == nil {
			return cached, nil
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Location{}, err
	}

	logger.Warn("no location configured, using fallback", "lat", Fallback.Latitude, "lon", Fallback.Longitude)
	return Fallback, nil
}

func (p *Provider) remember(ctx context.Context, loc models.Location) {
	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := p.cache.PutCache(ctx, cacheKey, string(data), p.clock.Now()); err != nil {
		logger.Debug("failed to cache location", "error", err)
	}
}

// Validate rejects coordinates outside the valid latitude/longitude ranges.
func Validate(loc models.Location) error {
	if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", loc.Latitude)
	}
	if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", loc.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b models.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// IsSignificantChange reports whether moving from a to b warrants refetching
// prayer times.
func IsSignificantChange(a, b models.Location) bool {
	return Distance(a, b) >= constants.SignificantLocationMove
}
