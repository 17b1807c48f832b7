package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage"
)

type stubSettings struct {
	settings models.Settings
	err      error
}

func (s stubSettings) GetSettings() (models.Settings, error) { return s.settings, s.err }

type memCache map[string]string

func (m memCache) GetCache(ctx context.Context, key string) (string, time.Time, error) {
	v, ok := m[key]
	if !ok {
		return "", time.Time{}, fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return v, time.Time{}, nil
}

func (m memCache) PutCache(ctx context.Context, key, value string, at time.Time) error {
	m[key] = value
	return nil
}

func TestCurrent(t *testing.T) {
	clk := clock.NewFake(time.Now())
	ctx := context.Background()
	makkah := models.Location{Latitude: 21.4225, Longitude: 39.8262}

	cache := memCache{}
	p := NewProvider(stubSettings{settings: models.Settings{Latitude: makkah.Latitude, Longitude: makkah.Longitude}}, cache, clk)
	got, err := p.Current(ctx)
	if err != nil || got != makkah {
		t.Fatalf("Current() = %v, %v, want configured location", got, err)
	}

	// settings lost: the remembered location is used
	p = NewProvider(stubSettings{err: errors.New("locked")}, cache, clk)
	got, err = p.Current(ctx)
	if err != nil || got != makkah {
		t.Errorf("Current() = %v, %v, want cached location", got, err)
	}

	// nothing anywhere: fallback
	p = NewProvider(stubSettings{}, memCache{}, clk)
	got, err = p.Current(ctx)
	if err != nil || got != Fallback {
		t.Errorf("Current() = %v, %v, want fallback", got, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		loc     models.Location
		wantErr bool
	}{
		{models.Location{Latitude: 31.5, Longitude: 74.3}, false},
		{models.Location{Latitude: -90, Longitude: 180}, false},
		{models.Location{Latitude: 91, Longitude: 0}, true},
		{models.Location{Latitude: 0, Longitude: -181}, true},
		{models.Location{Latitude: math.NaN(), Longitude: 0}, true},
	}
	for _, tt := range tests {
		if err := Validate(tt.loc); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.loc, err, tt.wantErr)
		}
	}
}

func TestDistanceAndSignificantChange(t *testing.T) {
	lahore := Fallback
	karachi := models.Location{Latitude: 24.8607, Longitude: 67.0011}

	if d := Distance(lahore, lahore); d != 0 {
		t.Errorf("Distance(same) = %v, want 0", d)
	}
	// roughly 1030 km
	if d := Distance(lahore, karachi); d < 1000000 || d > 1060000 {
		t.Errorf("Distance(Lahore, Karachi) = %.0f m, want about 1030 km", d)
	}

	// 0.001 degrees of latitude is about 111 m
	near := models.Location{Latitude: lahore.Latitude + 0.001, Longitude: lahore.Longitude}
	if IsSignificantChange(lahore, near) {
		t.Error("IsSignificantChange(111 m) = true, want false")
	}
	far := models.Location{Latitude: lahore.Latitude + 0.005, Longitude: lahore.Longitude}
	if !IsSignificantChange(lahore, far) {
		t.Error("IsSignificantChange(556 m) = false, want true")
	}
}
