package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sirr/internal/clock"
	"github.com/julianstephens/sirr/internal/models"
	"github.com/julianstephens/sirr/internal/storage/sqlite"
)

func newServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			// the realtime database answers null for missing paths
			w.Write([]byte("null"))
			return
		}
		if body == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchContent(t *testing.T) {
	server := newServer(t, map[string]string{
		"/ramadan_day_content/day_1.json": `{"day_number":1,"juz":1,"surah_range":"Al-Fatiha 1 - Al-Baqarah 141","core_theme":"Guidance","key_takeaways":["a","b"]}`,
		"/ramadan_day_content/day_2.json": `{"day_number":2,`,
		"/ramadan_day_content/day_3.json": "500",
	})
	svc := NewService(server.URL + "/")

	tests := []struct {
		name    string
		day     int
		wantErr error
	}{
		{"found", 1, nil},
		{"corrupt", 2, ErrUnavailable},
		{"server error", 3, ErrUnavailable},
		{"missing", 4, ErrNotFound},
		{"out of range", 31, ErrNotFound},
		{"zero", 0, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := svc.FetchContent(context.Background(), tt.day)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FetchContent(%d) error = %v, want %v", tt.day, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchContent(%d) error = %v", tt.day, err)
			}
			if c.Day != 1 || c.CoreTheme != "Guidance" || len(c.KeyTakeaways) != 2 {
				t.Errorf("FetchContent(1) = %+v", c)
			}
		})
	}
}

func TestFetchContentUnreachable(t *testing.T) {
	server := newServer(t, nil)
	url := server.URL
	server.Close()

	_, err := NewService(url).FetchContent(context.Background(), 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("FetchContent() error = %v, want ErrUnavailable", err)
	}
}

func TestFetchStatus(t *testing.T) {
	server := newServer(t, map[string]string{
		"/app_config/ramadan/is_ramadan_active.json": "true",
		"/app_config/ramadan/current_day.json":       "12",
	})
	got, err := NewService(server.URL).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus() error = %v", err)
	}
	if !got.Active || got.CurrentDay != 12 {
		t.Errorf("FetchStatus() = %+v, want active day 12", got)
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder(7)
	if p.Day != 7 || !p.Placeholder || p.CoreTheme == "" {
		t.Errorf("Placeholder(7) = %+v", p)
	}
}

type fakeRemote struct {
	active    bool
	activeErr error
	day       int
	dayErr    error
}

func (f fakeRemote) FetchActive(ctx context.Context) (bool, error) { return f.active, f.activeErr }
func (f fakeRemote) FetchCurrentDay(ctx context.Context) (int, error) {
	return f.day, f.dayErr
}

type memPointer struct {
	status models.RamadanStatus
	saves  int
}

func (m *memPointer) GetRamadanStatus(ctx context.Context) (models.RamadanStatus, error) {
	return m.status, nil
}

func (m *memPointer) SaveRamadanStatus(ctx context.Context, s models.RamadanStatus) error {
	m.status = s
	m.saves++
	return nil
}

func TestSync(t *testing.T) {
	offline := errors.New("offline")
	tests := []struct {
		name    string
		local   models.RamadanStatus
		remote  fakeRemote
		want    models.RamadanStatus
		wantErr bool
		saved   bool
	}{
		{"active", models.RamadanStatus{}, fakeRemote{active: true, day: 5}, models.RamadanStatus{Active: true, CurrentDay: 5}, false, true},
		{"clamped", models.RamadanStatus{}, fakeRemote{active: true, day: 40}, models.RamadanStatus{Active: true, CurrentDay: 30}, false, true},
		{"inactive keeps day", models.RamadanStatus{Active: true, CurrentDay: 30}, fakeRemote{active: false}, models.RamadanStatus{Active: false, CurrentDay: 30}, false, true},
		{"active fetch fails", models.RamadanStatus{Active: true, CurrentDay: 3}, fakeRemote{activeErr: offline}, models.RamadanStatus{Active: true, CurrentDay: 3}, true, false},
		{"day fetch fails, no local day", models.RamadanStatus{}, fakeRemote{active: true, dayErr: offline}, models.RamadanStatus{Active: true, CurrentDay: 1}, true, true},
		{"day fetch fails, local day kept", models.RamadanStatus{Active: true, CurrentDay: 9}, fakeRemote{active: true, dayErr: offline}, models.RamadanStatus{Active: true, CurrentDay: 9}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memPointer{status: tt.local}
			got, err := NewSyncer(tt.remote, store).Sync(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Sync() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Sync() = %+v, want %+v", got, tt.want)
			}
			if (store.saves > 0) != tt.saved {
				t.Errorf("saved = %v, want %v", store.saves > 0, tt.saved)
			}
			if tt.saved && store.status != tt.want {
				t.Errorf("stored = %+v, want %+v", store.status, tt.want)
			}
		})
	}
}

func TestViewed(t *testing.T) {
	ctx := context.Background()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "sirr.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()

	v := NewViewed(store, clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	if err := v.Mark(ctx, 3, KindVideo); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	if err := v.Mark(ctx, 3, KindVideo); err != nil {
		t.Fatalf("second Mark() error = %v", err)
	}
	if seen, _ := v.Seen(ctx, 3, KindVideo); !seen {
		t.Error("Seen(3, video) = false, want true")
	}
	if seen, _ := v.Seen(ctx, 3, KindAudio); seen {
		t.Error("Seen(3, audio) = true, want false")
	}
	if err := v.Mark(ctx, 3, "podcast"); err == nil {
		t.Error("Mark(podcast) error = nil, want error")
	}
	if err := v.Mark(ctx, 31, KindLesson); err == nil {
		t.Error("Mark(31) error = nil, want error")
	}
}
