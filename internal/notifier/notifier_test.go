package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/sirr/internal/constants"
)

// Mock Process
type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	userConfigDirFunc = func() (string, error) {
		return tempDir, nil
	}

	expectedDefault := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != expectedDefault {
		t.Errorf("expected %s, got %s", expectedDefault, dir)
	}

	// lockfile_dir in the tray settings wins
	trayConfigDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayConfigDir, 0755); err != nil {
		t.Fatal(err)
	}

	customDir := "/custom/sirr/dir"
	settingsJSON := fmt.Sprintf(`{"settings": {"lockfile_dir": "%s"}}`, customDir)
	if err := os.WriteFile(filepath.Join(trayConfigDir, "settings.json"), []byte(settingsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	oldFindProcessFunc := findProcessFunc
	defer func() { findProcessFunc = oldFindProcessFunc }()

	lockfilePath := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
	if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
		t.Error("expected error for missing lockfile")
	}

	running := func(exe string) func(int) (ps.Process, error) {
		return func(pid int) (ps.Process, error) {
			return &mockProcess{pid: pid, executable: exe}, nil
		}
	}
	tests := []struct {
		name       string
		lockfile   string
		find       func(int) (ps.Process, error)
		wantErr    string
		wantPort   string
		wantSecret string
	}{
		{"old two part format", "8080|12345", running("sirr-tray"), "malformed", "", ""},
		{"garbage", "invalid", running("sirr-tray"), "malformed", "", ""},
		{"empty secret", "8080|12345|", running("sirr-tray"), "secret", "", ""},
		{"empty port", "|12345|testsecret123", running("sirr-tray"), "port", "", ""},
		{"port out of range", "99999|12345|testsecret123", running("sirr-tray"), "range", "", ""},
		{"bad pid", "8080|abc|testsecret123", running("sirr-tray"), "process ID", "", ""},
		{"process gone", "8080|12345|testsecret123", func(int) (ps.Process, error) { return nil, nil }, "not running", "", ""},
		{"wrong executable", "8080|12345|testsecret123", running("other-app"), "other-app", "", ""},
		{"running", "8080|12345|testsecret123", running("sirr-tray"), "", "8080", "testsecret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(lockfilePath, []byte(tt.lockfile), 0644); err != nil {
				t.Fatal(err)
			}
			findProcessFunc = tt.find

			port, secret, err := findAndValidateTrayProcess(lockfilePath)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("findAndValidateTrayProcess() error = %v, want one mentioning %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("findAndValidateTrayProcess() error = %v", err)
			}
			if port != tt.wantPort || secret != tt.wantSecret {
				t.Errorf("findAndValidateTrayProcess() = %s, %s, want %s, %s", port, secret, tt.wantPort, tt.wantSecret)
			}
		})
	}
}

// fakeTray points the lockfile lookup at a test server posing as the tray app.
func fakeTray(t *testing.T, handler http.HandlerFunc) *Tray {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	port := server.URL[strings.LastIndex(server.URL, ":")+1:]

	configDir := t.TempDir()
	oldUserConfigDirFunc, oldFindProcessFunc := userConfigDirFunc, findProcessFunc
	t.Cleanup(func() {
		userConfigDirFunc, findProcessFunc = oldUserConfigDirFunc, oldFindProcessFunc
	})
	userConfigDirFunc = func() (string, error) { return configDir, nil }
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "sirr-tray"}, nil
	}

	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lockfile := fmt.Sprintf("%s|4242|tray-secret", port)
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lockfile), 0644); err != nil {
		t.Fatal(err)
	}
	return NewTray()
}

func TestTraySend(t *testing.T) {
	var got WebhookPayload
	tray := fakeTray(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Sirr-Secret") != "tray-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	if err := tray.Available(); err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	err := tray.Send(context.Background(), "🕌 Fajr in 15 minutes", "Fajr prayer at 05:15 AM. Get ready!")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.Title != "🕌 Fajr in 15 minutes" || got.Text != "Fajr prayer at 05:15 AM. Get ready!" {
		t.Errorf("payload = %+v", got)
	}
	if got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("DurationMs = %d, want %d", got.DurationMs, constants.NotificationDurationMs)
	}
}

func TestTrayUnavailable(t *testing.T) {
	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	configDir := t.TempDir()
	userConfigDirFunc = func() (string, error) { return configDir, nil }

	tray := NewTray()
	if err := tray.Available(); err == nil || !strings.Contains(err.Error(), "not running") {
		t.Errorf("Available() error = %v, want tray not running", err)
	}
	if err := tray.Send(context.Background(), "title", "message"); err == nil {
		t.Error("Send() error = nil without a tray app")
	}
}

func TestSendNotification(t *testing.T) {
	// Setup mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Check for secret header
		secret := r.Header.Get("X-Sirr-Secret")
		if secret == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}
		if secret != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}

		var payload WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Extract port
	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]

	// Test 1: Success
	err := sendNotification(context.Background(), port, "test-secret", WebhookPayload{Text: "hello"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Test 2: Missing secret
	err = sendNotification(context.Background(), port, "", WebhookPayload{Text: "hello"})
	if err == nil {
		t.Error("expected error for missing secret")
	}

	// Test 3: Wrong secret
	err = sendNotification(context.Background(), port, "wrong-secret", WebhookPayload{Text: "hello"})
	if err == nil {
		t.Error("expected error for wrong secret")
	}

	// Test 4: Server error
	err = sendNotification(context.Background(), port, "test-secret", WebhookPayload{Text: "fail"})
	if err == nil {
		t.Error("expected error for server failure")
	}
}
