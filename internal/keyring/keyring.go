// Package keyring stores secrets (the database connection string and the
// Telegram bot token) in the OS keyring instead of config files.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/sirr/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names one entry under the sirr keyring service.
type Secret string

const (
	ConnectionString Secret = constants.DefaultKeyringUser
	TelegramToken    Secret = constants.TelegramKeyringUser
)

// ParseSecret maps a CLI name ("db", "telegram") to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "db", "database", string(ConnectionString):
		return ConnectionString, nil
	case "telegram", string(TelegramToken):
		return TelegramToken, nil
	}
	return "", fmt.Errorf("unknown secret %q (expected db or telegram)", name)
}

func Get(s Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(ConnectionString)
}

// IsAvailable is a best-effort check that the OS keyring answers reads.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
