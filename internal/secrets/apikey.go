package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups leadradar's secrets in the OS keychain.
	KeyringService = "leadradar"
	// APIKeyAccount is the keychain account holding the TheirStack API key.
	APIKeyAccount = "theirstack"
)

// ErrNotFound is returned when no API key is stored in the keychain.
var ErrNotFound = errors.New("TheirStack API key not found in keychain")

// GetAPIKey reads the TheirStack API key from the OS keychain.
func GetAPIKey() (string, error) {
	key, err := keyring.Get(KeyringService, APIKeyAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading keychain: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrNotFound
	}
	return key, nil
}

// SetAPIKey stores the TheirStack API key in the OS keychain.
func SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}
	if err := keyring.Set(KeyringService, APIKeyAccount, key); err != nil {
		return fmt.Errorf("writing keychain: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the stored key. Deleting a key that is not there is not an error.
func DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, APIKeyAccount)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting from keychain: %w", err)
	}
	return nil
}

// ResolveAPIKey returns current when set, otherwise the keychain value.
// Keychain failures resolve to "" so a missing key surfaces later as a
// configuration error on the batch, not at startup.
func ResolveAPIKey(current string) string {
	if strings.TrimSpace(current) != "" {
		return current
	}
	key, err := GetAPIKey()
	if err != nil {
		return ""
	}
	return key
}
