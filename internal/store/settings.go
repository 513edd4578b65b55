package store

import (
	"database/sql"
	"fmt"
)

const apiKeySetting = "api_key"

// PutAPIKey stores the API credential, overwriting any previous value.
// The key is stored in plaintext; at-rest encryption is out of scope.
func (s *Store) PutAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	return s.putSetting(apiKeySetting, key)
}

// GetAPIKey retrieves the stored credential.
// The bool is false when no credential has been stored.
func (s *Store) GetAPIKey() (string, bool, error) {
	return s.getSetting(apiKeySetting)
}

// RemoveAPIKey deletes the stored credential; absent is a no-op
func (s *Store) RemoveAPIKey() error {
	return s.deleteSetting(apiKeySetting)
}

func (s *Store) putSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)

	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}

	return nil
}

func (s *Store) getSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return value, true, nil
}

func (s *Store) deleteSetting(key string) error {
	_, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
