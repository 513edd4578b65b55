package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/franz/voice-vault/internal/cache"
	"github.com/franz/voice-vault/internal/util"
)

// PutAudioRecord inserts or replaces an audio record keyed by ID
func (s *Store) PutAudioRecord(r *AudioRecord) error {
	metadata := string(r.Metadata)
	if metadata == "" {
		metadata = "{}"
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO audio_records
			(id, audio_type, prompt, duration_seconds, local_path, remote_url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(r.Type), r.Prompt, r.DurationSeconds, r.LocalPath, r.RemoteURL, metadata, r.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert audio record: %w", err)
	}

	return nil
}

// GetAudioRecords retrieves all records of a given type, most recent first
func (s *Store) GetAudioRecords(t cache.AudioType) ([]*AudioRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, audio_type, prompt, duration_seconds,
		       COALESCE(local_path, ''), COALESCE(remote_url, ''),
		       COALESCE(metadata, ''), created_at
		FROM audio_records WHERE audio_type = ?
		ORDER BY created_at DESC
	`, string(t))

	if err != nil {
		return nil, fmt.Errorf("failed to query audio records: %w", err)
	}
	defer rows.Close()

	var records []*AudioRecord
	for rows.Next() {
		r, err := scanAudioRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetAudioRecord retrieves a single record by ID.
// Returns nil if no record exists (not an error).
func (s *Store) GetAudioRecord(id string) (*AudioRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, audio_type, prompt, duration_seconds,
		       COALESCE(local_path, ''), COALESCE(remote_url, ''),
		       COALESCE(metadata, ''), created_at
		FROM audio_records WHERE id = ?
	`, id)

	r, err := scanAudioRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return r, nil
}

// DeleteAudioRecord deletes a record by ID; deleting an absent record succeeds
func (s *Store) DeleteAudioRecord(id string) error {
	_, err := s.db.Exec("DELETE FROM audio_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete audio record: %w", err)
	}
	return nil
}

// DeleteAudioRecordsByType deletes every record of the given type and
// returns how many rows were removed
func (s *Store) DeleteAudioRecordsByType(t cache.AudioType) (int, error) {
	result, err := s.db.Exec("DELETE FROM audio_records WHERE audio_type = ?", string(t))
	if err != nil {
		return 0, fmt.Errorf("failed to delete audio records: %w", err)
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// GetAllAudioRecords retrieves every record regardless of type,
// most recent first. Used by the orphan sweep.
func (s *Store) GetAllAudioRecords() ([]*AudioRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, audio_type, prompt, duration_seconds,
		       COALESCE(local_path, ''), COALESCE(remote_url, ''),
		       COALESCE(metadata, ''), created_at
		FROM audio_records
		ORDER BY created_at DESC
	`)

	if err != nil {
		return nil, fmt.Errorf("failed to query audio records: %w", err)
	}
	defer rows.Close()

	var records []*AudioRecord
	for rows.Next() {
		r, err := scanAudioRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAudioRecord reads one row, tolerating malformed stored values:
// an unknown audio_type falls back to tts and invalid metadata JSON
// falls back to an empty object, both with a warning, so one bad column
// never hides the rest of the row.
func scanAudioRecord(row rowScanner) (*AudioRecord, error) {
	r := &AudioRecord{}
	var typeStr, metadata string

	err := row.Scan(
		&r.ID, &typeStr, &r.Prompt, &r.DurationSeconds,
		&r.LocalPath, &r.RemoteURL, &metadata, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audio record: %w", err)
	}

	r.Type = cache.AudioType(typeStr)
	if !r.Type.Valid() {
		util.WarnLog("Store: audio record %s has unknown type %q, treating as tts", r.ID, typeStr)
		r.Type = cache.TTS
	}

	if metadata == "" || !json.Valid([]byte(metadata)) {
		if metadata != "" {
			util.WarnLog("Store: audio record %s has malformed metadata, using empty object", r.ID)
		}
		metadata = "{}"
	}
	r.Metadata = json.RawMessage(metadata)

	return r, nil
}
