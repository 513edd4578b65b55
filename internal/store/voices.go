package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/util"
)

// PutVoiceProfile inserts or replaces a voice profile keyed by voice ID.
// Profiles are upserted wholesale on every remote fetch, never partially.
func (s *Store) PutVoiceProfile(v *elevenlabs.VoiceProfile) error {
	var labels interface{}
	if len(v.Labels) > 0 {
		labels = string(v.Labels)
	}

	speakerBoost := 0
	if v.Settings.UseSpeakerBoost {
		speakerBoost = 1
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO voice_profiles
			(voice_id, name, description, category, labels, preview_url,
			 settings_stability, settings_similarity_boost, settings_style,
			 settings_use_speaker_boost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, v.VoiceID, v.Name, v.Description, v.Category, labels, v.PreviewURL,
		v.Settings.Stability, v.Settings.SimilarityBoost, v.Settings.Style,
		speakerBoost)

	if err != nil {
		return fmt.Errorf("failed to insert voice profile: %w", err)
	}

	return nil
}

// GetVoiceProfiles retrieves all cached profiles ordered by name
func (s *Store) GetVoiceProfiles() ([]elevenlabs.VoiceProfile, error) {
	rows, err := s.db.Query(`
		SELECT voice_id, name, COALESCE(description, ''), category,
		       COALESCE(labels, ''), COALESCE(preview_url, ''),
		       settings_stability, settings_similarity_boost, settings_style,
		       settings_use_speaker_boost
		FROM voice_profiles
		ORDER BY name
	`)

	if err != nil {
		return nil, fmt.Errorf("failed to query voice profiles: %w", err)
	}
	defer rows.Close()

	var profiles []elevenlabs.VoiceProfile
	for rows.Next() {
		var v elevenlabs.VoiceProfile
		var labels string
		var speakerBoost int

		err := rows.Scan(
			&v.VoiceID, &v.Name, &v.Description, &v.Category,
			&labels, &v.PreviewURL,
			&v.Settings.Stability, &v.Settings.SimilarityBoost, &v.Settings.Style,
			&speakerBoost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voice profile: %w", err)
		}

		v.Settings.UseSpeakerBoost = speakerBoost != 0

		// Malformed stored labels are dropped rather than failing the row
		if labels != "" {
			if json.Valid([]byte(labels)) {
				v.Labels = json.RawMessage(labels)
			} else {
				util.WarnLog("Store: voice %s has malformed labels, dropping them", v.VoiceID)
			}
		}

		profiles = append(profiles, v)
	}

	return profiles, rows.Err()
}

// GetVoiceProfile retrieves a single cached profile by voice ID.
// Returns nil if no profile exists (not an error).
func (s *Store) GetVoiceProfile(voiceID string) (*elevenlabs.VoiceProfile, error) {
	var v elevenlabs.VoiceProfile
	var labels string
	var speakerBoost int

	err := s.db.QueryRow(`
		SELECT voice_id, name, COALESCE(description, ''), category,
		       COALESCE(labels, ''), COALESCE(preview_url, ''),
		       settings_stability, settings_similarity_boost, settings_style,
		       settings_use_speaker_boost
		FROM voice_profiles WHERE voice_id = ?
	`, voiceID).Scan(
		&v.VoiceID, &v.Name, &v.Description, &v.Category,
		&labels, &v.PreviewURL,
		&v.Settings.Stability, &v.Settings.SimilarityBoost, &v.Settings.Style,
		&speakerBoost,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voice profile: %w", err)
	}

	v.Settings.UseSpeakerBoost = speakerBoost != 0
	if labels != "" && json.Valid([]byte(labels)) {
		v.Labels = json.RawMessage(labels)
	}

	return &v, nil
}

// DeleteVoiceProfile deletes a cached profile; absent profiles are a no-op
func (s *Store) DeleteVoiceProfile(voiceID string) error {
	_, err := s.db.Exec("DELETE FROM voice_profiles WHERE voice_id = ?", voiceID)
	if err != nil {
		return fmt.Errorf("failed to delete voice profile: %w", err)
	}
	return nil
}
