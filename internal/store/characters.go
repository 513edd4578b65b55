package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// AssignCharacterVoice binds a character name to a voice. Every call
// inserts a fresh row keyed by a new ID, so re-assigning the same
// character does NOT replace the earlier mapping; callers that want
// one-voice-per-character must remove the old row themselves.
// Character names are NFC-normalized before storage so lookups don't
// split on Unicode composition differences.
func (s *Store) AssignCharacterVoice(characterName, voiceID, voiceName, projectID string) (*CharacterVoice, error) {
	if characterName == "" {
		return nil, fmt.Errorf("character name cannot be empty")
	}
	if voiceID == "" {
		return nil, fmt.Errorf("voice ID cannot be empty")
	}

	cv := &CharacterVoice{
		ID:            uuid.NewString(),
		CharacterName: norm.NFC.String(characterName),
		VoiceID:       voiceID,
		VoiceName:     voiceName,
		ProjectID:     projectID,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	var project interface{}
	if cv.ProjectID != "" {
		project = cv.ProjectID
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO character_voices
			(id, character_name, voice_id, voice_name, project_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cv.ID, cv.CharacterName, cv.VoiceID, cv.VoiceName, project, cv.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to assign character voice: %w", err)
	}

	return cv, nil
}

// GetCharacterVoices retrieves mappings ordered by character name.
// An empty projectID returns mappings across all projects.
func (s *Store) GetCharacterVoices(projectID string) ([]*CharacterVoice, error) {
	var rows *sql.Rows
	var err error

	if projectID != "" {
		rows, err = s.db.Query(`
			SELECT id, character_name, voice_id, voice_name,
			       COALESCE(project_id, ''), created_at
			FROM character_voices WHERE project_id = ?
			ORDER BY character_name
		`, projectID)
	} else {
		rows, err = s.db.Query(`
			SELECT id, character_name, voice_id, voice_name,
			       COALESCE(project_id, ''), created_at
			FROM character_voices
			ORDER BY character_name
		`)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query character voices: %w", err)
	}
	defer rows.Close()

	var mappings []*CharacterVoice
	for rows.Next() {
		cv := &CharacterVoice{}
		err := rows.Scan(
			&cv.ID, &cv.CharacterName, &cv.VoiceID, &cv.VoiceName,
			&cv.ProjectID, &cv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character voice: %w", err)
		}
		mappings = append(mappings, cv)
	}

	return mappings, rows.Err()
}

// RemoveCharacterVoice removes a mapping by ID; absent IDs are a no-op
func (s *Store) RemoveCharacterVoice(id string) error {
	_, err := s.db.Exec("DELETE FROM character_voices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove character voice: %w", err)
	}
	return nil
}
