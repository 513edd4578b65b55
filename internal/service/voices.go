package service

import (
	"context"

	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/store"
	"github.com/franz/voice-vault/internal/util"
)

// ListVoices fetches the account's voices and mirrors each profile into
// the local store. A failed upsert is logged rather than failing the
// listing; the remote result is still returned.
func (s *Service) ListVoices(ctx context.Context) ([]elevenlabs.VoiceProfile, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}

	voices, err := client.ListVoices(ctx)
	if err != nil {
		return nil, err
	}

	for i := range voices {
		if err := s.store.PutVoiceProfile(&voices[i]); err != nil {
			util.WarnLog("Failed to cache voice %s: %v", voices[i].VoiceID, err)
		}
	}

	return voices, nil
}

// ListCachedVoices returns the locally mirrored profiles without a
// network round trip
func (s *Service) ListCachedVoices() ([]elevenlabs.VoiceProfile, error) {
	return s.store.GetVoiceProfiles()
}

// CloneVoice creates a voice from local samples and mirrors the
// resulting profile
func (s *Service) CloneVoice(ctx context.Context, req elevenlabs.CloneRequest) (*elevenlabs.VoiceProfile, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}

	voice, err := client.CloneVoice(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.PutVoiceProfile(voice); err != nil {
		return nil, err
	}

	s.audit.LogClone(voice.VoiceID, voice.Name, len(req.SampleFiles))

	return voice, nil
}

// DeleteVoice removes a voice remotely, then drops the local mirror
func (s *Service) DeleteVoice(ctx context.Context, voiceID string) error {
	client, err := s.ensureClient()
	if err != nil {
		return err
	}

	if err := client.DeleteVoice(ctx, voiceID); err != nil {
		return err
	}

	s.audit.LogDeleteVoice(voiceID)

	return s.store.DeleteVoiceProfile(voiceID)
}

// AssignCharacterVoice binds a character to a voice. Purely local.
func (s *Service) AssignCharacterVoice(characterName, voiceID, voiceName, projectID string) (*store.CharacterVoice, error) {
	return s.store.AssignCharacterVoice(characterName, voiceID, voiceName, projectID)
}

// ListCharacterVoices returns mappings, optionally scoped to a project
func (s *Service) ListCharacterVoices(projectID string) ([]*store.CharacterVoice, error) {
	return s.store.GetCharacterVoices(projectID)
}

// RemoveCharacterVoice drops a mapping by ID
func (s *Service) RemoveCharacterVoice(id string) error {
	return s.store.RemoveCharacterVoice(id)
}
