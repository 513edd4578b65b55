package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/franz/voice-vault/internal/cache"
	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/store"
	"github.com/franz/voice-vault/internal/util"
)

// speechBytesPerSecond is the approximate data rate of the fixed
// 128 kbps output format. Used only for duration estimation.
const speechBytesPerSecond = 16000.0

// EstimateSpeechDuration approximates playback length from the encoded
// size, assuming the fixed 128 kbps speech format. It is an estimate,
// not a measurement; the API does not report actual duration.
func EstimateSpeechDuration(byteLen int) float64 {
	return float64(byteLen) / speechBytesPerSecond
}

// Speak synthesizes speech, caches the audio and records the result.
// The file is written before the record; if the record insert fails the
// file is left behind (an orphan the doctor sweep can find later).
func (s *Service) Speak(ctx context.Context, req elevenlabs.TTSRequest) (*store.AudioRecord, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}

	audio, err := client.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	audioCache, err := s.ensureCache()
	if err != nil {
		return nil, err
	}

	path, err := audioCache.Save(cache.TTS, audio, "mp3")
	if err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(map[string]string{"voice_id": req.VoiceID})

	record := &store.AudioRecord{
		ID:              uuid.NewString(),
		Type:            cache.TTS,
		Prompt:          req.Text,
		DurationSeconds: EstimateSpeechDuration(len(audio)),
		LocalPath:       path,
		Metadata:        metadata,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.store.PutAudioRecord(record); err != nil {
		return nil, fmt.Errorf("audio cached at %s but record failed: %w", path, err)
	}

	s.audit.LogSynthesis(record.ID, req.VoiceID, req.Text, record.DurationSeconds, int64(len(audio)), path)

	return record, nil
}

// GenerateSoundEffect produces a sound effect, caches it and records
// the result. The recorded duration is the requested one, not measured.
func (s *Service) GenerateSoundEffect(ctx context.Context, req elevenlabs.SFXRequest) (*store.AudioRecord, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}

	if req.DurationSeconds == 0 {
		req.DurationSeconds = elevenlabs.DefaultSFXDuration
	}

	audio, err := client.GenerateSoundEffect(ctx, req)
	if err != nil {
		return nil, err
	}

	audioCache, err := s.ensureCache()
	if err != nil {
		return nil, err
	}

	path, err := audioCache.Save(cache.SFX, audio, "mp3")
	if err != nil {
		return nil, err
	}

	record := &store.AudioRecord{
		ID:              uuid.NewString(),
		Type:            cache.SFX,
		Prompt:          req.Text,
		DurationSeconds: req.DurationSeconds,
		LocalPath:       path,
		Metadata:        json.RawMessage("{}"),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.store.PutAudioRecord(record); err != nil {
		return nil, fmt.Errorf("audio cached at %s but record failed: %w", path, err)
	}

	s.audit.LogSoundEffect(record.ID, req.Text, record.DurationSeconds, int64(len(audio)), path)

	return record, nil
}

// ListCachedAudio returns records of a type, most recent first
func (s *Service) ListCachedAudio(t cache.AudioType) ([]*store.AudioRecord, error) {
	return s.store.GetAudioRecords(t)
}

// DeleteCachedAudio removes a record and its file. Both halves are
// idempotent: a missing file or an already-deleted record still counts
// as success.
func (s *Service) DeleteCachedAudio(id string) error {
	record, err := s.store.GetAudioRecord(id)
	if err != nil {
		return err
	}

	if record != nil && record.LocalPath != "" {
		audioCache, err := s.ensureCache()
		if err != nil {
			return err
		}
		if err := audioCache.Delete(record.LocalPath); err != nil {
			return err
		}
	}

	if err := s.store.DeleteAudioRecord(id); err != nil {
		return err
	}

	s.audit.LogCacheDelete(id)
	return nil
}

// CacheSize returns the total bytes held in the file cache
func (s *Service) CacheSize() (int64, error) {
	audioCache, err := s.ensureCache()
	if err != nil {
		return 0, err
	}
	return audioCache.TotalSize()
}

// ClearCache deletes all cached files of a type and their records.
// Returns the file and record counts removed.
func (s *Service) ClearCache(t cache.AudioType) (files int, records int, err error) {
	audioCache, err := s.ensureCache()
	if err != nil {
		return 0, 0, err
	}

	files, err = audioCache.Clear(t)
	if err != nil {
		return 0, 0, err
	}

	records, err = s.store.DeleteAudioRecordsByType(t)
	if err != nil {
		return files, 0, err
	}

	util.DebugLog("Cleared %d files and %d records for %s", files, records, t)
	s.audit.LogCacheClear(string(t), files, records)

	return files, records, nil
}
