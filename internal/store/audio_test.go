package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/franz/voice-vault/internal/cache"
)

func testRecord(id string, t cache.AudioType, createdAt string) *AudioRecord {
	return &AudioRecord{
		ID:              id,
		Type:            t,
		Prompt:          "Hello world",
		DurationSeconds: 1.5,
		LocalPath:       "/cache/tts/" + id + ".mp3",
		Metadata:        json.RawMessage(`{"voice_id":"v1"}`),
		CreatedAt:       createdAt,
	}
}

func TestAudioRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := testRecord("a1", cache.TTS, time.Now().UTC().Format(time.RFC3339))
	if err := s.PutAudioRecord(rec); err != nil {
		t.Fatalf("PutAudioRecord failed: %v", err)
	}

	got, err := s.GetAudioRecord("a1")
	if err != nil {
		t.Fatalf("GetAudioRecord failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}

	if got.Type != cache.TTS {
		t.Errorf("expected type tts, got %s", got.Type)
	}
	if got.Prompt != rec.Prompt {
		t.Errorf("expected prompt %q, got %q", rec.Prompt, got.Prompt)
	}
	if got.LocalPath != rec.LocalPath {
		t.Errorf("expected path %q, got %q", rec.LocalPath, got.LocalPath)
	}
	if string(got.Metadata) != `{"voice_id":"v1"}` {
		t.Errorf("expected metadata preserved, got %s", got.Metadata)
	}
}

func TestAudioRecordReplaceDoesNotDuplicate(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.PutAudioRecord(testRecord("a1", cache.TTS, now)); err != nil {
		t.Fatal(err)
	}

	updated := testRecord("a1", cache.TTS, now)
	updated.Prompt = "Updated prompt"
	if err := s.PutAudioRecord(updated); err != nil {
		t.Fatal(err)
	}

	records, err := s.GetAudioRecords(cache.TTS)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after replace, got %d", len(records))
	}
	if records[0].Prompt != "Updated prompt" {
		t.Errorf("expected latest values after replace, got %q", records[0].Prompt)
	}
}

func TestGetAudioRecordsFiltersAndOrders(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		rec := testRecord(id, cache.TTS, base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339))
		if err := s.PutAudioRecord(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutAudioRecord(testRecord("fx", cache.SFX, base.Format(time.RFC3339))); err != nil {
		t.Fatal(err)
	}

	records, err := s.GetAudioRecords(cache.TTS)
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 tts records, got %d", len(records))
	}
	// Most recent first
	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if records[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, records[i].ID)
		}
	}
	for _, r := range records {
		if r.Type != cache.TTS {
			t.Errorf("record %s: expected type tts, got %s", r.ID, r.Type)
		}
	}
}

func TestGetAudioRecordAbsent(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetAudioRecord("missing")
	if err != nil {
		t.Fatalf("expected nil error for absent record, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil record, got %+v", got)
	}
}

func TestDeleteAudioRecordIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	rec := testRecord("a1", cache.Music, time.Now().UTC().Format(time.RFC3339))
	if err := s.PutAudioRecord(rec); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAudioRecord("a1"); err != nil {
		t.Fatalf("DeleteAudioRecord failed: %v", err)
	}
	if err := s.DeleteAudioRecord("a1"); err != nil {
		t.Errorf("deleting absent record should succeed, got %v", err)
	}

	got, err := s.GetAudioRecord("a1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("expected record gone after delete")
	}
}

func TestDeleteAudioRecordsByType(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range []string{"s1", "s2"} {
		if err := s.PutAudioRecord(testRecord(id, cache.SFX, now)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutAudioRecord(testRecord("t1", cache.TTS, now)); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteAudioRecordsByType(cache.SFX)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	ttsRecords, err := s.GetAudioRecords(cache.TTS)
	if err != nil {
		t.Fatal(err)
	}
	if len(ttsRecords) != 1 {
		t.Errorf("tts records should survive sfx delete, got %d", len(ttsRecords))
	}
}

func TestMalformedStoredValuesFallBack(t *testing.T) {
	s := openTestStore(t)

	// Write a row with a bogus type and broken metadata directly,
	// simulating corruption or a schema drift from an older writer.
	_, err := s.db.Exec(`
		INSERT INTO audio_records
			(id, audio_type, prompt, duration_seconds, local_path, remote_url, metadata, created_at)
		VALUES ('bad', 'speechify', 'p', 0, '', '', '{not-json', '2026-01-01T00:00:00Z')
	`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAudioRecord("bad")
	if err != nil {
		t.Fatalf("read of malformed row should not fail: %v", err)
	}
	if got.Type != cache.TTS {
		t.Errorf("expected fallback type tts, got %s", got.Type)
	}
	if string(got.Metadata) != "{}" {
		t.Errorf("expected fallback metadata {}, got %s", got.Metadata)
	}
}
