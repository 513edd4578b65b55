package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/voice-vault/internal/cache"
	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/report"
	"github.com/franz/voice-vault/internal/store"
	"github.com/franz/voice-vault/internal/util"
)

// fakeAPI is a minimal stand-in for the remote service
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/user/subscription", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") == "bad-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"character_count": 500, "character_limit": 10000, "voice_limit": 10}`))
	})

	mux.HandleFunc("/voices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"voices": [
			{"voice_id": "v1", "name": "Alice"},
			{"voice_id": "v2", "name": "Bob", "category": "cloned"}
		]}`))
	})

	mux.HandleFunc("/voices/v2", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(`{"voice_id": "v2", "name": "Bob", "category": "cloned"}`))
	})

	mux.HandleFunc("/text-to-speech/", func(w http.ResponseWriter, r *http.Request) {
		// 32000 bytes = 2.0s at the assumed 128 kbps rate
		w.Write(make([]byte, 32000))
	})

	mux.HandleFunc("/sound-generation", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sfx-audio-bytes"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	server := fakeAPI(t)
	svc := New(st, filepath.Join(t.TempDir(), "audio"), server.URL)

	if err := svc.SetAPIKey(context.Background(), "good-key"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}

	return svc, st
}

func TestSetAPIKeyRejectsInvalid(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	server := fakeAPI(t)
	svc := New(st, filepath.Join(t.TempDir(), "audio"), server.URL)

	if err := svc.SetAPIKey(context.Background(), "bad-key"); err == nil {
		t.Fatal("expected error for rejected key")
	}

	// Nothing was stored
	has, err := svc.HasAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("rejected key must not be persisted")
	}
}

func TestOperationsRequireAPIKey(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	svc := New(st, filepath.Join(t.TempDir(), "audio"), "http://127.0.0.1:0")

	_, err = svc.ListVoices(context.Background())
	if !errors.Is(err, util.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}

	_, err = svc.Speak(context.Background(), elevenlabs.TTSRequest{Text: "hi", VoiceID: "v1"})
	if !errors.Is(err, util.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestRemoveAPIKeyDropsClient(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.RemoveAPIKey(); err != nil {
		t.Fatalf("RemoveAPIKey failed: %v", err)
	}

	has, err := svc.HasAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("expected no key after removal")
	}

	if _, err := svc.ListVoices(context.Background()); !errors.Is(err, util.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey after removal, got %v", err)
	}
}

func TestListVoicesMirrorsProfiles(t *testing.T) {
	svc, st := newTestService(t)

	voices, err := svc.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(voices))
	}

	// Profiles were upserted into the store
	cached, err := st.GetVoiceProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 2 {
		t.Fatalf("expected 2 mirrored profiles, got %d", len(cached))
	}

	// Listing again replaces, never duplicates
	if _, err := svc.ListVoices(context.Background()); err != nil {
		t.Fatal(err)
	}
	cached, err = st.GetVoiceProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 2 {
		t.Errorf("expected 2 profiles after re-list, got %d", len(cached))
	}

	// Offline listing serves from the mirror
	offline, err := svc.ListCachedVoices()
	if err != nil {
		t.Fatal(err)
	}
	if len(offline) != 2 {
		t.Errorf("expected 2 cached voices, got %d", len(offline))
	}
}

func TestDeleteVoiceDropsMirror(t *testing.T) {
	svc, st := newTestService(t)

	if _, err := svc.ListVoices(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteVoice(context.Background(), "v2"); err != nil {
		t.Fatalf("DeleteVoice failed: %v", err)
	}

	profile, err := st.GetVoiceProfile("v2")
	if err != nil {
		t.Fatal(err)
	}
	if profile != nil {
		t.Error("expected mirror dropped after delete")
	}
}

func TestSpeakEndToEnd(t *testing.T) {
	svc, st := newTestService(t)

	record, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{
		Text:    "Hello world",
		VoiceID: "v1",
	})
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	if record.Type != cache.TTS {
		t.Errorf("expected type tts, got %s", record.Type)
	}
	if record.Prompt != "Hello world" {
		t.Errorf("expected prompt preserved, got %q", record.Prompt)
	}
	if !strings.HasSuffix(record.LocalPath, ".mp3") {
		t.Errorf("expected .mp3 file, got %s", record.LocalPath)
	}

	// 32000 bytes at 16000 bytes/s -> 2 seconds estimated
	if record.DurationSeconds != 2.0 {
		t.Errorf("expected estimated duration 2.0, got %v", record.DurationSeconds)
	}

	// The file is on disk with the response bytes
	info, err := os.Stat(record.LocalPath)
	if err != nil {
		t.Fatalf("cached file missing: %v", err)
	}
	if info.Size() != 32000 {
		t.Errorf("expected 32000 byte file, got %d", info.Size())
	}

	// Metadata names the voice used
	var meta map[string]string
	if err := json.Unmarshal(record.Metadata, &meta); err != nil {
		t.Fatalf("failed to parse metadata: %v", err)
	}
	if meta["voice_id"] != "v1" {
		t.Errorf("expected metadata voice_id v1, got %q", meta["voice_id"])
	}

	// Exactly one record of type tts exists
	records, err := st.GetAudioRecords(cache.TTS)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 tts record, got %d", len(records))
	}
	if records[0].ID != record.ID {
		t.Errorf("stored record mismatch")
	}
}

func TestGenerateSoundEffectRecordsRequestedDuration(t *testing.T) {
	svc, _ := newTestService(t)

	record, err := svc.GenerateSoundEffect(context.Background(), elevenlabs.SFXRequest{
		Text:            "door slam",
		DurationSeconds: 1.5,
	})
	if err != nil {
		t.Fatalf("GenerateSoundEffect failed: %v", err)
	}

	if record.Type != cache.SFX {
		t.Errorf("expected type sfx, got %s", record.Type)
	}
	if record.DurationSeconds != 1.5 {
		t.Errorf("expected requested duration 1.5, got %v", record.DurationSeconds)
	}
	if string(record.Metadata) != "{}" {
		t.Errorf("expected empty metadata object, got %s", record.Metadata)
	}

	if _, err := os.Stat(record.LocalPath); err != nil {
		t.Errorf("cached file missing: %v", err)
	}
}

func TestDeleteCachedAudioToleratesMissingFile(t *testing.T) {
	svc, st := newTestService(t)

	record, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{
		Text:    "ephemeral",
		VoiceID: "v1",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Someone removed the file out from under us
	if err := os.Remove(record.LocalPath); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteCachedAudio(record.ID); err != nil {
		t.Fatalf("DeleteCachedAudio should tolerate a missing file: %v", err)
	}

	got, err := st.GetAudioRecord(record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("expected record removed")
	}

	// Deleting an unknown id is also success
	if err := svc.DeleteCachedAudio("no-such-id"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestClearCacheRemovesFilesAndRecords(t *testing.T) {
	svc, st := newTestService(t)

	for i := 0; i < 2; i++ {
		if _, err := svc.GenerateSoundEffect(context.Background(), elevenlabs.SFXRequest{Text: "boom"}); err != nil {
			t.Fatal(err)
		}
	}
	keep, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{Text: "keep me", VoiceID: "v1"})
	if err != nil {
		t.Fatal(err)
	}

	files, records, err := svc.ClearCache(cache.SFX)
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if files != 2 || records != 2 {
		t.Errorf("expected 2 files and 2 records cleared, got %d/%d", files, records)
	}

	remaining, err := st.GetAudioRecords(cache.SFX)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no sfx records, got %d", len(remaining))
	}

	if _, err := os.Stat(keep.LocalPath); err != nil {
		t.Errorf("tts file should survive sfx clear: %v", err)
	}
}

func TestCacheSizeTracksSavedBytes(t *testing.T) {
	svc, _ := newTestService(t)

	before, err := svc.CacheSize()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{Text: "hi", VoiceID: "v1"}); err != nil {
		t.Fatal(err)
	}

	after, err := svc.CacheSize()
	if err != nil {
		t.Fatal(err)
	}
	if after-before != 32000 {
		t.Errorf("expected size to grow by 32000, got %d", after-before)
	}
}

func TestAuditLogRecordsGenerations(t *testing.T) {
	svc, _ := newTestService(t)

	auditDir := t.TempDir()
	logger, err := report.NewEventLogger(auditDir, report.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	svc.SetAuditLog(logger)

	record, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{Text: "audited", VoiceID: "v1"})
	if err != nil {
		t.Fatal(err)
	}
	logger.Close()

	data, err := os.ReadFile(logger.Path())
	if err != nil {
		t.Fatalf("audit log missing: %v", err)
	}

	var event report.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("invalid audit entry: %v", err)
	}
	if event.Event != report.EventSynthesize {
		t.Errorf("expected synthesize event, got %s", event.Event)
	}
	if event.RecordID != record.ID || event.VoiceID != "v1" {
		t.Errorf("unexpected audit identifiers: %+v", event)
	}
}

func TestReconcileFindsAndFixesDrift(t *testing.T) {
	svc, st := newTestService(t)

	dangling, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{Text: "gone", VoiceID: "v1"})
	if err != nil {
		t.Fatal(err)
	}
	healthy, err := svc.Speak(context.Background(), elevenlabs.TTSRequest{Text: "fine", VoiceID: "v1"})
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a crash between file write and record write: an orphan
	// file with no record, plus a record whose file was removed.
	if err := os.Remove(dangling.LocalPath); err != nil {
		t.Fatal(err)
	}
	orphan := filepath.Join(filepath.Dir(healthy.LocalPath), "orphan.mp3")
	if err := os.WriteFile(orphan, []byte("stray"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Reconcile(false)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(report.OrphanFiles) != 1 || report.OrphanFiles[0] != orphan {
		t.Errorf("expected orphan %s, got %v", orphan, report.OrphanFiles)
	}
	if len(report.DanglingRecords) != 1 || report.DanglingRecords[0] != dangling.ID {
		t.Errorf("expected dangling record %s, got %v", dangling.ID, report.DanglingRecords)
	}

	// Dry run changed nothing
	if _, err := os.Stat(orphan); err != nil {
		t.Errorf("dry run must not delete files: %v", err)
	}

	if _, err := svc.Reconcile(true); err != nil {
		t.Fatalf("Reconcile fix failed: %v", err)
	}

	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("expected orphan file removed by fix")
	}
	rec, err := st.GetAudioRecord(dangling.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Error("expected dangling record removed by fix")
	}

	// The healthy pair is untouched
	if _, err := os.Stat(healthy.LocalPath); err != nil {
		t.Errorf("healthy file should survive fix: %v", err)
	}
}
