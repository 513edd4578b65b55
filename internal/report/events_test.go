package report

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open event log: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestEventLoggerWritesJSONL(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	if err := logger.LogSynthesis("rec-1", "v1", "Hello world", 2.0, 32000, "/tmp/a.mp3"); err != nil {
		t.Fatalf("LogSynthesis failed: %v", err)
	}
	if err := logger.LogClone("v9", "Narrator", 3); err != nil {
		t.Fatalf("LogClone failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readEvents(t, logger.Path())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	if events[0].Event != EventSynthesize {
		t.Errorf("expected synthesize event, got %s", events[0].Event)
	}
	if events[0].RecordID != "rec-1" || events[0].VoiceID != "v1" {
		t.Errorf("unexpected identifiers: %+v", events[0])
	}
	if events[0].DurationSeconds != 2.0 || events[0].Bytes != 32000 {
		t.Errorf("unexpected measurements: %+v", events[0])
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be filled in")
	}

	if events[1].Event != EventClone {
		t.Errorf("expected clone event, got %s", events[1].Event)
	}
	if events[1].Extra["sample_count"] != "3" {
		t.Errorf("expected sample_count 3, got %q", events[1].Extra["sample_count"])
	}
}

func TestEventLoggerFiltersByLevel(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelWarning)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	// Info is below the threshold, warning passes
	if err := logger.LogSynthesis("rec-1", "v1", "quiet", 1.0, 100, "/tmp/a.mp3"); err != nil {
		t.Fatal(err)
	}
	if err := logger.LogDeleteVoice("v2"); err != nil {
		t.Fatal(err)
	}
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 1 {
		t.Fatalf("expected 1 event after filtering, got %d", len(events))
	}
	if events[0].Event != EventDeleteVoice {
		t.Errorf("expected delete_voice event, got %s", events[0].Event)
	}
}

func TestNullLoggerIsSafe(t *testing.T) {
	logger := NullLogger()

	if err := logger.LogSynthesis("rec", "v", "text", 1, 1, "p"); err != nil {
		t.Errorf("nil logger should no-op, got %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil logger close should no-op, got %v", err)
	}
	if logger.Path() != "" {
		t.Error("nil logger should have empty path")
	}
}
