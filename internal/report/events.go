// Package report writes an append-only JSONL audit log of remote API
// operations. Every synthesis and clone consumes paid quota, so the log
// is the record of where the quota went.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventSynthesize  EventType = "synthesize"
	EventSoundEffect EventType = "sound_effect"
	EventClone       EventType = "clone"
	EventDeleteVoice EventType = "delete_voice"
	EventCacheClear  EventType = "cache_clear"
	EventCacheDelete EventType = "cache_delete"
	EventError       EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event is a single audit entry
type Event struct {
	Timestamp       time.Time         `json:"ts"`
	Level           EventLevel        `json:"level"`
	Event           EventType         `json:"event"`
	RecordID        string            `json:"record_id,omitempty"`
	VoiceID         string            `json:"voice_id,omitempty"`
	Prompt          string            `json:"prompt,omitempty"`
	DurationSeconds float64           `json:"duration_seconds,omitempty"`
	Bytes           int64             `json:"bytes,omitempty"`
	Path            string            `json:"path,omitempty"`
	Error           string            `json:"error,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("audit-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Open file for writing
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	// Filter by minimum level
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil // Skip events below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogSynthesis records a completed speech generation
func (l *EventLogger) LogSynthesis(recordID, voiceID, prompt string, durationSeconds float64, bytes int64, path string) error {
	return l.Log(&Event{
		Level:           LevelInfo,
		Event:           EventSynthesize,
		RecordID:        recordID,
		VoiceID:         voiceID,
		Prompt:          prompt,
		DurationSeconds: durationSeconds,
		Bytes:           bytes,
		Path:            path,
	})
}

// LogSoundEffect records a completed sound effect generation
func (l *EventLogger) LogSoundEffect(recordID, prompt string, durationSeconds float64, bytes int64, path string) error {
	return l.Log(&Event{
		Level:           LevelInfo,
		Event:           EventSoundEffect,
		RecordID:        recordID,
		Prompt:          prompt,
		DurationSeconds: durationSeconds,
		Bytes:           bytes,
		Path:            path,
	})
}

// LogClone records a voice clone, including the sample count that was
// uploaded
func (l *EventLogger) LogClone(voiceID, name string, sampleCount int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventClone,
		VoiceID: voiceID,
		Extra: map[string]string{
			"name":         name,
			"sample_count": fmt.Sprintf("%d", sampleCount),
		},
	})
}

// LogDeleteVoice records a remote voice deletion
func (l *EventLogger) LogDeleteVoice(voiceID string) error {
	return l.Log(&Event{
		Level:   LevelWarning,
		Event:   EventDeleteVoice,
		VoiceID: voiceID,
	})
}

// LogCacheClear records a bulk cache wipe
func (l *EventLogger) LogCacheClear(audioType string, files, records int) error {
	return l.Log(&Event{
		Level: LevelWarning,
		Event: EventCacheClear,
		Extra: map[string]string{
			"audio_type": audioType,
			"files":      fmt.Sprintf("%d", files),
			"records":    fmt.Sprintf("%d", records),
		},
	})
}

// LogCacheDelete records a single cached generation deletion
func (l *EventLogger) LogCacheDelete(recordID string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventCacheDelete,
		RecordID: recordID,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Error: err.Error(),
	})
}

// Close closes the audit log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the audit log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
