package event

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/stretchkit/progression/internal/logger"
)

// DeadLetterSchemaVersion tags each entry so the JSONL log can be migrated
// if the entry shape ever changes.
const DeadLetterSchemaVersion = "1.0"

// deadLetterFileMode keeps the log operator-readable without being
// world-writable.
const deadLetterFileMode os.FileMode = 0644

// DeadLetterEntry is one line of the JSONL log: a progression event that
// exhausted its publish retries, with enough context to replay it by hand.
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Event         Event     `json:"event"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
}

// DeadLetterWriter appends exhausted events to a JSONL file so a level-up,
// unlock or streak notification is never silently lost when delivery fails.
type DeadLetterWriter struct {
	file *os.File
	mu   sync.Mutex
}

// NewDeadLetterWriter opens (or creates) the dead-letter log at path.
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, deadLetterFileMode)
	if err != nil {
		return nil, fmt.Errorf("open dead-letter log: %w", err)
	}
	return &DeadLetterWriter{file: f}, nil
}

// Write appends one entry. Safe for concurrent publishers.
func (w *DeadLetterWriter) Write(event Event, attempts int, lastError error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Timestamp:     time.Now(),
		Event:         event,
		Attempts:      attempts,
	}
	if lastError != nil {
		entry.LastError = lastError.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode dead-letter entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	logger.FromContext(context.Background()).Warn("Progression event dead-lettered",
		"event_type", event.Type,
		"attempts", attempts,
		"error", entry.LastError)

	_, err = w.file.Write(append(data, '\n'))
	return err
}

// Close closes the underlying log file.
func (w *DeadLetterWriter) Close() error {
	return w.file.Close()
}
