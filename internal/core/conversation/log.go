// Package conversation keeps a per-contact JSON log of every exchanged
// message.
package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one logged message.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Contact     string    `json:"contact"`
	Message     string    `json:"message"`
	IsFromBot   bool      `json:"isFromBot"`
	MessageType string    `json:"messageType"`
}

// Logger appends entries to <dir>/<number>.json. A disabled logger is a no-op.
type Logger struct {
	dir     string
	enabled bool
	now     func() time.Time

	mu sync.Mutex
}

func NewLogger(dir string, enabled bool) *Logger {
	return &Logger{dir: dir, enabled: enabled, now: time.Now}
}

func (l *Logger) Enabled() bool {
	return l.enabled
}

// Append adds one message to the contact's file.
func (l *Logger) Append(number, contact, message string, fromBot bool, messageType string) error {
	if !l.enabled {
		return nil
	}
	if contact == "" {
		contact = number
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create conversations dir: %w", err)
	}

	path := filepath.Join(l.dir, fileName(number))
	entries, err := readFile(path)
	if err != nil {
		return err
	}
	entries = append(entries, Entry{
		Timestamp:   l.now().UTC(),
		Contact:     contact,
		Message:     message,
		IsFromBot:   fromBot,
		MessageType: messageType,
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write conversation: %w", err)
	}
	return nil
}

func fileName(number string) string {
	return strings.TrimPrefix(number, "+") + ".json"
}

func readFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// LoadAll reads every conversation file in dir, keyed by number. A missing
// directory yields an empty map.
func LoadAll(dir string) (map[string][]Entry, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read conversations dir: %w", err)
	}

	out := make(map[string][]Entry, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entries, err := readFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(f.Name(), ".json")] = entries
	}
	return out, nil
}

// Numbers returns the keys of all in sorted order.
func Numbers(all map[string][]Entry) []string {
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
