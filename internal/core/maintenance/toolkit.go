// Package maintenance holds the housekeeping tasks shared by the botutil
// CLI and the scheduled jobs: stats, log cleanup, conversation export,
// session reset and backups.
package maintenance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/conversation"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/export"
)

// Paths are the directories the toolkit works on.
type Paths struct {
	LogDir           string
	ConversationsDir string
	BackupDir        string
	// SessionPath is the whatsmeow SQLite store.
	SessionPath string
}

// Report is what Stats returns.
type Report struct {
	LogFiles       int  `json:"logFiles"`
	Conversations  int  `json:"conversations"`
	Messages       int  `json:"messages"`
	SessionPresent bool `json:"sessionPresent"`
}

type Toolkit struct {
	paths    Paths
	exporter *export.Service
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

func NewToolkit(paths Paths, exporter *export.Service, loc *time.Location, logger zerolog.Logger) *Toolkit {
	if loc == nil {
		loc = time.UTC
	}
	return &Toolkit{paths: paths, exporter: exporter, loc: loc, now: time.Now, logger: logger}
}

// Stats counts log files, conversations and messages, and checks for a
// WhatsApp session.
func (t *Toolkit) Stats() (Report, error) {
	var r Report

	logs, err := os.ReadDir(t.paths.LogDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return r, fmt.Errorf("read log dir: %w", err)
	default:
		r.LogFiles = len(logs)
	}

	all, err := conversation.LoadAll(t.paths.ConversationsDir)
	if err != nil {
		return r, err
	}
	r.Conversations = len(all)
	for _, entries := range all {
		r.Messages += len(entries)
	}

	if _, err := os.Stat(t.paths.SessionPath); err == nil {
		r.SessionPresent = true
	}
	return r, nil
}

// CleanOldLogs deletes log files last modified more than days ago.
func (t *Toolkit) CleanOldLogs(days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("days must not be negative")
	}
	files, err := os.ReadDir(t.paths.LogDir)
	if errors.Is(err, fs.ErrNotExist) {
		t.logger.Info().Msg("📭 No logs to clean")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read log dir: %w", err)
	}

	cutoff := t.now().AddDate(0, 0, -days)
	cleaned := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(t.paths.LogDir, f.Name())); err != nil {
				t.logger.Warn().Err(err).Str("file", f.Name()).Msg("⚠️ Could not remove log file")
				continue
			}
			cleaned++
		}
	}

	t.logger.Info().Int("removed", cleaned).Int("days", days).Msg("✅ Old logs cleaned")
	return cleaned, nil
}

// ExportConversations writes every conversation to out, as Excel when the
// name ends in .xlsx and JSON otherwise. It returns the number exported.
func (t *Toolkit) ExportConversations(out string) (int, error) {
	all, err := conversation.LoadAll(t.paths.ConversationsDir)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		t.logger.Info().Msg("📭 No conversations to export")
		return 0, nil
	}

	data := export.Conversations(all, t.loc, t.now())
	body, _, err := t.exporter.Export(data, export.FormatFor(out))
	if err != nil {
		return 0, err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}

	t.logger.Info().Int("conversations", len(all)).Str("file", out).Msg("✅ Conversations exported")
	return len(all), nil
}

// ClearSession removes the WhatsApp session store so the next start asks
// for a new QR scan. It reports whether anything was removed.
func (t *Toolkit) ClearSession() (bool, error) {
	removed := false
	for _, p := range []string{t.paths.SessionPath, t.paths.SessionPath + "-wal", t.paths.SessionPath + "-shm"} {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return removed, fmt.Errorf("remove %s: %w", p, err)
		}
	}
	if removed {
		t.logger.Info().Msg("✅ WhatsApp session cleared, a new QR scan will be needed")
	} else {
		t.logger.Info().Msg("ℹ️ No session to clear")
	}
	return removed, nil
}
