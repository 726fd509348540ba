package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

// initStore opens the whatsmeow device store: Postgres when a DSN is
// configured, otherwise a local SQLite file.
func (w *WhatsmeowProvider) initStore(ctx context.Context) (*sqlstore.Container, error) {
	dbLog := waLog.Zerolog(w.logger.With().Str("module", "whatsapp-store").Logger())

	if w.cfg.StoreURL != "" {
		w.logger.Info().Msg("🌐 Using PostgreSQL database for WhatsApp store")
		container, err := sqlstore.New(ctx, "postgres", w.cfg.StoreURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("upgrade PostgreSQL schema: %w", err)
		}
		return container, nil
	}

	path := w.cfg.SQLitePath
	if path == "" {
		path = "store.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	w.logger.Info().Str("path", path).Msg("💾 Using local SQLite store")
	rawDB, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err = rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		w.logger.Warn().Err(err).Msg("⚠️ Failed to enable foreign_keys pragma")
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("upgrade SQLite schema: %w", err)
	}
	return container, nil
}
