package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/config"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"
)

func main() {
	var module string
	var command string

	flag.StringVar(&module, "module", "docstore", "Migration set under migrations/")
	flag.StringVar(&command, "cmd", "up", "Migration command (up, down, version, force)")
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	if _, err := utils.InitLogger(utils.LogOptions{Level: cfg.LogLevel, Pretty: cfg.LogPretty}); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to init logger")
	}

	if cfg.Storage.DatabaseURL == "" {
		log.Fatal().Msg("❌ DATABASE_URL is required for migrations")
	}

	migrationPath := fmt.Sprintf("file://migrations/%s", module)

	log.Info().Str("module", module).Msg("🔄 Running migrations")
	log.Info().Str("path", migrationPath).Msg("📂 Migration path")
	log.Info().Str("database", maskDatabaseURL(cfg.Storage.DatabaseURL)).Msg("💾 Database")

	m, err := migrate.New(migrationPath, cfg.Storage.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create migrate instance")
	}
	defer m.Close()

	switch command {
	case "up":
		log.Info().Msg("⬆️  Running UP migrations...")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("❌ Migration UP failed")
		}
		log.Info().Msg("✅ Migrations UP completed!")

	case "down":
		log.Info().Msg("⬇️  Running DOWN migrations...")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("❌ Migration DOWN failed")
		}
		log.Info().Msg("✅ Migrations DOWN completed!")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("❌ Failed to get version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("📌 Current version")

	case "force":
		if flag.NArg() < 1 {
			log.Fatal().Msg("❌ Please provide version number for force command")
		}
		forceVersion, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Fatal().Err(err).Str("arg", flag.Arg(0)).Msg("❌ Invalid version number")
		}
		if err := m.Force(forceVersion); err != nil {
			log.Fatal().Err(err).Msg("❌ Force failed")
		}
		log.Info().Int("version", forceVersion).Msg("✅ Forced version")

	default:
		log.Fatal().Str("cmd", command).Msg("❌ Unknown command (use: up, down, version, force)")
	}
}

// maskDatabaseURL hides the password in the database URL for logging.
func maskDatabaseURL(url string) string {
	if len(url) < 30 {
		return "***"
	}
	return url[:20] + "***" + url[len(url)-10:]
}
