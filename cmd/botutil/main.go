// Command botutil runs the bot's offline maintenance tasks: statistics, log
// cleanup, conversation export, session reset, backups and the audit trail.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/audit"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/export"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/maintenance"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/stats"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/config"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/database"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"
)

const (
	defaultRetentionDays = 7
	defaultExportFile    = "conversations_export.json"
	auditHistoryLimit    = 50
	statsDays            = 7
)

const helpText = `
🤖 UTILIDADES DEL BOT DE WHATSAPP

Comandos disponibles:
  botutil stats            - Mostrar estadísticas del bot
  botutil clean            - Limpiar logs antiguos (7 días)
  botutil clean [días]     - Limpiar logs más antiguos que X días
  botutil export           - Exportar conversaciones
  botutil export [archivo] - Exportar a archivo específico (.json o .xlsx)
  botutil clear-session    - Limpiar sesión de WhatsApp
  botutil backup           - Crear backup completo
  botutil audit [número]   - Mostrar el historial de cambios de tipo de cliente
  botutil help             - Mostrar esta ayuda

Ejemplos:
  botutil stats
  botutil clean 30
  botutil export mis_conversaciones.json
`

func main() {
	cfg := config.MustLoad()
	if _, err := utils.InitLogger(utils.LogOptions{Level: cfg.LogLevel, Pretty: true}); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to init logger")
	}

	toolkit := maintenance.NewToolkit(maintenance.Paths{
		LogDir:           cfg.Storage.LogDir,
		ConversationsDir: cfg.Storage.ConversationsDir,
		BackupDir:        cfg.Storage.BackupDir,
		SessionPath:      cfg.WhatsApp.SQLitePath,
	}, export.NewService(), cfg.Location(), log.Logger)

	var command string
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	arg := func() string {
		if len(os.Args) > 2 {
			return os.Args[2]
		}
		return ""
	}

	var err error
	switch command {
	case "stats":
		err = showStats(cfg, toolkit)
	case "clean":
		days, convErr := strconv.Atoi(arg())
		if convErr != nil || days <= 0 {
			days = defaultRetentionDays
		}
		err = cleanLogs(toolkit, days)
	case "export":
		out := arg()
		if out == "" {
			out = defaultExportFile
		}
		err = exportConversations(toolkit, out)
	case "clear-session":
		err = clearSession(toolkit)
	case "backup":
		err = backup(toolkit)
	case "audit":
		err = showAudit(cfg, arg())
	default:
		fmt.Print(helpText)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("❌ Command failed")
	}
}

func showStats(cfg *config.Config, t *maintenance.Toolkit) error {
	r, err := t.Stats()
	if err != nil {
		return err
	}
	session := "No encontrada"
	if r.SessionPresent {
		session = "Activa"
	}
	fmt.Println("\n📊 ESTADÍSTICAS DEL BOT")
	fmt.Printf("📝 Archivos de log: %d\n", r.LogFiles)
	fmt.Printf("💬 Conversaciones únicas: %d\n", r.Conversations)
	fmt.Printf("📨 Total de mensajes: %d\n", r.Messages)
	fmt.Printf("🔐 Sesión de WhatsApp: %s\n", session)

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	var quotes stats.Stats
	if _, err := st.docs.Load(context.Background(), docstore.BotStats, &quotes); err != nil {
		return err
	}
	fmt.Printf("🧾 Cotizaciones: %d (código: %d, divisas: %d)\n", quotes.TotalQuotes, quotes.CodigoQuotes, quotes.DivisasQuotes)
	for _, d := range stats.Daily(quotes.QuoteHistory, time.Now().In(cfg.Location()), statsDays) {
		fmt.Printf("   %s  %3d\n", d.Day.Format("02/01/2006"), d.Total())
	}
	fmt.Println()
	return nil
}

type storage struct {
	docs  docstore.Store
	audit audit.Sink
	close func()
}

// openStorage opens the document store and audit sink selected by
// STORAGE_DRIVER.
func openStorage(cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == "postgres" {
		db, err := database.NewDB(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &storage{
			docs:  docstore.NewPostgresStore(db.GORM),
			audit: audit.NewGormSink(db.GORM),
			close: func() { _ = db.Close() },
		}, nil
	}

	docs, err := docstore.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	sink, err := audit.NewFileSink(cfg.AuditFile())
	if err != nil {
		return nil, err
	}
	return &storage{docs: docs, audit: sink, close: func() {}}, nil
}

func cleanLogs(t *maintenance.Toolkit, days int) error {
	n, err := t.CleanOldLogs(days)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("No hay logs para limpiar")
		return nil
	}
	fmt.Printf("✅ Limpiados %d archivos de log antiguos\n", n)
	return nil
}

func exportConversations(t *maintenance.Toolkit, out string) error {
	n, err := t.ExportConversations(out)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("No hay conversaciones para exportar")
		return nil
	}
	fmt.Printf("✅ Conversaciones exportadas a %s\n", out)
	return nil
}

func clearSession(t *maintenance.Toolkit) error {
	removed, err := t.ClearSession()
	if err != nil {
		return err
	}
	if !removed {
		fmt.Println("ℹ️  No hay sesión para limpiar")
		return nil
	}
	fmt.Println("✅ Sesión de WhatsApp limpiada")
	fmt.Println("⚠️  Necesitarás escanear el QR nuevamente")
	return nil
}

func backup(t *maintenance.Toolkit) error {
	path, err := t.Backup()
	if err != nil {
		return err
	}
	fmt.Printf("✅ Backup creado en: %s\n", path)
	return nil
}

func showAudit(cfg *config.Config, clientID string) error {
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	events, err := audit.NewService(st.audit, log.Logger).History(context.Background(), audit.Filter{
		ClientID: clientID,
		Limit:    auditHistoryLimit,
	})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No hay eventos de auditoría")
		return nil
	}

	loc := cfg.Location()
	for _, e := range events {
		line := fmt.Sprintf("%s  %-10s  %s", e.CreatedAt.In(loc).Format("2006-01-02 15:04:05"), e.Action, e.ClientID)
		if e.Tier != "" {
			line += "  → " + e.Tier
		}
		if e.ActorID != "" {
			line += "  (por " + e.ActorID + ")"
		}
		fmt.Println(line)
	}
	return nil
}
