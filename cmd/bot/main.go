package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/agent"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/approval"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/audit"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/clients"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/conversation"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/export"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/maintenance"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/quote"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/stats"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/modules/status"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/modules/status/handlers"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/config"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/database"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/wa-quote-bot/cmd/bot/docs"
)

// @title WhatsApp Quote Bot API
// @version 1.0
// @description Status, catalog and exchange rate endpoints of the WhatsApp quote bot
// @host localhost:3000
// @BasePath /
func main() {
	cfg := config.MustLoad()

	logFile, err := utils.InitLogger(utils.LogOptions{
		Level:    cfg.LogLevel,
		Pretty:   cfg.LogPretty,
		FilePath: cfg.LogFile(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to init logger")
	}
	defer logFile.Close()

	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("🚀 Starting wa-quote-bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	labels := pricing.Labels{
		General:   cfg.Quote.LabelGeneral,
		Store:     cfg.Quote.LabelStore,
		Installer: cfg.Quote.LabelInstaller,
	}
	defaultTier, ok := labels.Parse(cfg.Quote.DefaultTier)
	if !ok {
		log.Warn().Str("tier", cfg.Quote.DefaultTier).Msg("⚠️ Unknown DEFAULT_CLIENT_TYPE, using general")
		defaultTier = pricing.TierGeneral
	}

	// Storage
	var (
		docs      docstore.Store
		auditSink audit.Sink
	)
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewDB(cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to connect database")
		}
		defer db.Close()
		docs = docstore.NewPostgresStore(db.GORM)
		auditSink = audit.NewGormSink(db.GORM)
	default:
		fileDocs, err := docstore.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to open data directory")
		}
		docs = fileDocs
		fileSink, err := audit.NewFileSink(cfg.AuditFile())
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to open audit log")
		}
		auditSink = fileSink
	}
	log.Info().Str("driver", cfg.Storage.Driver).Msg("💾 Document store ready")

	var session kv.Store
	switch cfg.KV.Driver {
	case "redis":
		rdb, err := kv.ConnectRedis(ctx, kv.RedisConfig{Addr: cfg.KV.RedisAddr, DB: cfg.KV.RedisDB})
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to connect Redis")
		}
		defer rdb.Close()
		session = kv.NewRedisStore(rdb, "waquote")
		log.Info().Str("addr", cfg.KV.RedisAddr).Msg("✅ Redis session store connected")
	default:
		session = kv.NewMemoryStore()
		log.Info().Msg("🧠 Using in-memory session store")
	}

	tierStore, err := kv.NewDurableStore(ctx, docs, docstore.ClientData)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load client data")
	}

	// Catalog, rates and stats
	cat := catalog.New(cfg.Catalog.ExcelPath, cfg.Catalog.SheetName)
	if err := cat.Load(); err != nil {
		log.Error().Err(err).Str("path", cfg.Catalog.ExcelPath).Msg("❌ Failed to load catalog, continuing with an empty one")
	}
	resolver := pricing.NewResolver(cfg.Catalog.PriceMultiplier)

	rateCache := rates.NewCache(
		rates.NewBCVSource(cfg.Rates.SourceURL, cfg.Rates.HTTPTimeout, cfg.Rates.InsecureTLS),
		docs,
		rates.WithLocation(loc),
		rates.WithWindow(cfg.Rates.WindowStart, cfg.Rates.WindowEnd),
		rates.WithLogger(log.With().Str("component", "rates").Logger()),
	)
	if err := rateCache.Load(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Failed to load rate cache")
	}

	recorder := stats.NewRecorder(docs, cfg.Quote.StatsHistoryLimit, log.With().Str("component", "stats").Logger())
	recorder.Load(ctx)

	registry := clients.NewRegistry(tierStore, labels, defaultTier, log.With().Str("component", "clients").Logger())

	quotes := quote.NewEngine(cat, resolver, rateCache, registry, session, recorder, quote.Config{
		MaxQuantity:  cfg.Quote.MaxQuantity,
		MaxItems:     cfg.Quote.MaxItems,
		LastQuoteTTL: cfg.Quote.LastQuoteTTL,
		DefaultTier:  defaultTier,
		Labels:       labels,
		Location:     loc,
	}, log.With().Str("component", "quote").Logger())

	// WhatsApp
	provider, err := whatsapp.NewProvider(whatsapp.ProviderConfig{
		Type:       whatsapp.ProviderType(cfg.WhatsApp.Provider),
		StoreURL:   cfg.WhatsApp.StoreURL,
		SQLitePath: cfg.WhatsApp.SQLitePath,
		QRPath:     filepath.Join(cfg.Storage.DataDir, "qr.png"),
	}, log.With().Str("component", "whatsapp").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create WhatsApp provider")
	}
	wa := whatsapp.NewService(provider, log.With().Str("component", "whatsapp").Logger())
	echoes := whatsapp.NewEchoFilter(session, whatsapp.DefaultEchoTTL)
	notifier := notification.NewService(wa, echoes, log.With().Str("component", "notification").Logger())

	// Approvals
	directory, err := approval.LoadDirectory(ctx, docs)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load approvers")
	}
	if directory.Len() == 0 {
		log.Warn().Msg("⚠️ No approvers configured, tier requests and /enviar will be refused")
	}
	auditor := audit.NewService(auditSink, log.With().Str("component", "audit").Logger())
	workflow := approval.NewWorkflow(directory, session, registry, notifier, auditor, labels,
		log.With().Str("component", "approval").Logger())

	conversations := conversation.NewLogger(cfg.Storage.ConversationsDir, cfg.Maintenance.LogConversations)

	engine := agent.NewEngine(agent.Deps{
		Transport:     wa,
		Echoes:        echoes,
		Catalog:       cat,
		Resolver:      resolver,
		Quotes:        quotes,
		Clients:       registry,
		Approvals:     workflow,
		Sellers:       directory,
		Rates:         rateCache,
		Stats:         recorder,
		Conversations: conversations,
	}, agent.Config{
		Labels:      labels,
		DefaultTier: defaultTier,
		Profile: agent.Profile{
			Name:           cfg.Business.Name,
			Email:          cfg.Business.Email,
			Web:            cfg.Business.Web,
			Address:        cfg.Business.Address,
			HoursWeekdays:  cfg.Business.HoursWeekdays,
			HoursSaturday:  cfg.Business.HoursSaturday,
			HoursSunday:    cfg.Business.HoursSunday,
			CatalogVersion: cfg.Catalog.Version,
		},
		ImagesDir: cfg.Catalog.ImagesDir,
		Location:  loc,
		StartedAt: wa.StartedAt(),
	}, log.With().Str("component", "agent").Logger())

	if err := wa.StartListening(func(msg whatsapp.InboundMessage) {
		engine.HandleMessage(ctx, msg)
	}); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to register message handler")
	}
	// Connect blocks until pairing completes; the status API serves the QR
	// in the meantime.
	go func() {
		if err := wa.Connect(ctx); err != nil {
			log.Error().Err(err).Msg("❌ Failed to connect WhatsApp")
			stop()
			return
		}
		wa.StartKeepAlive(ctx)
	}()

	// Scheduled maintenance
	toolkit := maintenance.NewToolkit(maintenance.Paths{
		LogDir:           cfg.Storage.LogDir,
		ConversationsDir: cfg.Storage.ConversationsDir,
		BackupDir:        cfg.Storage.BackupDir,
		SessionPath:      cfg.WhatsApp.SQLitePath,
	}, export.NewService(), loc, log.With().Str("component", "maintenance").Logger())

	sched := scheduler.New(ctx, loc, log.With().Str("component", "scheduler").Logger())
	if err := maintenance.RegisterJobs(sched, toolkit, rateCache, maintenance.JobConfig{
		RatesWarmup:      cfg.Rates.WarmupSchedule,
		LogCleanup:       cfg.Maintenance.CleanupSchedule,
		LogRetentionDays: cfg.Maintenance.LogRetentionDays,
		Backup:           cfg.Maintenance.BackupSchedule,
		BackupEnabled:    cfg.Maintenance.BackupEnabled,
	}); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to register scheduled jobs")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP status API
	app := status.NewApp(status.Options{
		AppName:     "wa-quote-bot",
		CORSOrigins: cfg.CORSOrigins,
		Swagger:     cfg.Env != "production",
	}, status.Handlers{
		Status:   handlers.NewStatusHandler(wa),
		Products: handlers.NewProductHandler(cat, resolver),
		Rates:    handlers.NewRatesHandler(rateCache),
		WhatsApp: handlers.NewWhatsAppHandler(wa),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("🌐 Status server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("❌ Status server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Status server shutdown failed")
	}
	wa.Disconnect()
	log.Info().Msg("Goodbye 👋")
}
