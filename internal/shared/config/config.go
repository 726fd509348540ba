package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT, default=3000"`
	Env       string `env:"ENV, default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=true"`

	// CORSOrigins is a comma-separated allow-list for the status API.
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:8080,http://localhost:3000"`

	Business    BusinessConfig
	Catalog     CatalogConfig
	Quote       QuoteConfig
	Rates       RatesConfig
	Storage     StorageConfig
	KV          KVConfig
	WhatsApp    WhatsAppConfig
	Maintenance MaintenanceConfig
}

type BusinessConfig struct {
	Name          string `env:"EMPRESA_NOMBRE, default=Tu Empresa"`
	Email         string `env:"EMPRESA_EMAIL, default=contacto@tuempresa.com"`
	Web           string `env:"EMPRESA_WEB, default=www.tuempresa.com"`
	Address       string `env:"EMPRESA_DIRECCION, default=Tu dirección aquí"`
	HoursWeekdays string `env:"HORARIO_LUNES_VIERNES, default=9:00 AM - 6:00 PM"`
	HoursSaturday string `env:"HORARIO_SABADOS, default=9:00 AM - 2:00 PM"`
	HoursSunday   string `env:"HORARIO_DOMINGOS, default=Cerrado"`
	Timezone      string `env:"BUSINESS_TIMEZONE, default=America/Caracas" validate:"required"`
}

type CatalogConfig struct {
	ExcelPath       string  `env:"EXCEL_FILE_PATH"`
	SheetName       string  `env:"EXCEL_SHEET_NAME, default=Precios" validate:"required"`
	PriceMultiplier float64 `env:"PRICE_MULTIPLIER, default=1.0" validate:"gt=0"`
	Version         string  `env:"CATALOG_VERSION, default=1.0"`
	ImagesDir       string  `env:"PRODUCT_IMAGES_DIR"`
}

type QuoteConfig struct {
	DefaultTier       string        `env:"DEFAULT_CLIENT_TYPE, default=general" validate:"required"`
	LabelGeneral      string        `env:"CLIENT_TYPE_GENERAL, default=general" validate:"required"`
	LabelStore        string        `env:"CLIENT_TYPE_TIENDA, default=tienda" validate:"required"`
	LabelInstaller    string        `env:"CLIENT_TYPE_INSTALADOR, default=instalador" validate:"required"`
	MaxQuantity       int           `env:"MAX_QUOTE_QUANTITY, default=1000" validate:"gt=0"`
	MaxItems          int           `env:"MAX_QUOTE_ITEMS, default=20" validate:"gte=0"`
	LastQuoteTTL      time.Duration `env:"LAST_QUOTE_TTL, default=24h" validate:"gte=0"`
	StatsHistoryLimit int           `env:"STATS_HISTORY_LIMIT, default=10000" validate:"gte=0"`
}

type RatesConfig struct {
	SourceURL   string        `env:"RATES_SOURCE_URL, default=https://www.bcv.org.ve/" validate:"required,url"`
	WindowStart int           `env:"RATES_WINDOW_START, default=15" validate:"gte=0,lte=23"`
	WindowEnd   int           `env:"RATES_WINDOW_END, default=18" validate:"gtfield=WindowStart,lte=24"`
	HTTPTimeout time.Duration `env:"RATES_HTTP_TIMEOUT, default=20s"`
	// The BCV site has served an incomplete certificate chain for years.
	InsecureTLS    bool   `env:"RATES_INSECURE_TLS, default=true"`
	WarmupSchedule string `env:"RATES_WARMUP_SCHEDULE, default=0 */15 15-17 * * *"`
}

type StorageConfig struct {
	Driver           string `env:"STORAGE_DRIVER, default=file" validate:"oneof=file postgres"`
	DatabaseURL      string `env:"DATABASE_URL" validate:"required_if=Driver postgres"`
	DataDir          string `env:"DATA_DIR, default=data" validate:"required"`
	LogDir           string `env:"LOG_DIR"`
	ConversationsDir string `env:"CONVERSATIONS_DIR"`
	BackupDir        string `env:"BACKUP_DIR"`
}

type KVConfig struct {
	Driver    string `env:"KV_DRIVER, default=memory" validate:"oneof=memory redis"`
	RedisAddr string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB   int    `env:"REDIS_DB, default=0"`
}

type WhatsAppConfig struct {
	Provider   string `env:"WHATSAPP_PROVIDER, default=whatsmeow" validate:"oneof=whatsmeow"`
	StoreURL   string `env:"WHATSAPP_STORE_URL"`
	SQLitePath string `env:"WHATSAPP_SQLITE_PATH"`
}

type MaintenanceConfig struct {
	LogConversations bool   `env:"LOG_CONVERSATIONS, default=true"`
	BackupEnabled    bool   `env:"BACKUP_ENABLED, default=false"`
	BackupSchedule   string `env:"BACKUP_SCHEDULE, default=0 30 23 * * *"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS, default=7" validate:"gte=0"`
	CleanupSchedule  string `env:"LOG_CLEANUP_SCHEDULE, default=0 0 3 * * *"`
}

// Load reads .env (if any) and the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds the config from an arbitrary lookuper (tests use a map).
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Business.Timezone); err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.Business.Timezone, err)
	}
	return &cfg, nil
}

// MustLoad is Load for binaries: it exits on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	return cfg
}

func (c *Config) applyDefaults() {
	data := c.Storage.DataDir
	if c.Storage.LogDir == "" {
		c.Storage.LogDir = filepath.Join(data, "logs")
	}
	if c.Storage.ConversationsDir == "" {
		c.Storage.ConversationsDir = filepath.Join(data, "conversations")
	}
	if c.Storage.BackupDir == "" {
		c.Storage.BackupDir = filepath.Join(data, "backups")
	}
	if c.Catalog.ExcelPath == "" {
		c.Catalog.ExcelPath = filepath.Join(data, "TablaProductos.xlsx")
	}
	if c.Catalog.ImagesDir == "" {
		c.Catalog.ImagesDir = filepath.Join(data, "product_images")
	}
	if c.WhatsApp.SQLitePath == "" {
		c.WhatsApp.SQLitePath = filepath.Join(data, "store.db")
	}
	if c.WhatsApp.StoreURL == "" && c.Storage.Driver == "postgres" {
		// Default to main database if not specified
		c.WhatsApp.StoreURL = c.Storage.DatabaseURL
	}
}

// Location returns the business time zone. Load already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogFile is where the bot appends its own log lines.
func (c *Config) LogFile() string {
	return filepath.Join(c.Storage.LogDir, "chatbot.log")
}

// AuditFile is the JSON lines audit trail used with the file storage driver.
func (c *Config) AuditFile() string {
	return filepath.Join(c.Storage.LogDir, "audit.jsonl")
}
