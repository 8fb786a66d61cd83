package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Persistence backends understood by the blob store factory.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	SQLite        SQLiteConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Academic      AcademicConfig
	Persistence   PersistenceConfig
	Seed          SeedConfig
	Exports       ExportsConfig
	Metrics       MetricsConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// SQLiteConfig points at the embedded database file used for device-local persistence.
type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AcademicConfig anchors week parity. The epoch is September 1 of Year in Location.
type AcademicConfig struct {
	Year     int
	Timezone string
}

// Location resolves the configured timezone, falling back to UTC.
func (a AcademicConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Epoch returns midnight of September 1 of the academic year.
func (a AcademicConfig) Epoch() time.Time {
	return time.Date(a.Year, time.September, 1, 0, 0, 0, 0, a.Location())
}

// PersistenceConfig selects where store snapshots are written.
type PersistenceConfig struct {
	Backend    string
	Dir        string
	KeyPrefix  string
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// SeedConfig controls fixture generation for empty stores at boot.
type SeedConfig struct {
	Enabled bool
	Value   int64
}

// ExportsConfig configures timetable exports and their signed download links.
type ExportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
	PDFFontPath     string
}

// NotificationsConfig selects how users without a faculty or group are matched
// by targeted notifications: "lenient" or "strict".
type NotificationsConfig struct {
	Targeting string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.SQLite = SQLiteConfig{Path: v.GetString("SQLITE_PATH")}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Academic = AcademicConfig{
		Year:     v.GetInt("ACADEMIC_YEAR"),
		Timezone: v.GetString("ACADEMIC_TIMEZONE"),
	}

	cfg.Persistence = PersistenceConfig{
		Backend:    strings.ToLower(v.GetString("PERSISTENCE_BACKEND")),
		Dir:        v.GetString("PERSISTENCE_DIR"),
		KeyPrefix:  v.GetString("PERSISTENCE_KEY_PREFIX"),
		Workers:    v.GetInt("PERSISTENCE_WORKERS"),
		Retries:    v.GetInt("PERSISTENCE_RETRIES"),
		RetryDelay: parseDuration(v.GetString("PERSISTENCE_RETRY_DELAY"), time.Second),
	}

	cfg.Seed = SeedConfig{
		Enabled: v.GetBool("SEED_ENABLED"),
		Value:   v.GetInt64("SEED_VALUE"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), 30*time.Minute),
		PDFFontPath:     v.GetString("EXPORTS_PDF_FONT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Notifications = NotificationsConfig{Targeting: strings.ToLower(v.GetString("NOTIFICATION_TARGETING"))}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "unischedule")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("SQLITE_PATH", "./data/unischedule.db")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "unischedule-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ACADEMIC_YEAR", 2024)
	v.SetDefault("ACADEMIC_TIMEZONE", "UTC")

	v.SetDefault("PERSISTENCE_BACKEND", BackendMemory)
	v.SetDefault("PERSISTENCE_DIR", "./data/stores")
	v.SetDefault("PERSISTENCE_KEY_PREFIX", "unischedule")
	v.SetDefault("PERSISTENCE_WORKERS", 1)
	v.SetDefault("PERSISTENCE_RETRIES", 3)
	v.SetDefault("PERSISTENCE_RETRY_DELAY", "1s")

	v.SetDefault("SEED_ENABLED", false)
	v.SetDefault("SEED_VALUE", 20240901)

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "30m")
	v.SetDefault("EXPORTS_PDF_FONT", "")

	v.SetDefault("NOTIFICATION_TARGETING", "lenient")

	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
