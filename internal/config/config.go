package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Scoring      ScoringConfig
	SLA          SLAConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	EventQueue string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. Token issuance happens in
// the identity service; this service only validates bearer tokens. The
// internal verification endpoint authenticates with a bcrypt-hashed
// service key instead.
type AuthConfig struct {
	JWTSecret          string
	InternalKeyHash    string
	InternalKeyEnabled bool
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// ScoringConfig carries verification layer weights and the bounded
// timeout applied to each scoring collaborator call.
type ScoringConfig struct {
	GeofenceWeight float64
	WeatherWeight  float64
	TextWeight     float64
	ImageWeight    float64
	ReporterWeight float64
	LayerTimeout   time.Duration
}

// Weights returns the configured layer weights keyed by layer name.
func (s ScoringConfig) Weights() map[string]float64 {
	return map[string]float64{
		"geofence": s.GeofenceWeight,
		"weather":  s.WeatherWeight,
		"text":     s.TextWeight,
		"image":    s.ImageWeight,
		"reporter": s.ReporterWeight,
	}
}

// SLAConfig carries per-priority deadline windows plus the tightened
// window applied on escalation.
type SLAConfig struct {
	UrgentResponseHours   int
	UrgentResolutionHours int
	HighResponseHours     int
	HighResolutionHours   int
	MediumResponseHours   int
	MediumResolutionHours int
	LowResponseHours      int
	LowResolutionHours    int
	EscalatedWindowHours  int
}

// Table builds the domain SLA table from configured hours.
func (s SLAConfig) Table() domain.SLATable {
	hours := func(h int) time.Duration { return time.Duration(h) * time.Hour }
	return domain.SLATable{
		domain.TicketPriorityUrgent: {Response: hours(s.UrgentResponseHours), Resolution: hours(s.UrgentResolutionHours)},
		domain.TicketPriorityHigh:   {Response: hours(s.HighResponseHours), Resolution: hours(s.HighResolutionHours)},
		domain.TicketPriorityMedium: {Response: hours(s.MediumResponseHours), Resolution: hours(s.MediumResolutionHours)},
		domain.TicketPriorityLow:    {Response: hours(s.LowResponseHours), Resolution: hours(s.LowResolutionHours)},
	}
}

// EscalatedWindow returns the tightened resolution window for escalations.
func (s SLAConfig) EscalatedWindow() time.Duration {
	return time.Duration(s.EscalatedWindowHours) * time.Hour
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "hazard-ticket-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			EventQueue: getEnv("REDIS_EVENT_QUEUE", "hazard:events"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("AUTH_JWT_SECRET", "dev-secret"),
			InternalKeyHash:    os.Getenv("AUTH_INTERNAL_KEY_HASH"),
			InternalKeyEnabled: getEnvAsBool("AUTH_INTERNAL_KEY_ENABLED", true),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Scoring: ScoringConfig{
			GeofenceWeight: getEnvAsFloat("SCORING_GEOFENCE_WEIGHT", 0.20),
			WeatherWeight:  getEnvAsFloat("SCORING_WEATHER_WEIGHT", 0.25),
			TextWeight:     getEnvAsFloat("SCORING_TEXT_WEIGHT", 0.25),
			ImageWeight:    getEnvAsFloat("SCORING_IMAGE_WEIGHT", 0.20),
			ReporterWeight: getEnvAsFloat("SCORING_REPORTER_WEIGHT", 0.10),
			LayerTimeout:   time.Duration(getEnvAsInt("SCORING_LAYER_TIMEOUT_MS", 2000)) * time.Millisecond,
		},
		SLA: SLAConfig{
			UrgentResponseHours:   getEnvAsInt("SLA_URGENT_RESPONSE_HOURS", 1),
			UrgentResolutionHours: getEnvAsInt("SLA_URGENT_RESOLUTION_HOURS", 12),
			HighResponseHours:     getEnvAsInt("SLA_HIGH_RESPONSE_HOURS", 4),
			HighResolutionHours:   getEnvAsInt("SLA_HIGH_RESOLUTION_HOURS", 24),
			MediumResponseHours:   getEnvAsInt("SLA_MEDIUM_RESPONSE_HOURS", 8),
			MediumResolutionHours: getEnvAsInt("SLA_MEDIUM_RESOLUTION_HOURS", 72),
			LowResponseHours:      getEnvAsInt("SLA_LOW_RESPONSE_HOURS", 24),
			LowResolutionHours:    getEnvAsInt("SLA_LOW_RESOLUTION_HOURS", 168),
			EscalatedWindowHours:  getEnvAsInt("SLA_ESCALATED_WINDOW_HOURS", 24),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
