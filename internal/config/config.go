package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Session       SessionConfig
	Routing       RoutingConfig
	Clarification ClarificationConfig
	Idempotency   IdempotencyConfig
	Recovery      RecoveryConfig
	Classifier    ClassifierConfig
	Gateway       GatewayConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// SessionConfig governs when an existing active session is reused versus
// retired and replaced.
type SessionConfig struct {
	InactivityThreshold time.Duration
	OvernightBoundary   bool
	TurnWindowSize      int
}

// RoutingConfig carries the empirically tuned intent-routing knobs. These
// were calibrated against production traffic; change defaults via env, not
// in code.
type RoutingConfig struct {
	FastPathThreshold  float64
	MinConfidence      float64
	ClarifyEpsilon     float64
	ContinuationMargin float64
	RecentActivityMax  time.Duration
	PriorityTiers      map[string]int
}

type ClarificationConfig struct {
	TTL time.Duration
}

type IdempotencyConfig struct {
	TTL time.Duration
}

type RecoveryConfig struct {
	Threshold time.Duration
	SweepSpec string // cron spec for recurring sweeps
}

type ClassifierConfig struct {
	Provider string // "ollama" or "openai"
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

type GatewayConfig struct {
	OutboundURL string
	Token       string
	Timeout     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			InactivityThreshold: getEnvAsDuration("SESSION_INACTIVITY_THRESHOLD", 4*time.Hour),
			OvernightBoundary:   getEnvAsBool("SESSION_OVERNIGHT_BOUNDARY", true),
			TurnWindowSize:      getEnvAsInt("SESSION_TURN_WINDOW", 12),
		},
		Routing: RoutingConfig{
			FastPathThreshold:  getEnvAsFloat("ROUTING_FAST_PATH_THRESHOLD", 0.80),
			MinConfidence:      getEnvAsFloat("ROUTING_MIN_CONFIDENCE", 0.55),
			ClarifyEpsilon:     getEnvAsFloat("ROUTING_CLARIFY_EPSILON", 0.10),
			ContinuationMargin: getEnvAsFloat("ROUTING_CONTINUATION_MARGIN", 0.15),
			RecentActivityMax:  getEnvAsDuration("ROUTING_RECENT_ACTIVITY_MAX", 2*time.Minute),
			PriorityTiers:      getEnvAsTierMap("ROUTING_PRIORITY_TIERS", defaultPriorityTiers),
		},
		Clarification: ClarificationConfig{
			TTL: getEnvAsDuration("CLARIFICATION_TTL", 5*time.Minute),
		},
		Idempotency: IdempotencyConfig{
			TTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Recovery: RecoveryConfig{
			Threshold: getEnvAsDuration("RECOVERY_THRESHOLD", 30*time.Minute),
			SweepSpec: getEnv("RECOVERY_SWEEP_SPEC", "@every 5m"),
		},
		Classifier: ClassifierConfig{
			Provider: getEnv("CLASSIFIER_PROVIDER", "ollama"),
			Model:    getEnv("CLASSIFIER_MODEL", "llama3"),
			BaseURL:  getEnv("CLASSIFIER_BASE_URL", "http://localhost:11434"),
			APIKey:   getEnv("CLASSIFIER_API_KEY", ""),
			Timeout:  getEnvAsDuration("CLASSIFIER_TIMEOUT", 20*time.Second),
		},
		Gateway: GatewayConfig{
			OutboundURL: getEnv("GATEWAY_OUTBOUND_URL", ""),
			Token:       getEnv("GATEWAY_TOKEN", ""),
			Timeout:     getEnvAsDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
	}
}

// defaultPriorityTiers mirrors the production tuning: critical commands at
// P0, flow continuations at P1, new flows at P2, chit-chat at the bottom.
var defaultPriorityTiers = map[string]int{
	"cancel":          0,
	"help":            0,
	"update_progress": 1,
	"provide_data":    1,
	"confirm":         1,
	"select_task":     1,
	"add_comment":     2,
	"start_task":      2,
	"create_incident": 2,
	"small_talk":      4,
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsTierMap parses "intent=tier,intent=tier" pairs.
func getEnvAsTierMap(key string, fallback map[string]int) map[string]int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	result := make(map[string]int)
	for _, pair := range strings.Split(strValue, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		tier, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		result[parts[0]] = tier
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
