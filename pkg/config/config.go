package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development fallback for JWT_SECRET. Release builds
// refuse to start with it.
const DefaultJWTSecret = "your-secret-key-change-in-production"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set when GIN_MODE is release")

type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Identity provider session tokens
	JWTSecret string
	JWTIssuer string

	// LLM providers
	AIProvider      string // provider for search, simplification and eligibility
	ChatProvider    string // provider for /api/chatai
	LLMTimeout      time.Duration
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiApiKey    string
	GeminiModel     string
	OllamaBaseURL   string
	OllamaModel     string

	// ClinicalTrials.gov
	CTGovBaseURL        string
	CTGovTimeout        time.Duration
	CTGovRateLimit      int
	SimplifyConcurrency int

	// Google / Firebase
	GoogleProjectID     string
	FirebaseCredentials string
	PubSubTopic         string

	// Push device tokens
	DeviceTokenMaxAge   time.Duration
	DeviceSweepInterval time.Duration

	// Caches
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration
	CacheSize   int

	// Stripe
	StripeSecretKey  string
	StripePriceID    string
	StripeSuccessURL string
	StripeCancelURL  string

	// Contact form
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ContactFrom  string
	ContactTo    string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 90*time.Second),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		AIProvider:      getEnv("AI_PROVIDER", "openai"),
		ChatProvider:    getEnv("CHAT_PROVIDER", "anthropic"),
		LLMTimeout:      getDuration("LLM_TIMEOUT", 60*time.Second),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		GeminiApiKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3"),

		CTGovBaseURL:        getEnv("CTGOV_BASE_URL", "https://clinicaltrials.gov/api/v2"),
		CTGovTimeout:        getDuration("CTGOV_TIMEOUT", 20*time.Second),
		CTGovRateLimit:      getInt("CTGOV_RATE_LIMIT", 5),
		SimplifyConcurrency: getInt("SIMPLIFY_CONCURRENCY", 1),

		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		PubSubTopic:         getEnv("PUBSUB_TOPIC", "study-saved"),

		DeviceTokenMaxAge:   getDuration("DEVICE_TOKEN_MAX_AGE", 270*24*time.Hour),
		DeviceSweepInterval: getDuration("DEVICE_SWEEP_INTERVAL", 24*time.Hour),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheTTL:    getDuration("CACHE_TTL", 6*time.Hour),
		CacheSize:   getInt("CACHE_SIZE", 2000),

		StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
		StripePriceID:    getEnv("STRIPE_PRICE_ID", ""),
		StripeSuccessURL: getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/pharmacy?checkout=success"),
		StripeCancelURL:  getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/pharmacy?checkout=cancelled"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		ContactFrom:  getEnv("CONTACT_FROM", ""),
		ContactTo:    getEnv("CONTACT_TO", ""),
	}
}

// Validate rejects settings that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.GinMode == "release" && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return ErrDefaultJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
