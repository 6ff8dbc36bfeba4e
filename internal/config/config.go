package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by LOGOS_ENV (or .env by default),
// then loads the corresponding .secret sidecar if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("LOGOS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// CompletionProvider returns the configured completion provider.
// Defaults to "anthropic" if not set. Valid values: anthropic, openai, mock.
func CompletionProvider() string {
	p := os.Getenv("COMPLETION_PROVIDER")
	if p == "" {
		return "anthropic"
	}
	return p
}

// CompletionAPIKey returns the API key for the configured completion provider.
func CompletionAPIKey() string {
	switch CompletionProvider() {
	case "openai":
		return OpenAIAPIKey()
	case "mock":
		return ""
	default:
		return AnthropicAPIKey()
	}
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set. Valid values: openai, mock.
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// StripeWebhookSecret is the signing secret used to verify incoming
// payment webhooks. Webhook intake is disabled when empty.
func StripeWebhookSecret() string {
	return os.Getenv("STRIPE_WEBHOOK_SECRET")
}

// PlatformFeeBasisPoints is the marketplace fee taken from each sale.
// Defaults to 250 (2.5%).
func PlatformFeeBasisPoints() int {
	bp, err := strconv.Atoi(os.Getenv("PLATFORM_FEE_BP"))
	if err != nil || bp < 0 || bp > 10000 {
		return 250
	}
	return bp
}

// RateLimitRPS returns requests per second limit. Defaults to 100.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting. Defaults to 20.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// WhitelabelCacheMB returns the in-process cache budget for branding
// configs, in megabytes. Defaults to 16.
func WhitelabelCacheMB() int64 {
	mb, err := strconv.ParseInt(os.Getenv("WHITELABEL_CACHE_MB"), 10, 64)
	if err != nil || mb <= 0 {
		return 16
	}
	return mb
}

// LogLevel returns the log level (debug, info, warn, error). Defaults to "info".
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
