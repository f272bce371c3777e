package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the practice session engine
type Config struct {
	// Server configuration (health + metrics endpoints)
	Port string `envconfig:"PORT" default:"8080"`

	// OpenAI API configuration
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" required:"true"`

	// Realtime speech model configuration
	RealtimeURL        string `envconfig:"REALTIME_URL" default:"wss://api.openai.com/v1/realtime"`
	RealtimeModel      string `envconfig:"REALTIME_MODEL" default:"gpt-4o-realtime-preview-2024-12-17"`
	TranscriptionModel string `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"` // user-speech transcription

	// Non-streaming chat completion endpoint (text mode + scoring)
	ChatURL          string  `envconfig:"CHAT_URL" default:"https://api.openai.com/v1/chat/completions"`
	ChatModel        string  `envconfig:"CHAT_MODEL" default:"gpt-4o"`
	ChatTemperature  float64 `envconfig:"CHAT_TEMPERATURE" default:"0.9"`
	ChatMaxTokens    int     `envconfig:"CHAT_MAX_TOKENS" default:"500"`
	ScoreTemperature float64 `envconfig:"SCORE_TEMPERATURE" default:"0.7"`

	// Audio configuration. The realtime protocol expects 16-bit mono PCM
	// at 24kHz in both directions.
	CaptureSampleRate   int `envconfig:"CAPTURE_SAMPLE_RATE" default:"24000"`
	PlaybackSampleRate  int `envconfig:"PLAYBACK_SAMPLE_RATE" default:"24000"`
	CaptureFrameSamples int `envconfig:"CAPTURE_FRAME_SAMPLES" default:"2048"` // samples per outbound frame

	// Server-side voice activity detection parameters
	VADThreshold         float64 `envconfig:"VAD_THRESHOLD" default:"0.5"`
	VADPrefixPaddingMs   int     `envconfig:"VAD_PREFIX_PADDING_MS" default:"300"`
	VADSilenceDurationMs int     `envconfig:"VAD_SILENCE_DURATION_MS" default:"700"`

	// Scoring retry policy. Retry is caller policy: the engine never
	// retries internally, the command binary does.
	ScoreMaxAttempts    int `envconfig:"SCORE_MAX_ATTEMPTS" default:"3"`
	ScoreInitialBackoff int `envconfig:"SCORE_INITIAL_BACKOFF" default:"500"` // milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.CaptureFrameSamples <= 0 {
		return nil, fmt.Errorf("CAPTURE_FRAME_SAMPLES must be positive")
	}

	return &cfg, nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
