// Package config handles loading and validating the cropadvisory configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAllowedOrigins are the local frontend dev servers (Vite and CRA).
const DefaultAllowedOrigins = "http://localhost:5173,http://localhost:3000"

// ErrMissingAPIKey is returned by Load when no OpenAI credential is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set in environment or .env")

// Config is the root configuration for the cropadvisory gateway.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig holds listener settings for the API and health servers.
type ServerConfig struct {
	Port           int   `mapstructure:"port"`
	HealthPort     int   `mapstructure:"health_port"`
	GRPCHealthPort int   `mapstructure:"grpc_health_port"` // 0 disables the gRPC health service
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	CompletionModel    string        `mapstructure:"completion_model"`
	TranscriptionModel string        `mapstructure:"transcription_model"`
	MaxTokens          int           `mapstructure:"max_tokens"`
	Temperature        float64       `mapstructure:"temperature"`
	Timeout            time.Duration `mapstructure:"timeout"` // 0 leaves the HTTP transport default
}

// TranscriptionConfig controls where uploaded audio is staged.
type TranscriptionConfig struct {
	TempDir string `mapstructure:"temp_dir"` // empty uses os.TempDir
}

// CORSConfig holds the raw comma-separated origin list.
type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// Origins returns the parsed origin list. An empty result means every origin is allowed.
func (c CORSConfig) Origins() []string {
	return ParseOrigins(c.AllowedOrigins)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from .env, file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./cropadvisory.yaml, ./configs/cropadvisory.yaml, /etc/cropadvisory/cropadvisory.yaml.
//
// A missing OpenAI API key is reported as ErrMissingAPIKey so the caller can
// refuse to start.
func Load(configFile string) (*Config, error) {
	// .env is optional; variables already in the environment take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_health_port", 50051)
	v.SetDefault("server.max_upload_bytes", 25<<20)
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.completion_model", "gpt-4o-mini")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("openai.max_tokens", 450)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("openai.timeout", 0)
	v.SetDefault("transcription.temp_dir", "")
	v.SetDefault("cors.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cropadvisory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/cropadvisory")
	}

	// Environment variables: CROPADVISORY_SERVER_PORT, CROPADVISORY_OPENAI_COMPLETION_MODEL, etc.
	v.SetEnvPrefix("CROPADVISORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// ALLOWED_ORIGINS="" is meaningful (allow all), so empty values must not fall back to defaults.
	v.AllowEmptyEnv(true)

	// The two variables the frontend deployment documents are also read unprefixed.
	if err := v.BindEnv("openai.api_key", "CROPADVISORY_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}
	if err := v.BindEnv("cors.allowed_origins", "CROPADVISORY_CORS_ALLOWED_ORIGINS", "ALLOWED_ORIGINS"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.OpenAI.APIKey = resolveEnvRef(cfg.OpenAI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the gateway cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.HealthPort <= 0 {
		return fmt.Errorf("invalid server.health_port %d", c.Server.HealthPort)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid server.max_upload_bytes %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// ParseOrigins splits a comma-separated origin list, trimming entries and
// dropping blanks.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unresolved reference yields "", so it fails validation like a missing value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
