package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderStub   = "stub"

	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	DefaultPrompt         = "Describe the image concisely."
)

// Config holds all configuration for the caption relay service
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins []string
	MaxUploadBytes int64

	// Gemini configuration
	GeminiAPIKey   string
	GeminiEndpoint string
	RequestTimeout time.Duration
	DefaultPrompt  string

	// Which captioning backend to use: "gemini" or "stub"
	LLMProvider string

	// Logging
	LogLevel  string
	LogFormat string
}

// fileValues mirrors the optional YAML config file. Environment variables
// take precedence over anything set here.
type fileValues struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
	MaxUploadBytes string `yaml:"max_upload_bytes"`
	GeminiAPIKey   string `yaml:"gemini_api_key"`
	GeminiEndpoint string `yaml:"gemini_endpoint"`
	RequestTimeout string `yaml:"request_timeout"`
	DefaultPrompt  string `yaml:"default_prompt"`
	LLMProvider    string `yaml:"llm_provider"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

// Load loads configuration from environment variables. When CONFIG_FILE
// points to a YAML file, its values are used as defaults.
func Load() (*Config, error) {
	var fv fileValues
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &fv); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config := &Config{
		// Server defaults
		Port:           getEnv("PORT", or(fv.Port, "8080")),
		AllowedOrigins: getStringSliceEnv("ALLOWED_ORIGINS", or(fv.AllowedOrigins, "*")),
		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", atoiOr(fv.MaxUploadBytes, 20<<20))),

		// Gemini defaults
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", fv.GeminiAPIKey),
		GeminiEndpoint: getEnv("GEMINI_ENDPOINT", or(fv.GeminiEndpoint, DefaultGeminiEndpoint)),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", durationOr(fv.RequestTimeout, 60*time.Second)),
		DefaultPrompt:  getEnv("DEFAULT_PROMPT", or(fv.DefaultPrompt, DefaultPrompt)),

		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", or(fv.LLMProvider, ProviderGemini))),

		// Logging defaults
		LogLevel:  getEnv("LOG_LEVEL", or(fv.LogLevel, "info")),
		LogFormat: getEnv("LOG_FORMAT", or(fv.LogFormat, "text")),
	}

	return config, nil
}

// Validate checks the settings that make the service unusable when wrong.
// A missing API key is not an error here: it is reported on every caption
// request until it is configured.
func (c *Config) Validate() error {
	u, err := url.Parse(c.GeminiEndpoint)
	if err != nil {
		return fmt.Errorf("invalid GEMINI_ENDPOINT: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid GEMINI_ENDPOINT %q: must be an absolute http(s) URL", c.GeminiEndpoint)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderStub:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getStringSliceEnv gets a comma-separated environment variable as a slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func atoiOr(value string, fallback int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}

func durationOr(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}
