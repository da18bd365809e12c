package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "ALLOWED_ORIGINS", "MAX_UPLOAD_BYTES",
		"GEMINI_API_KEY", "GEMINI_ENDPOINT", "REQUEST_TIMEOUT", "DEFAULT_PROMPT",
		"LLM_PROVIDER", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "", cfg.GeminiAPIKey)
	assert.Equal(t, DefaultGeminiEndpoint, cfg.GeminiEndpoint)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "Describe the image concisely.", cfg.DefaultPrompt)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_ENDPOINT", "http://localhost:1234/generate")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("LLM_PROVIDER", "STUB")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, "http://localhost:1234/generate", cfg.GeminiEndpoint)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, ProviderStub, cfg.LLMProvider)
}

func TestLoad_ConfigFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "relay.yaml")
	content := []byte(`
port: "7000"
gemini_api_key: from-file
request_timeout: 15s
default_prompt: What is in this picture?
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Port)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "What is in this picture?", cfg.DefaultPrompt)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GeminiEndpoint: DefaultGeminiEndpoint,
			RequestTimeout: time.Minute,
			MaxUploadBytes: 1024,
			LLMProvider:    ProviderGemini,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing api key is allowed", func(c *Config) { c.GeminiAPIKey = "" }, false},
		{"relative endpoint", func(c *Config) { c.GeminiEndpoint = "/generate" }, true},
		{"ftp endpoint", func(c *Config) { c.GeminiEndpoint = "ftp://example.com/x" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, true},
		{"unknown provider", func(c *Config) { c.LLMProvider = "openai" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
