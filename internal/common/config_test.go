package common

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENDPOINT", "https://example.cognitiveservices.azure.com/")
	t.Setenv("KEY", "secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	for _, k := range []string{"MODEL_ID", "DOCUMENT_URL", "LOCALE", "OUTPUT_PATH", "POLL_INTERVAL", "ANALYZE_TIMEOUT", "XLSX_PATH", "DB_URL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.Analysis.ModelID != "prebuilt-invoice" {
		t.Errorf("ModelID = %q, want prebuilt-invoice", cfg.Analysis.ModelID)
	}
	if cfg.Analysis.Locale != "en-US" {
		t.Errorf("Locale = %q, want en-US", cfg.Analysis.Locale)
	}
	if cfg.Output.JSONPath != "invoices_extracted.json" {
		t.Errorf("JSONPath = %q", cfg.Output.JSONPath)
	}
	if cfg.Analysis.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", cfg.Analysis.Timeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYZE_TIMEOUT", "90")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	if cfg.Analysis.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Analysis.Timeout)
	}
	if cfg.Analysis.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.Analysis.PollInterval)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cases := map[string]struct {
		endpoint, key string
		want          string
	}{
		"no endpoint":   {endpoint: "", key: "k", want: "ENDPOINT"},
		"no key":        {endpoint: "https://x.example.com", key: "", want: "KEY"},
		"blank key":     {endpoint: "https://x.example.com", key: "   ", want: "KEY"},
		"both missing":  {endpoint: "", key: "", want: "ENDPOINT"},
		"relative host": {endpoint: "not a url", key: "k", want: "absolute"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ENDPOINT", tc.endpoint)
			t.Setenv("KEY", tc.key)
			err := LoadConfig().Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want config error")
			}
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("errors.Is(err, ErrConfig) = false; err = %v", err)
			}
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Code != CodeConfig {
				t.Fatalf("want AppError with code %s, got %v", CodeConfig, err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate_RejectsNonPositiveTimeout(t *testing.T) {
	setRequiredEnv(t)
	cfg := LoadConfig()
	cfg.Analysis.Timeout = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ANALYZE_TIMEOUT") {
		t.Fatalf("Validate() error = %v, want ANALYZE_TIMEOUT failure", err)
	}
}

func TestValidate_ReportsMalformedEnvironment(t *testing.T) {
	cases := map[string]struct{ key, value string }{
		"timeout with unit typo": {"ANALYZE_TIMEOUT", "5min"},
		"poll interval garbage":  {"POLL_INTERVAL", "often"},
		"unknown log level":      {"LOG_LEVEL", "verbose"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)

			err := LoadConfig().Validate()
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("Validate() error = %v, want ErrConfig", err)
			}
			if !strings.Contains(err.Error(), tc.key) || !strings.Contains(err.Error(), tc.value) {
				t.Errorf("error %q should name %s=%s", err, tc.key, tc.value)
			}
		})
	}
}

func TestOverride_ClearsMalformedValue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYZE_TIMEOUT", "5min")

	cfg := LoadConfig()
	cfg.Override("ANALYZE_TIMEOUT", func(c *Config) { c.Analysis.Timeout = time.Minute })
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Analysis.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", cfg.Analysis.Timeout)
	}
}

func TestValidate_PollIntervalFloor(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POLL_INTERVAL", "250ms")
	if err := LoadConfig().Validate(); err == nil || !strings.Contains(err.Error(), "POLL_INTERVAL") {
		t.Fatalf("Validate() error = %v, want POLL_INTERVAL failure", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ENDPOINT=https://from-dotenv.example.com\nKEY=dotenv-key\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("ENDPOINT", "")
	t.Setenv("KEY", "already-set")
	// t.Setenv registered cleanup; an empty ENDPOINT still counts as set for godotenv
	os.Unsetenv("ENDPOINT")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("ENDPOINT"); got != "https://from-dotenv.example.com" {
		t.Errorf("ENDPOINT = %q", got)
	}
	if got := os.Getenv("KEY"); got != "already-set" {
		t.Errorf("KEY = %q, existing value must win", got)
	}
}
