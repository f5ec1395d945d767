package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Service  ServiceConfig
	Analysis AnalysisConfig
	Output   OutputConfig
	Database DatabaseConfig
	LogLevel slog.Level

	// values present in the environment that could not be parsed
	malformed []ValidationError
}

// ServiceConfig holds Document Intelligence connection settings
type ServiceConfig struct {
	Endpoint    string
	Key         string
	HTTPTimeout time.Duration
}

// AnalysisConfig describes the single analysis submitted per run
type AnalysisConfig struct {
	ModelID      string
	DocumentURL  string
	Locale       string
	PollInterval time.Duration
	Timeout      time.Duration
}

// OutputConfig holds output locations
type OutputConfig struct {
	JSONPath string
	XLSXPath string // empty disables the workbook
}

// DatabaseConfig holds run-history settings
type DatabaseConfig struct {
	DSN         string // empty disables history
	DialTimeout time.Duration
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return ConfigErrorf("load %s: %v", p, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables.
// Unparseable values fall back to their defaults and are reported by Validate.
func LoadConfig() *Config {
	env := &envReader{}
	cfg := &Config{
		Service: ServiceConfig{
			Endpoint:    env.str("ENDPOINT", ""),
			Key:         env.str("KEY", ""),
			HTTPTimeout: env.duration("HTTP_TIMEOUT", 30*time.Second),
		},
		Analysis: AnalysisConfig{
			ModelID:      env.str("MODEL_ID", constants.DefaultModelID),
			DocumentURL:  env.str("DOCUMENT_URL", constants.DefaultDocumentURL),
			Locale:       env.str("LOCALE", constants.DefaultLocale),
			PollInterval: env.duration("POLL_INTERVAL", time.Second),
			Timeout:      env.duration("ANALYZE_TIMEOUT", 5*time.Minute),
		},
		Output: OutputConfig{
			JSONPath: env.str("OUTPUT_PATH", constants.DefaultOutputPath),
			XLSXPath: env.str("XLSX_PATH", ""),
		},
		Database: DatabaseConfig{
			DSN:         env.str("DB_URL", ""),
			DialTimeout: env.duration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		LogLevel: env.level("LOG_LEVEL", slog.LevelInfo),
	}
	cfg.malformed = env.errs
	return cfg
}

// Override replaces a setting after loading, e.g. from a command-line flag.
// Any parse failure recorded for name is dropped since the environment value no longer applies.
func (c *Config) Override(name string, apply func(*Config)) {
	apply(c)
	kept := c.malformed[:0]
	for _, e := range c.malformed {
		if e.Field != name {
			kept = append(kept, e)
		}
	}
	c.malformed = kept
}

// envReader reads typed environment variables and remembers the ones it could not parse.
type envReader struct {
	errs []ValidationError
}

func (r *envReader) str(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	// bare integers are read as seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	r.errs = append(r.errs, ValidationError{Field: key, Value: value, Message: "must be a duration such as 90s or 5m"})
	return defaultValue
}

func (r *envReader) level(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(value))); err == nil {
		return lvl
	}
	r.errs = append(r.errs, ValidationError{Field: key, Value: value, Message: "must be one of debug, info, warn, error"})
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	// credentials first so a missing ENDPOINT/KEY is reported on its own
	creds := NewValidator().
		Field("ENDPOINT", c.Service.Endpoint, Required).
		Field("KEY", c.Service.Key, Required)
	if err := ValidateAndReturnError(creds); err != nil {
		return err
	}

	v := NewValidator()
	v.errors = append(v.errors, c.malformed...)
	v.Field("ENDPOINT", c.Service.Endpoint, AbsoluteURL).
		Field("HTTP_TIMEOUT", c.Service.HTTPTimeout, PositiveDuration).
		Field("MODEL_ID", c.Analysis.ModelID, Required).
		Field("DOCUMENT_URL", c.Analysis.DocumentURL, Required, AbsoluteURL).
		Field("LOCALE", c.Analysis.Locale, Required).
		Field("POLL_INTERVAL", c.Analysis.PollInterval, MinDuration(time.Second)).
		Field("ANALYZE_TIMEOUT", c.Analysis.Timeout, PositiveDuration).
		Field("OUTPUT_PATH", c.Output.JSONPath, Required)
	return ValidateAndReturnError(v)
}
