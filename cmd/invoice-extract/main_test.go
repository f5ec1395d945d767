package main

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENDPOINT", "https://example.cognitiveservices.azure.com/")
	t.Setenv("KEY", "secret")
}

// loadWithArgs runs the real flag set and returns the configuration applyFlags produced.
func loadWithArgs(t *testing.T, args ...string) *common.Config {
	t.Helper()
	var cfg *common.Config
	app := newApp()
	app.Writer, app.ErrWriter = io.Discard, io.Discard
	app.Action = func(c *cli.Context) error {
		cfg = common.LoadConfig()
		applyFlags(c, cfg)
		return nil
	}
	if err := app.Run(append([]string{"invoice-extract"}, args...)); err != nil {
		t.Fatalf("Run(%v) error = %v", args, err)
	}
	return cfg
}

func TestApplyFlags_OverrideEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DOCUMENT_URL", "https://env.example.com/a.pdf")
	t.Setenv("ANALYZE_TIMEOUT", "5min")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := loadWithArgs(t,
		"--url", "https://flag.example.com/b.pdf",
		"--model", "prebuilt-receipt",
		"--locale", "de-DE",
		"--out", "out.json",
		"--xlsx", "out.xlsx",
		"--timeout", "90s",
		"--poll-interval", "2s",
		"--db", "history.db",
		"--quiet",
	)

	if cfg.Analysis.DocumentURL != "https://flag.example.com/b.pdf" {
		t.Errorf("DocumentURL = %q", cfg.Analysis.DocumentURL)
	}
	if cfg.Analysis.ModelID != "prebuilt-receipt" || cfg.Analysis.Locale != "de-DE" {
		t.Errorf("model/locale = %q/%q", cfg.Analysis.ModelID, cfg.Analysis.Locale)
	}
	if cfg.Output.JSONPath != "out.json" || cfg.Output.XLSXPath != "out.xlsx" {
		t.Errorf("outputs = %q/%q", cfg.Output.JSONPath, cfg.Output.XLSXPath)
	}
	if cfg.Analysis.Timeout != 90*time.Second || cfg.Analysis.PollInterval != 2*time.Second {
		t.Errorf("timeout/poll = %v/%v", cfg.Analysis.Timeout, cfg.Analysis.PollInterval)
	}
	if cfg.Database.DSN != "history.db" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.LogLevel != slog.LevelError {
		t.Errorf("LogLevel = %v, want ERROR", cfg.LogLevel)
	}
	// the malformed ANALYZE_TIMEOUT no longer applies once --timeout is given
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyFlags_UnsetFlagsKeepEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DOCUMENT_URL", "https://env.example.com/a.pdf")
	t.Setenv("ANALYZE_TIMEOUT", "5min")

	cfg := loadWithArgs(t)
	if cfg.Analysis.DocumentURL != "https://env.example.com/a.pdf" {
		t.Errorf("DocumentURL = %q", cfg.Analysis.DocumentURL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if err := cfg.Validate(); !errors.Is(err, common.ErrConfig) {
		t.Errorf("Validate() error = %v, want ErrConfig for ANALYZE_TIMEOUT", err)
	}
}

func TestRun_FailsWithoutNetwork(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		env  map[string]string
		args []string
	}{
		"env file is a directory": {
			args: []string{"--env-file", dir},
		},
		"missing credentials": {
			env:  map[string]string{"ENDPOINT": "", "KEY": ""},
			args: []string{"--env-file", filepath.Join(dir, "absent.env")},
		},
		"history without database": {
			env:  map[string]string{"DB_URL": ""},
			args: []string{"--env-file", filepath.Join(dir, "absent.env"), "history"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			app := newApp()
			app.Writer, app.ErrWriter = io.Discard, io.Discard
			err := app.Run(append([]string{"invoice-extract"}, tc.args...))
			if !errors.Is(err, common.ErrConfig) {
				t.Fatalf("Run() error = %v, want ErrConfig", err)
			}
		})
	}
}
