package config_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/themepreview/pkg/cli/config"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

func TestLogger_New(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "Valid level: debug", level: "debug"},
		{name: "Valid level: DEBUG (case insensitive)", level: "DEBUG"},
		{name: "Valid level: info", level: "info"},
		{name: "Valid level: INFO", level: "INFO"},
		{name: "Valid level: warn", level: "warn"},
		{name: "Valid level: WARN", level: "WARN"},
		{name: "Valid level: error", level: "error"},
		{name: "Valid level: ERROR", level: "ERROR"},
		{name: "Invalid level: invalid", level: "invalid", wantErr: true},
		{name: "Invalid level: empty string", level: "", wantErr: true},
		{name: "Invalid level: random", level: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Logger{
				Level:  tt.level,
				Format: config.LogFormatText,
			}

			var buf bytes.Buffer
			logger, err := cfg.New(&buf)
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
				return
			}
			gt.NoError(t, err)
			gt.NotNil(t, logger)
		})
	}
}

func TestLogger_New_Formats(t *testing.T) {
	for _, format := range []string{config.LogFormatConsole, config.LogFormatText, config.LogFormatJSON, "JSON"} {
		t.Run(format, func(t *testing.T) {
			cfg := &config.Logger{Level: "info", Format: format}

			var buf bytes.Buffer
			logger, err := cfg.New(&buf)
			gt.NoError(t, err)

			logger.Info("test log message")
			gt.String(t, buf.String()).Contains("test log message")
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		cfg := &config.Logger{Level: "info", Format: "xml"}
		_, err := cfg.New(&bytes.Buffer{})
		gt.Error(t, err)
	})
}

func TestLogger_New_LevelBehavior(t *testing.T) {
	cfg := &config.Logger{Level: "warn", Format: config.LogFormatJSON}

	var buf bytes.Buffer
	logger, err := cfg.New(&buf)
	gt.NoError(t, err)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	gt.False(t, strings.Contains(out, "debug message"))
	gt.False(t, strings.Contains(out, "info message"))
	gt.True(t, strings.Contains(out, "warn message"))
	gt.True(t, strings.Contains(out, "error message"))
}

func TestLogger_New_RedactsSecrets(t *testing.T) {
	cfg := &config.Logger{Level: "info", Format: config.LogFormatJSON}

	var buf bytes.Buffer
	logger, err := cfg.New(&buf)
	gt.NoError(t, err)

	gh := config.GitHub{
		Token:         "ghp_very_secret_token",
		WebhookSecret: "hook-secret",
		APIURL:        "https://api.github.com/",
	}
	logger.Info("configured", slog.Any("github", gh))

	out := buf.String()
	gt.False(t, strings.Contains(out, "ghp_very_secret_token"))
	gt.False(t, strings.Contains(out, "hook-secret"))
	gt.True(t, strings.Contains(out, "https://api.github.com/"))

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
}

func TestLogger_Configure_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &config.Logger{Level: "info", Format: config.LogFormatText, Output: path}

	logger, closer, err := cfg.Configure()
	gt.NoError(t, err)
	logger.Info("written to file")
	closer()

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("written to file")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()
	gt.A(t, flags).Length(3)

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		switch f := flag.(type) {
		case interface{ Names() []string }:
			names := f.Names()
			if len(names) > 0 {
				flagNames[names[0]] = true
			}
		}
	}

	gt.True(t, flagNames["log-level"])
	gt.True(t, flagNames["log-format"])
	gt.True(t, flagNames["log-output"])
}
