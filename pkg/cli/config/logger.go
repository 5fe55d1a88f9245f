package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output string
}

const (
	LogFormatConsole = "console"
	LogFormatText    = "text"
	LogFormatJSON    = "json"
)

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("THEMEPREVIEW_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, text, json)",
			Value:       LogFormatConsole,
			Destination: &c.Format,
			Sources:     cli.EnvVars("THEMEPREVIEW_LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log destination: stderr, stdout or a file path",
			Value:       "stderr",
			Destination: &c.Output,
			Sources:     cli.EnvVars("THEMEPREVIEW_LOG_OUTPUT"),
		},
	}
}

// Configure configures and returns a logger writing to the configured output.
// The returned closer releases a log file and is never nil.
func (c *Logger) Configure() (*slog.Logger, func(), error) {
	w, closer, err := c.writer()
	if err != nil {
		return nil, nil, err
	}

	logger, err := c.New(w)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return logger, closer, nil
}

// New builds a logger writing to w. Fields tagged `masq:"secret"` are redacted.
func (c *Logger) New(w io.Writer) (*slog.Logger, error) {
	level, err := parseLogLevel(c.Level)
	if err != nil {
		return nil, err
	}

	filter := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case LogFormatConsole, "":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
		)
	case LogFormatText:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		})
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		return nil, goerr.New("invalid log format",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("format", c.Format),
		)
	}

	return slog.New(handler), nil
}

func (c *Logger) writer() (io.Writer, func(), error) {
	switch c.Output {
	case "", "stderr", "-":
		return os.Stderr, func() {}, nil
	case "stdout":
		return os.Stdout, func() {}, nil
	}

	f, err := os.OpenFile(c.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open log file",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", c.Output),
		)
	}
	return f, func() { _ = f.Close() }, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, goerr.New("invalid log level",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("level", s),
		)
	}
}
