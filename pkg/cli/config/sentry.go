package config

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string

	enabled bool
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN. Error reporting is disabled when empty",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("THEMEPREVIEW_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Destination: &c.Environment,
			Sources:     cli.EnvVars("THEMEPREVIEW_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client when a DSN is set
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     types.ServiceName + "@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize Sentry", goerr.T(types.ErrTagInvalidConfig))
	}
	c.enabled = true
	return nil
}

// Enabled reports whether Configure initialized the client
func (c *Sentry) Enabled() bool {
	return c.enabled
}

// Capture reports err and waits for delivery. It is a no-op when Sentry is disabled.
func (c *Sentry) Capture(err error) {
	if !c.enabled || err == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		var gerr *goerr.Error
		if errors.As(err, &gerr) {
			for k, v := range gerr.Values() {
				scope.SetExtra(k, v)
			}
		}
	})
	hub.CaptureException(err)
	hub.Flush(2 * time.Second)
}
