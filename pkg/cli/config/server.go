package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	// EventTimeout bounds one dispatched preview refresh
	EventTimeout time.Duration
	Metrics      bool
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("THEMEPREVIEW_ADDR"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Time to wait for in-flight events on shutdown",
			Value:       30 * time.Second,
			Destination: &c.ShutdownTimeout,
			Sources:     cli.EnvVars("THEMEPREVIEW_SHUTDOWN_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:        "event-timeout",
			Usage:       "Timeout for processing one webhook event",
			Value:       2 * time.Minute,
			Destination: &c.EventTimeout,
			Sources:     cli.EnvVars("THEMEPREVIEW_EVENT_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics at /metrics",
			Destination: &c.Metrics,
			Sources:     cli.EnvVars("THEMEPREVIEW_METRICS"),
		},
	}
}
