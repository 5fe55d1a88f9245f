package config

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Action holds the GitHub Actions run context
type Action struct {
	EventPath  string
	EventName  string
	Workspace  string
	OutputPath string
}

// Flags returns CLI flags for the workflow run context
func (c *Action) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "event-path",
			Usage:       "Path to the event payload",
			Required:    true,
			Destination: &c.EventPath,
			Sources:     cli.EnvVars("GITHUB_EVENT_PATH"),
		},
		&cli.StringFlag{
			Name:        "event-name",
			Usage:       "Name of the triggering event",
			Required:    true,
			Destination: &c.EventName,
			Sources:     cli.EnvVars("GITHUB_EVENT_NAME"),
		},
		&cli.StringFlag{
			Name:        "workspace",
			Usage:       "Checkout of the pull request head",
			Value:       ".",
			Destination: &c.Workspace,
			Sources:     cli.EnvVars("GITHUB_WORKSPACE"),
		},
		&cli.StringFlag{
			Name:        "github-output",
			Usage:       "File receiving step outputs",
			Destination: &c.OutputPath,
			Sources:     cli.EnvVars("GITHUB_OUTPUT"),
		},
	}
}

// ReadEvent returns the raw event payload
func (c *Action) ReadEvent() ([]byte, error) {
	data, err := os.ReadFile(c.EventPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read event payload",
			goerr.T(types.ErrTagMissingContext),
			goerr.V("path", c.EventPath),
		)
	}
	return data, nil
}

// WriteOutputs appends the reconciliation result as step outputs. It does nothing
// when no output file is configured.
func (c *Action) WriteOutputs(result *model.ReconcileResult) error {
	if c.OutputPath == "" || result == nil {
		return nil
	}

	f, err := os.OpenFile(c.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open step output file", goerr.V("path", c.OutputPath))
	}
	defer func() { _ = f.Close() }()

	commentID := ""
	if result.CommentID != 0 {
		commentID = fmt.Sprintf("%d", result.CommentID)
	}

	if _, err := fmt.Fprintf(f, "comment-id=%s\naction=%s\n", commentID, result.Action); err != nil {
		return goerr.Wrap(err, "failed to write step outputs", goerr.V("path", c.OutputPath))
	}
	return nil
}
