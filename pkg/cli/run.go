package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/themepreview/pkg/controller/github"
	"github.com/m-mizutani/themepreview/pkg/infra/workspace"
	"github.com/m-mizutani/themepreview/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		githubCfg  config.GitHub
		actionCfg  config.Action
		changesCfg config.Changes
		previewCfg config.Preview
	)

	flags := append(githubCfg.Flags(), actionCfg.Flags()...)
	flags = append(flags, changesCfg.Flags()...)
	flags = append(flags, previewCfg.Flags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Refresh the preview comment from a GitHub Actions workflow run",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			settings, err := previewCfg.Settings()
			if err != nil {
				return err
			}

			payload, err := actionCfg.ReadEvent()
			if err != nil {
				return err
			}

			client, err := githubCfg.NewTokenClient()
			if err != nil {
				return err
			}

			previewUC, err := usecase.NewPreview(client, settings)
			if err != nil {
				return goerr.Wrap(err, "failed to create preview usecase")
			}

			changes, err := changedFileSource(ctx, &changesCfg, actionCfg.Workspace, client, os.Stdin)
			if err != nil {
				return err
			}

			logger.Info("Starting preview refresh",
				slog.String("event", actionCfg.EventName),
				slog.String("workspace", actionCfg.Workspace),
				slog.Any("github", githubCfg),
			)

			processor := githubcontroller.NewEventProcessor(previewUC, changes, workspace.NewDir(actionCfg.Workspace))
			result, err := processor.ProcessEvent(ctx, actionCfg.EventName, payload)
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}

			if _, err := fmt.Fprintf(c.Root().Writer, "comment-id: %d\naction: %s\n", result.CommentID, result.Action); err != nil {
				return goerr.Wrap(err, "failed to write result")
			}

			return actionCfg.WriteOutputs(result)
		},
	}
}
