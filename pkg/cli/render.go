package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/cli/config"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/m-mizutani/themepreview/pkg/infra/workspace"
	"github.com/m-mizutani/themepreview/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRender() *cli.Command {
	var (
		changesCfg config.Changes
		previewCfg config.Preview
		repo       string
		branch     string
		dir        string
		number     int
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository full name (owner/name)",
			Required:    true,
			Destination: &repo,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "branch",
			Usage:       "Pull request head branch",
			Required:    true,
			Destination: &branch,
			Sources:     cli.EnvVars("GITHUB_HEAD_REF"),
		},
		&cli.IntFlag{
			Name:        "pr",
			Usage:       "Pull request number",
			Value:       1,
			Destination: &number,
		},
		&cli.StringFlag{
			Name:        "workspace",
			Usage:       "Checkout of the pull request head",
			Value:       ".",
			Destination: &dir,
			Sources:     cli.EnvVars("GITHUB_WORKSPACE"),
		},
	}
	flags = append(flags, changesCfg.Flags()...)
	flags = append(flags, previewCfg.Flags()...)

	return &cli.Command{
		Name:  "render",
		Usage: "Print the preview comment for local changes without touching GitHub",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			owner, name, ok := strings.Cut(repo, "/")
			if !ok || owner == "" || name == "" {
				return goerr.New("repository must be owner/name",
					goerr.T(types.ErrTagInvalidConfig),
					goerr.V("repo", repo),
				)
			}

			settings, err := previewCfg.Settings()
			if err != nil {
				return err
			}

			changes, err := changedFileSource(ctx, &changesCfg, dir, nil, os.Stdin)
			if err != nil {
				return err
			}

			pr := &model.PullRequest{
				Repo:    model.Repository{Owner: owner, Name: name},
				Number:  number,
				HeadRef: branch,
			}
			pr.HeadRepo = pr.Repo

			files, err := changes.ChangedFiles(ctx, pr)
			if err != nil {
				return err
			}

			// Plan never posts, so no comment client is needed
			previewUC, err := usecase.NewPreview(nil, settings)
			if err != nil {
				return goerr.Wrap(err, "failed to create preview usecase")
			}

			plan, err := previewUC.Plan(ctx, pr, files, workspace.NewDir(dir))
			if err != nil {
				return err
			}

			return printPlan(c.Root().Writer, c.Root().ErrWriter, plan)
		},
	}
}

// printPlan writes the body to w and a colored summary to summary
func printPlan(w, summary io.Writer, plan *model.PreviewPlan) error {
	if plan.Body == nil {
		_, err := color.New(color.FgYellow).Fprintln(summary, "No theme changes detected, the preview comment would be removed")
		return err
	}

	header := color.New(color.FgGreen, color.Bold)
	themeName := color.New(color.FgCyan)
	if _, err := header.Fprintf(summary, "Detected %d theme(s)\n", plan.Changes.Len()); err != nil {
		return err
	}
	for _, entry := range plan.Changes.Entries() {
		name, parent := entry.Key.Split()
		line := fmt.Sprintf("  %s (%s)", themeName.Sprint(name), entry.Dir)
		if parent != "" {
			line += " child of " + parent
		}
		if _, err := fmt.Fprintln(summary, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, *plan.Body)
	return err
}
