package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/cli/config"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/m-mizutani/themepreview/pkg/infra/filelist"
	"github.com/m-mizutani/themepreview/pkg/infra/gitdiff"
)

// changedFileSource picks the changed file source configured in cfg. api may be
// nil when no GitHub client is available.
func changedFileSource(ctx context.Context, cfg *config.Changes, workspace string, api interfaces.ChangedFileSource, stdin io.Reader) (interfaces.ChangedFileSource, error) {
	diff := gitdiff.New(workspace, cfg.BaseRef, cfg.HeadRef)
	source := cfg.Source(func() bool {
		if !gitdiff.IsRepository(workspace) {
			return false
		}
		if !diff.Resolvable() {
			ctxlog.From(ctx).Warn("Revisions not found in checkout, skipping git diff",
				"workspace", workspace,
				"base", cfg.BaseRef,
				"head", cfg.HeadRef,
			)
			return false
		}
		return true
	})

	switch source {
	case config.ChangedFilesList:
		name := cfg.ChangedFiles
		if name == "" {
			name = filelist.Stdin
		}
		return filelist.Open(name, stdin)

	case config.ChangedFilesGit:
		return diff, nil

	case config.ChangedFilesAPI:
		if api == nil {
			return nil, goerr.New("changed files can not be listed through the GitHub API here",
				goerr.T(types.ErrTagInvalidConfig))
		}
		return api, nil
	}

	return nil, goerr.New("unknown changed files source",
		goerr.T(types.ErrTagInvalidConfig),
		goerr.V("source", source),
	)
}
