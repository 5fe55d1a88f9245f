package usecase

import (
	"context"
	"path"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

type previewUseCase struct {
	settings model.PreviewSettings
	renderer *Renderer
	comments *CommentReconciler
}

// NewPreview creates a PreviewUseCase posting through client
func NewPreview(client interfaces.CommentClient, settings model.PreviewSettings) (interfaces.PreviewUseCase, error) {
	renderer, err := NewRenderer(settings)
	if err != nil {
		return nil, err
	}

	return &previewUseCase{
		settings: settings,
		renderer: renderer,
		comments: NewCommentReconciler(client, settings.BotLogin),
	}, nil
}

// Plan detects changed themes and renders the desired body
func (uc *previewUseCase) Plan(ctx context.Context, pr *model.PullRequest, files []model.ChangedFile, src interfaces.ManifestSource) (*model.PreviewPlan, error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}

	if uc.settings.SingleTheme {
		return uc.planSingle(ctx, pr, files, src)
	}

	changes, err := NewDetector(src).Detect(ctx, files)
	if err != nil {
		return nil, err
	}

	plan := &model.PreviewPlan{Changes: changes}
	if !changes.HasChanges() {
		return plan, nil
	}

	body, err := uc.renderer.Render(changes, pr.HeadRef, pr.Repo.FullName())
	if err != nil {
		return nil, err
	}
	plan.Body = &body

	return plan, nil
}

// planSingle handles a repository that is one theme rooted at ThemeDir
func (uc *previewUseCase) planSingle(ctx context.Context, pr *model.PullRequest, files []model.ChangedFile, src interfaces.ManifestSource) (*model.PreviewPlan, error) {
	themeDir := path.Clean(uc.settings.ThemeDir)
	plan := &model.PreviewPlan{Changes: model.NewThemeChangeSet()}

	if !touchesDir(files, themeDir) {
		ctxlog.From(ctx).Info("No changes under theme directory", "theme_dir", themeDir)
		return plan, nil
	}

	manifest := &model.ThemeManifest{}
	exists, err := src.Exists(ctx, ManifestPath(themeDir))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check theme manifest", goerr.V("theme_dir", themeDir))
	}
	if exists {
		if manifest, err = ReadManifest(ctx, src, themeDir); err != nil {
			return nil, err
		}
	}
	if manifest.IsThemeRoot() {
		plan.Changes.Add(themeDir, *manifest)
	}

	slug := manifest.TextDomain
	if slug == "" {
		slug = uc.settings.DefaultSlug
	}
	if slug == "" {
		slug = path.Base(themeDir)
		if isWalkRoot(themeDir) {
			slug = pr.Repo.Name
		}
	}

	body, err := uc.renderer.RenderSingle(slug, pr.HeadRef, pr.Repo.FullName())
	if err != nil {
		return nil, err
	}
	plan.Body = &body

	return plan, nil
}

// Run lists changed files, plans, and reconciles the managed comment
func (uc *previewUseCase) Run(ctx context.Context, pr *model.PullRequest, changes interfaces.ChangedFileSource, src interfaces.ManifestSource) (*model.ReconcileResult, error) {
	logger := ctxlog.From(ctx)

	if err := pr.Validate(); err != nil {
		return nil, err
	}

	files, err := changes.ChangedFiles(ctx, pr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list changed files",
			goerr.V("repo", pr.Repo.FullName()),
			goerr.V("number", pr.Number),
		)
	}

	plan, err := uc.Plan(ctx, pr, files, src)
	if err != nil {
		return nil, err
	}

	result, err := uc.comments.Reconcile(ctx, pr, plan.Body)
	if err != nil {
		return nil, err
	}

	logger.Info("Preview comment reconciled",
		"repo", pr.Repo.FullName(),
		"number", pr.Number,
		"themes", plan.Changes.Len(),
		"action", result.Action,
		"comment_id", result.CommentID,
	)

	return result, nil
}

func touchesDir(files []model.ChangedFile, dir string) bool {
	for _, f := range files {
		name := strings.TrimSpace(string(f))
		if name == "" {
			continue
		}
		if isWalkRoot(dir) {
			return true
		}
		p := path.Clean(name)
		if p == dir || strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}
