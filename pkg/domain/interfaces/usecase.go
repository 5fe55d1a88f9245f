package interfaces

import (
	"context"

	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// PreviewUseCase detects changed themes and reconciles the preview comment
type PreviewUseCase interface {
	// Plan detects changed themes and renders the desired comment body without touching the platform
	Plan(ctx context.Context, pr *model.PullRequest, files []model.ChangedFile, src ManifestSource) (*model.PreviewPlan, error)

	// Run lists changed files, plans, and reconciles the managed comment
	Run(ctx context.Context, pr *model.PullRequest, changes ChangedFileSource, src ManifestSource) (*model.ReconcileResult, error)
}
