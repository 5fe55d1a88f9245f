package github

import (
	"context"
	"encoding/json"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/usecase"
)

// EventProcessor processes the event that triggered a GitHub Actions run
type EventProcessor struct {
	previewUC interfaces.PreviewUseCase
	changes   interfaces.ChangedFileSource
	src       interfaces.ManifestSource
}

// NewEventProcessor creates a new GitHub event processor. Changed files come
// from changes and manifests from src.
func NewEventProcessor(previewUC interfaces.PreviewUseCase, changes interfaces.ChangedFileSource, src interfaces.ManifestSource) *EventProcessor {
	return &EventProcessor{
		previewUC: previewUC,
		changes:   changes,
		src:       src,
	}
}

// ProcessEvent processes a GitHub event payload. It returns a nil result without
// error when the event type is not handled.
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload []byte) (*model.ReconcileResult, error) {
	logger := ctxlog.From(ctx)

	if !model.IsPullRequestEvent(eventType) {
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return nil, nil
	}

	return p.processPullRequestEvent(ctx, payload)
}

// processPullRequestEvent processes a pull_request or pull_request_target event
func (p *EventProcessor) processPullRequestEvent(ctx context.Context, payload []byte) (*model.ReconcileResult, error) {
	logger := ctxlog.From(ctx)

	var event github.PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal pull request event")
	}

	pr, err := usecase.PullRequestFromEvent(&event)
	if err != nil {
		return nil, err
	}

	logger.Info("Processing pull request event",
		"repo", pr.Repo.FullName(),
		"number", pr.Number,
		"head_ref", pr.HeadRef,
		"action", event.GetAction(),
	)

	result, err := p.previewUC.Run(ctx, pr, p.changes, p.src)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to refresh preview comment",
			goerr.V("repo", pr.Repo.FullName()),
			goerr.V("number", pr.Number),
		)
	}

	return result, nil
}
