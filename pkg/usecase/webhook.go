package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/utils/async"
)

type webhookUseCase struct {
	preview    interfaces.PreviewUseCase
	github     interfaces.GitHubClient
	dispatcher *async.Dispatcher
	metrics    interfaces.MetricsRecorder
}

// WebhookOption configures the webhook usecase
type WebhookOption func(*webhookUseCase)

// WithMetrics records received events and comment actions to m
func WithMetrics(m interfaces.MetricsRecorder) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.metrics = m
	}
}

// NewWebhook creates a WebhookUseCase that refreshes preview comments for pull
// request events. When dispatcher is nil the preview runs before ProcessEvent returns.
func NewWebhook(preview interfaces.PreviewUseCase, githubClient interfaces.GitHubClient, dispatcher *async.Dispatcher, opts ...WebhookOption) *webhookUseCase {
	uc := &webhookUseCase{
		preview:    preview,
		github:     githubClient,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent processes a webhook event
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx).With("delivery_id", event.ID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Processing webhook event",
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)
	if uc.metrics != nil {
		uc.metrics.ObserveWebhookEvent(event.Type, event.IsSupportedEvent())
	}

	if !event.IsSupportedEvent() {
		logger.Debug("Ignoring unsupported event",
			"type", event.Type,
			"action", event.Action,
		)
		return nil
	}

	var prEvent github.PullRequestEvent
	if err := json.Unmarshal(event.RawPayload, &prEvent); err != nil {
		return goerr.Wrap(err, "failed to unmarshal PR event")
	}

	pr, err := PullRequestFromEvent(&prEvent)
	if err != nil {
		return err
	}

	handler := func(ctx context.Context) error {
		src := uc.github.Contents(pr.HeadRepo, pr.HeadSHA)
		result, err := uc.preview.Run(ctx, pr, uc.github, src)
		if err != nil {
			return err
		}
		if uc.metrics != nil {
			uc.metrics.ObserveCommentAction(result.Action)
		}
		return nil
	}

	if uc.dispatcher == nil {
		return handler(ctx)
	}
	uc.dispatcher.Dispatch(ctx, handler)
	return nil
}

// PullRequestFromEvent extracts the pull request context from an event payload
func PullRequestFromEvent(event *github.PullRequestEvent) (*model.PullRequest, error) {
	ghPR := event.GetPullRequest()
	if ghPR == nil {
		var pr *model.PullRequest
		return nil, pr.Validate()
	}

	pr := &model.PullRequest{
		Repo: model.Repository{
			Owner: event.GetRepo().GetOwner().GetLogin(),
			Name:  event.GetRepo().GetName(),
		},
		Number:  ghPR.GetNumber(),
		HeadRef: ghPR.GetHead().GetRef(),
		HeadSHA: ghPR.GetHead().GetSHA(),
		HeadRepo: model.Repository{
			Owner: ghPR.GetHead().GetRepo().GetOwner().GetLogin(),
			Name:  ghPR.GetHead().GetRepo().GetName(),
		},
	}
	if pr.HeadRepo.Owner == "" || pr.HeadRepo.Name == "" {
		pr.HeadRepo = pr.Repo
	}
	if pr.HeadSHA == "" {
		pr.HeadSHA = pr.HeadRef
	}

	if err := pr.Validate(); err != nil {
		return nil, err
	}
	return pr, nil
}
