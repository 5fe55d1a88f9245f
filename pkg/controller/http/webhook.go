package http

import (
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// WebhookHandler receives GitHub App webhooks
type WebhookHandler struct {
	secret    []byte
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:    []byte(secret),
		webhookUC: webhookUC,
	}
}

// Handle verifies the payload signature, converts the payload into a
// WebhookEvent and passes it to the usecase.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to read request body", "error", err)
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.Body.Close() }()

	if err := github.ValidateSignature(r.Header.Get(github.SHA256SignatureHeader), body, h.secret); err != nil {
		ctxlog.From(ctx).Warn("Invalid webhook signature", "error", err)
		writeError(ctx, w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	deliveryID := github.DeliveryID(r)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	logger := ctxlog.From(ctx).With("delivery_id", deliveryID)
	ctx = ctxlog.With(ctx, logger)

	event, err := parseEvent(github.WebHookType(r), body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(ctx, w, err, http.StatusBadRequest)
		return
	}
	event.ID = deliveryID

	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		logger.Error("Failed to process webhook event", "error", err)
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{
		"status": "success",
	})
}

// parseEvent decodes the payload with go-github. Events other than pull requests
// and pings are passed on as EventTypeUnknown.
func parseEvent(eventType string, body []byte) (*model.WebhookEvent, error) {
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid webhook payload", goerr.V("event_type", eventType))
	}

	event := &model.WebhookEvent{
		Type:       model.WebhookEventType(eventType),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	switch e := payload.(type) {
	case *github.PullRequestEvent:
		event.Action = e.GetAction()
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
	case *github.PingEvent:
		event.Type = model.EventTypePing
	default:
		event.Type = model.EventTypeUnknown
	}

	return event, nil
}
