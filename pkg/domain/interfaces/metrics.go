package interfaces

import "github.com/m-mizutani/themepreview/pkg/domain/model"

// MetricsRecorder receives the counters of the webhook server
type MetricsRecorder interface {
	ObserveWebhookEvent(eventType model.WebhookEventType, supported bool)
	ObserveCommentAction(action model.CommentAction)
}
