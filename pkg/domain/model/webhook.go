package model

import (
	"slices"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest       WebhookEventType = "pull_request"
	EventTypePullRequestTarget WebhookEventType = "pull_request_target"
	EventTypePing              WebhookEventType = "ping"
	EventTypeUnknown           WebhookEventType = "unknown"
)

// previewActions are the pull request actions that change the head branch content
var previewActions = []string{"opened", "reopened", "synchronize"}

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., opened, synchronize)
	Repository string           // Repository full name
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent checks if the event should refresh the preview comment
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypePullRequest, EventTypePullRequestTarget:
		return slices.Contains(previewActions, e.Action)
	default:
		return false
	}
}

// IsPullRequestEvent reports whether the GitHub event name carries pull request data.
// GitHub Actions reports both pull_request and pull_request_target.
func IsPullRequestEvent(name string) bool {
	switch WebhookEventType(name) {
	case EventTypePullRequest, EventTypePullRequestTarget:
		return true
	default:
		return false
	}
}
