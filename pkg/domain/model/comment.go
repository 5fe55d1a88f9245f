package model

import "strings"

const (
	// CommentMarker opens every rendered body and identifies the managed comment
	CommentMarker = "### Preview changes"

	// DefaultBotLogin is the author of comments posted with the Actions token
	DefaultBotLogin = "github-actions[bot]"
)

// Comment is a pull request comment as seen by the reconciler
type Comment struct {
	ID     int64
	Author string
	Body   string
}

// IsManaged reports whether the comment was posted by botLogin and carries the marker
func (c *Comment) IsManaged(botLogin string) bool {
	return c.Author == botLogin && strings.Contains(c.Body, CommentMarker)
}

// CommentAction describes what a reconciliation did to the managed comment
type CommentAction string

const (
	CommentCreated   CommentAction = "created"
	CommentUpdated   CommentAction = "updated"
	CommentUnchanged CommentAction = "unchanged"
	CommentDeleted   CommentAction = "deleted"
	CommentNone      CommentAction = "none"
)

// ReconcileResult is the outcome of one reconciliation
type ReconcileResult struct {
	Action    CommentAction `json:"action"`
	CommentID int64         `json:"comment_id,omitempty"`
	Body      string        `json:"body,omitempty"`
}
