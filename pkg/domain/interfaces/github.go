package interfaces

import (
	"context"

	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// CommentClient is the comment capability of the hosting platform
type CommentClient interface {
	// ListComments returns every comment on the pull request, following pagination
	ListComments(ctx context.Context, repo model.Repository, number int) ([]*model.Comment, error)

	// CreateComment posts a new comment on the pull request
	CreateComment(ctx context.Context, repo model.Repository, number int, body string) (*model.Comment, error)

	// UpdateComment replaces the body of an existing comment
	UpdateComment(ctx context.Context, repo model.Repository, commentID int64, body string) (*model.Comment, error)

	// DeleteComment removes a comment
	DeleteComment(ctx context.Context, repo model.Repository, commentID int64) error
}

// ChangedFileSource lists the files changed by a pull request
type ChangedFileSource interface {
	ChangedFiles(ctx context.Context, pr *model.PullRequest) ([]model.ChangedFile, error)
}

// ManifestSource gives read access to repository files at one revision.
// Paths are slash-separated and relative to the repository root.
type ManifestSource interface {
	Exists(ctx context.Context, name string) (bool, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// GitHubClient combines the GitHub API operations used in webhook mode
type GitHubClient interface {
	CommentClient
	ChangedFileSource

	// Contents returns a ManifestSource reading repo at ref through the contents API
	Contents(repo model.Repository, ref string) ManifestSource
}
