package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

// CommentReconciler keeps at most one managed preview comment on a pull request
type CommentReconciler struct {
	client   interfaces.CommentClient
	botLogin string
}

// NewCommentReconciler creates a reconciler that treats comments by botLogin
// carrying the marker as managed.
func NewCommentReconciler(client interfaces.CommentClient, botLogin string) *CommentReconciler {
	if botLogin == "" {
		botLogin = model.DefaultBotLogin
	}
	return &CommentReconciler{
		client:   client,
		botLogin: botLogin,
	}
}

// Reconcile drives the managed comment to the desired body. A nil body deletes
// the managed comment if there is one. The comment list is read to completion
// before any write is issued.
func (r *CommentReconciler) Reconcile(ctx context.Context, pr *model.PullRequest, desired *string) (*model.ReconcileResult, error) {
	logger := ctxlog.From(ctx)

	existing, err := r.findManagedComment(ctx, pr)
	if err != nil {
		return nil, err
	}

	if desired == nil {
		if existing == nil {
			logger.Debug("No theme changes and no managed comment")
			return &model.ReconcileResult{Action: model.CommentNone}, nil
		}

		logger.Info("Deleting managed comment", "comment_id", existing.ID)
		if err := r.client.DeleteComment(ctx, pr.Repo, existing.ID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete comment",
				goerr.T(types.ErrTagPlatformAPI),
				goerr.V("comment_id", existing.ID),
			)
		}
		return &model.ReconcileResult{Action: model.CommentDeleted, CommentID: existing.ID}, nil
	}

	if existing != nil {
		if existing.Body == *desired {
			logger.Info("Managed comment is up to date", "comment_id", existing.ID)
			return &model.ReconcileResult{
				Action:    model.CommentUnchanged,
				CommentID: existing.ID,
				Body:      existing.Body,
			}, nil
		}

		logger.Info("Updating managed comment", "comment_id", existing.ID)
		if _, err := r.client.UpdateComment(ctx, pr.Repo, existing.ID, *desired); err != nil {
			return nil, goerr.Wrap(err, "failed to update comment",
				goerr.T(types.ErrTagPlatformAPI),
				goerr.V("comment_id", existing.ID),
			)
		}
		return &model.ReconcileResult{
			Action:    model.CommentUpdated,
			CommentID: existing.ID,
			Body:      *desired,
		}, nil
	}

	logger.Info("Creating managed comment", "repo", pr.Repo.FullName(), "number", pr.Number)
	created, err := r.client.CreateComment(ctx, pr.Repo, pr.Number, *desired)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create comment",
			goerr.T(types.ErrTagPlatformAPI),
			goerr.V("number", pr.Number),
		)
	}

	result := &model.ReconcileResult{
		Action: model.CommentCreated,
		Body:   *desired,
	}
	if created != nil {
		result.CommentID = created.ID
	}
	return result, nil
}

// findManagedComment returns the first managed comment in list order. Additional
// managed comments are reported but left alone.
func (r *CommentReconciler) findManagedComment(ctx context.Context, pr *model.PullRequest) (*model.Comment, error) {
	comments, err := r.client.ListComments(ctx, pr.Repo, pr.Number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list comments",
			goerr.T(types.ErrTagPlatformAPI),
			goerr.V("repo", pr.Repo.FullName()),
			goerr.V("number", pr.Number),
		)
	}

	var found *model.Comment
	for _, c := range comments {
		if !c.IsManaged(r.botLogin) {
			continue
		}
		if found == nil {
			found = c
			continue
		}
		ctxlog.From(ctx).Warn("Multiple managed comments found, using the first one",
			"used_comment_id", found.ID,
			"ignored_comment_id", c.ID,
		)
	}

	return found, nil
}
