package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/m-mizutani/themepreview/pkg/usecase"
)

func ptr(s string) *string {
	return &s
}

func TestCommentReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	managedBody := model.CommentMarker + "\n\nold body"

	t.Run("creates comment when none exists", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 1, Author: "someone", Body: "LGTM"},
		)
		r := usecase.NewCommentReconciler(client, "")

		result, err := r.Reconcile(ctx, testPullRequest(), ptr("X"))
		gt.NoError(t, err)
		gt.V(t, result.Action).Equal(model.CommentCreated)
		gt.V(t, result.CommentID).Equal(int64(1001))
		gt.A(t, client.createCalls).Length(1)
		gt.A(t, client.updateCalls).Length(0)
		gt.A(t, client.deleteCalls).Length(0)
	})

	t.Run("deletes managed comment when nothing changed", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 1, Author: "someone", Body: "LGTM"},
			&model.Comment{ID: 2, Author: model.DefaultBotLogin, Body: managedBody},
		)
		r := usecase.NewCommentReconciler(client, model.DefaultBotLogin)

		result, err := r.Reconcile(ctx, testPullRequest(), nil)
		gt.NoError(t, err)
		gt.V(t, result.Action).Equal(model.CommentDeleted)
		gt.V(t, client.deleteCalls).Equal([]int64{2})
		gt.A(t, client.createCalls).Length(0)
		gt.A(t, client.updateCalls).Length(0)
	})

	t.Run("no-op without changes or managed comment", func(t *testing.T) {
		client := newMockCommentClient()
		r := usecase.NewCommentReconciler(client, "")

		result, err := r.Reconcile(ctx, testPullRequest(), nil)
		gt.NoError(t, err)
		gt.V(t, result.Action).Equal(model.CommentNone)
		gt.V(t, client.listCalls).Equal(1)
		gt.A(t, client.createCalls).Length(0)
		gt.A(t, client.updateCalls).Length(0)
		gt.A(t, client.deleteCalls).Length(0)
	})

	t.Run("updates managed comment in place", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 2, Author: model.DefaultBotLogin, Body: managedBody},
		)
		r := usecase.NewCommentReconciler(client, "")

		desired := model.CommentMarker + "\n\nnew body"
		result, err := r.Reconcile(ctx, testPullRequest(), &desired)
		gt.NoError(t, err)
		gt.V(t, result.Action).Equal(model.CommentUpdated)
		gt.V(t, result.CommentID).Equal(int64(2))
		gt.V(t, client.updateCalls).Equal([]int64{2})
		gt.A(t, client.createCalls).Length(0)
		gt.V(t, client.comments[0].Body).Equal(desired)
	})

	t.Run("skips update when body is identical", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 2, Author: model.DefaultBotLogin, Body: managedBody},
		)
		r := usecase.NewCommentReconciler(client, "")

		result, err := r.Reconcile(ctx, testPullRequest(), ptr(managedBody))
		gt.NoError(t, err)
		gt.V(t, result.Action).Equal(model.CommentUnchanged)
		gt.V(t, result.CommentID).Equal(int64(2))
		gt.A(t, client.updateCalls).Length(0)
		gt.A(t, client.createCalls).Length(0)
	})

	t.Run("marker from another author is not managed", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 3, Author: "octocat", Body: managedBody},
		)
		r := usecase.NewCommentReconciler(client, "")

		result, err := r.Reconcile(ctx, testPullRequest(), nil)
		gt.NoError(t, err)
		gt.V(t, result.Action).Equal(model.CommentNone)
		gt.A(t, client.deleteCalls).Length(0)
	})

	t.Run("custom bot login", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 4, Author: model.DefaultBotLogin, Body: managedBody},
			&model.Comment{ID: 5, Author: "preview-app[bot]", Body: managedBody},
		)
		r := usecase.NewCommentReconciler(client, "preview-app[bot]")

		result, err := r.Reconcile(ctx, testPullRequest(), nil)
		gt.NoError(t, err)
		gt.V(t, client.deleteCalls).Equal([]int64{5})
		gt.V(t, result.CommentID).Equal(int64(5))
	})

	t.Run("first managed comment is authoritative", func(t *testing.T) {
		client := newMockCommentClient(
			&model.Comment{ID: 7, Author: model.DefaultBotLogin, Body: managedBody},
			&model.Comment{ID: 8, Author: model.DefaultBotLogin, Body: managedBody},
		)
		r := usecase.NewCommentReconciler(client, "")

		_, err := r.Reconcile(ctx, testPullRequest(), ptr(model.CommentMarker+"\n\nnew"))
		gt.NoError(t, err)
		gt.V(t, client.updateCalls).Equal([]int64{7})
		gt.V(t, client.comments[1].Body).Equal(managedBody)
	})
}

func TestCommentReconciler_Reconcile_PlatformErrors(t *testing.T) {
	ctx := context.Background()
	apiErr := errors.New("api unavailable")
	managed := func() *model.Comment {
		return &model.Comment{ID: 2, Author: model.DefaultBotLogin, Body: model.CommentMarker}
	}

	tests := []struct {
		name    string
		setup   func(c *mockCommentClient)
		desired *string
	}{
		{
			name:    "list",
			setup:   func(c *mockCommentClient) { c.listErr = apiErr },
			desired: ptr("X"),
		},
		{
			name:    "create",
			setup:   func(c *mockCommentClient) { c.createErr = apiErr },
			desired: ptr("X"),
		},
		{
			name: "update",
			setup: func(c *mockCommentClient) {
				c.comments = append(c.comments, managed())
				c.updateErr = apiErr
			},
			desired: ptr(model.CommentMarker + "\nX"),
		},
		{
			name: "delete",
			setup: func(c *mockCommentClient) {
				c.comments = append(c.comments, managed())
				c.deleteErr = apiErr
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockCommentClient()
			tt.setup(client)

			_, err := usecase.NewCommentReconciler(client, "").Reconcile(ctx, testPullRequest(), tt.desired)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, types.ErrTagPlatformAPI))
			gt.True(t, errors.Is(err, apiErr))
		})
	}

	t.Run("list failure issues no writes", func(t *testing.T) {
		client := newMockCommentClient(managed())
		client.listErr = apiErr

		_, err := usecase.NewCommentReconciler(client, "").Reconcile(ctx, testPullRequest(), nil)
		gt.Error(t, err)
		gt.A(t, client.deleteCalls).Length(0)
		gt.A(t, client.createCalls).Length(0)
		gt.A(t, client.updateCalls).Length(0)
	})
}
