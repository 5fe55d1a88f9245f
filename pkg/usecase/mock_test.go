package usecase_test

import (
	"context"
	"sync"

	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// mockCommentClient keeps comments in memory and counts mutations
type mockCommentClient struct {
	mu       sync.Mutex
	comments []*model.Comment
	nextID   int64
	author   string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	listCalls   int
	createCalls []string
	updateCalls []int64
	deleteCalls []int64
}

func newMockCommentClient(comments ...*model.Comment) *mockCommentClient {
	return &mockCommentClient{
		comments: comments,
		nextID:   1000,
		author:   model.DefaultBotLogin,
	}
}

func (m *mockCommentClient) ListComments(ctx context.Context, repo model.Repository, number int) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := make([]*model.Comment, 0, len(m.comments))
	for _, c := range m.comments {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockCommentClient) CreateComment(ctx context.Context, repo model.Repository, number int, body string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = append(m.createCalls, body)
	if m.createErr != nil {
		return nil, m.createErr
	}

	m.nextID++
	c := &model.Comment{ID: m.nextID, Author: m.author, Body: body}
	m.comments = append(m.comments, c)
	return c, nil
}

func (m *mockCommentClient) UpdateComment(ctx context.Context, repo model.Repository, commentID int64, body string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls = append(m.updateCalls, commentID)
	if m.updateErr != nil {
		return nil, m.updateErr
	}

	for _, c := range m.comments {
		if c.ID == commentID {
			c.Body = body
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCommentClient) DeleteComment(ctx context.Context, repo model.Repository, commentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, commentID)
	if m.deleteErr != nil {
		return m.deleteErr
	}

	for i, c := range m.comments {
		if c.ID == commentID {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			break
		}
	}
	return nil
}

// mockManifestSource delegates to function fields
type mockManifestSource struct {
	existsFunc   func(ctx context.Context, name string) (bool, error)
	readFileFunc func(ctx context.Context, name string) ([]byte, error)
}

func (m *mockManifestSource) Exists(ctx context.Context, name string) (bool, error) {
	return m.existsFunc(ctx, name)
}

func (m *mockManifestSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return m.readFileFunc(ctx, name)
}

// staticChangedFiles returns a fixed file list
type staticChangedFiles struct {
	files []model.ChangedFile
	err   error
}

func (s *staticChangedFiles) ChangedFiles(ctx context.Context, pr *model.PullRequest) ([]model.ChangedFile, error) {
	return s.files, s.err
}

var (
	_ interfaces.CommentClient     = (*mockCommentClient)(nil)
	_ interfaces.ManifestSource    = (*mockManifestSource)(nil)
	_ interfaces.ChangedFileSource = (*staticChangedFiles)(nil)
)

func testPullRequest() *model.PullRequest {
	repo := model.Repository{Owner: "owner", Name: "repo"}
	return &model.PullRequest{
		Repo:     repo,
		Number:   12,
		HeadRef:  "feature",
		HeadSHA:  "0123abcd",
		HeadRepo: repo,
	}
}
