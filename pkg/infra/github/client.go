package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"golang.org/x/oauth2"
)

const perPage = 100

// Client implements interfaces.GitHubClient on top of go-github
type Client struct {
	githubClient *github.Client
}

var _ interfaces.GitHubClient = (*Client)(nil)

// New wraps an already configured go-github client
func New(githubClient *github.Client) *Client {
	return &Client{githubClient: githubClient}
}

// NewClient creates a new GitHub client with App authentication
func NewClient(appID, installationID int64, privateKey []byte, apiURL string) (*Client, error) {
	// Create GitHub App transport
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}

	githubClient, err := withAPIURL(github.NewClient(&http.Client{Transport: itr}), apiURL)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		itr.BaseURL = strings.TrimSuffix(githubClient.BaseURL.String(), "/")
	}

	return New(githubClient), nil
}

// AppBotLogin returns "<slug>[bot]", the login GitHub records as the author of
// comments posted by installations of the App
func AppBotLogin(ctx context.Context, appID int64, privateKey []byte, apiURL string) (string, error) {
	atr, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create GitHub App JWT transport", goerr.V("app_id", appID))
	}

	githubClient, err := withAPIURL(github.NewClient(&http.Client{Transport: atr}), apiURL)
	if err != nil {
		return "", err
	}

	app, _, err := githubClient.Apps.Get(ctx, "")
	if err != nil {
		return "", goerr.Wrap(err, "failed to get GitHub App", goerr.V("app_id", appID))
	}
	if app.GetSlug() == "" {
		return "", goerr.New("GitHub App has no slug", goerr.V("app_id", appID))
	}

	return app.GetSlug() + "[bot]", nil
}

// NewClientFromConfig is NewClient with the private key given as PEM text
func NewClientFromConfig(appID, installationID int64, privateKey string, apiURL string) (*Client, error) {
	return NewClient(appID, installationID, []byte(privateKey), apiURL)
}

// NewTokenClient creates a client authenticated with a token, such as the
// GITHUB_TOKEN of a workflow run
func NewTokenClient(token, apiURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	githubClient, err := withAPIURL(github.NewClient(httpClient), apiURL)
	if err != nil {
		return nil, err
	}
	return New(githubClient), nil
}

func withAPIURL(c *github.Client, apiURL string) (*github.Client, error) {
	if apiURL == "" || apiURL == c.BaseURL.String() || apiURL+"/" == c.BaseURL.String() {
		return c, nil
	}

	c, err := c.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub API URL", goerr.V("api_url", apiURL))
	}
	return c, nil
}

// ListComments returns every comment on the pull request in creation order
func (c *Client) ListComments(ctx context.Context, repo model.Repository, number int) ([]*model.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var result []*model.Comment
	for {
		comments, resp, err := c.githubClient.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list issue comments",
				goerr.V("repo", repo.FullName()),
				goerr.V("number", number),
				goerr.V("page", opts.Page),
			)
		}

		for _, comment := range comments {
			result = append(result, toComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// CreateComment creates a comment on a pull request or issue
func (c *Client) CreateComment(ctx context.Context, repo model.Repository, number int, body string) (*model.Comment, error) {
	comment, _, err := c.githubClient.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create issue comment",
			goerr.V("repo", repo.FullName()),
			goerr.V("number", number),
		)
	}
	return toComment(comment), nil
}

// UpdateComment replaces the body of a comment
func (c *Client) UpdateComment(ctx context.Context, repo model.Repository, commentID int64, body string) (*model.Comment, error) {
	comment, _, err := c.githubClient.Issues.EditComment(ctx, repo.Owner, repo.Name, commentID, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to edit issue comment",
			goerr.V("repo", repo.FullName()),
			goerr.V("comment_id", commentID),
		)
	}
	return toComment(comment), nil
}

// DeleteComment deletes a comment
func (c *Client) DeleteComment(ctx context.Context, repo model.Repository, commentID int64) error {
	if _, err := c.githubClient.Issues.DeleteComment(ctx, repo.Owner, repo.Name, commentID); err != nil {
		return goerr.Wrap(err, "failed to delete issue comment",
			goerr.V("repo", repo.FullName()),
			goerr.V("comment_id", commentID),
		)
	}
	return nil
}

// ChangedFiles lists the files of the pull request. Renamed files contribute
// both their old and new path.
func (c *Client) ChangedFiles(ctx context.Context, pr *model.PullRequest) ([]model.ChangedFile, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var files []model.ChangedFile
	for {
		commitFiles, resp, err := c.githubClient.PullRequests.ListFiles(ctx, pr.Repo.Owner, pr.Repo.Name, pr.Number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list pull request files",
				goerr.V("repo", pr.Repo.FullName()),
				goerr.V("number", pr.Number),
			)
		}

		for _, f := range commitFiles {
			if prev := f.GetPreviousFilename(); prev != "" {
				files = append(files, model.ChangedFile(prev))
			}
			files = append(files, model.ChangedFile(f.GetFilename()))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// Contents returns a ManifestSource reading repo at ref
func (c *Client) Contents(repo model.Repository, ref string) interfaces.ManifestSource {
	return newContentsSource(c.githubClient, repo, ref)
}

func toComment(comment *github.IssueComment) *model.Comment {
	return &model.Comment{
		ID:     comment.GetID(),
		Author: comment.GetUser().GetLogin(),
		Body:   comment.GetBody(),
	}
}
