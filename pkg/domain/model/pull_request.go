package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

// Repository identifies a GitHub repository
type Repository struct {
	Owner string
	Name  string
}

// FullName returns "owner/name"
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// PullRequest holds the pull request context a preview run works on
type PullRequest struct {
	Repo    Repository // base repository, owner of the comments
	Number  int
	HeadRef string // source branch name
	HeadSHA string
	// HeadRepo is the repository the head branch lives in; it differs from Repo for forks
	HeadRepo Repository
}

// Validate checks that the fields needed to comment on the pull request are present
func (pr *PullRequest) Validate() error {
	if pr == nil {
		return goerr.New("no pull request found in event payload", goerr.T(types.ErrTagMissingContext))
	}
	if pr.Number <= 0 || pr.Repo.Owner == "" || pr.Repo.Name == "" || pr.HeadRef == "" {
		return goerr.New("incomplete pull request context",
			goerr.T(types.ErrTagMissingContext),
			goerr.V("repo", pr.Repo.FullName()),
			goerr.V("number", pr.Number),
			goerr.V("head_ref", pr.HeadRef),
		)
	}
	return nil
}
