package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// contentsSource reads files through the repository contents API. Lookups are
// cached for the lifetime of the source, which covers one preview run; it is not
// safe for concurrent use.
type contentsSource struct {
	githubClient *github.Client
	repo         model.Repository
	ref          string

	files   map[string][]byte
	missing map[string]bool
}

func newContentsSource(githubClient *github.Client, repo model.Repository, ref string) *contentsSource {
	return &contentsSource{
		githubClient: githubClient,
		repo:         repo,
		ref:          ref,
		files:        make(map[string][]byte),
		missing:      make(map[string]bool),
	}
}

// Exists reports whether name is a file at the source revision
func (s *contentsSource) Exists(ctx context.Context, name string) (bool, error) {
	if _, ok := s.files[name]; ok {
		return true, nil
	}
	if s.missing[name] {
		return false, nil
	}

	fileContent, _, resp, err := s.githubClient.Repositories.GetContents(ctx, s.repo.Owner, s.repo.Name, name, &github.RepositoryContentGetOptions{
		Ref: s.ref,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			s.missing[name] = true
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get repository contents",
			goerr.V("repo", s.repo.FullName()),
			goerr.V("ref", s.ref),
			goerr.V("path", name),
		)
	}

	// A directory listing leaves fileContent nil
	if fileContent == nil || fileContent.GetType() != "file" {
		s.missing[name] = true
		return false, nil
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return false, goerr.Wrap(err, "failed to decode repository contents",
			goerr.V("repo", s.repo.FullName()),
			goerr.V("path", name),
		)
	}

	s.files[name] = []byte(content)
	return true, nil
}

// ReadFile returns the content of name at the source revision
func (s *contentsSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.New("file not found in repository",
			goerr.V("repo", s.repo.FullName()),
			goerr.V("ref", s.ref),
			goerr.V("path", name),
		)
	}
	return s.files[name], nil
}
