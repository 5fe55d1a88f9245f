package gitdiff

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// DefaultBaseRev is the revision pull requests are compared against
const DefaultBaseRev = "origin/trunk"

// Diff lists files that differ between two revisions of a local clone. It
// reports both sides of renames, like `git diff --name-only` without rename detection.
type Diff struct {
	workdir string
	baseRev string
	headRev string
}

// New creates a Diff for the repository containing workdir
func New(workdir, baseRev, headRev string) *Diff {
	if baseRev == "" {
		baseRev = DefaultBaseRev
	}
	if headRev == "" {
		headRev = "HEAD"
	}
	return &Diff{
		workdir: workdir,
		baseRev: baseRev,
		headRev: headRev,
	}
}

// IsRepository reports whether workdir is inside a git working tree
func IsRepository(workdir string) bool {
	_, err := git.PlainOpenWithOptions(workdir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Resolvable reports whether both revisions exist in the repository containing
// workdir. A shallow pull request checkout usually lacks the base branch.
func (d *Diff) Resolvable() bool {
	repo, err := git.PlainOpenWithOptions(d.workdir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return false
	}
	for _, rev := range []string{d.baseRev, d.headRev} {
		if _, err := repo.ResolveRevision(plumbing.Revision(rev)); err != nil {
			return false
		}
	}
	return true
}

// ChangedFiles implements interfaces.ChangedFileSource. The pull request is not
// consulted; revisions come from the constructor.
func (d *Diff) ChangedFiles(ctx context.Context, _ *model.PullRequest) ([]model.ChangedFile, error) {
	repo, err := git.PlainOpenWithOptions(d.workdir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open git repository", goerr.V("workdir", d.workdir))
	}

	baseTree, err := resolveTree(repo, d.baseRev)
	if err != nil {
		return nil, err
	}
	headTree, err := resolveTree(repo, d.headRev)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to diff trees",
			goerr.V("base", d.baseRev),
			goerr.V("head", d.headRev),
		)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, ch := range changes {
		for _, name := range []string{ch.From.Name, ch.To.Name} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	files := make([]model.ChangedFile, len(names))
	for i, name := range names {
		files[i] = model.ChangedFile(name)
	}

	ctxlog.From(ctx).Debug("Listed changed files from git",
		"base", d.baseRev,
		"head", d.headRev,
		"count", len(files),
	)

	return files, nil
}

func resolveTree(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve revision", goerr.V("rev", rev))
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load commit", goerr.V("rev", rev), goerr.V("hash", hash.String()))
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tree", goerr.V("rev", rev))
	}
	return tree, nil
}
