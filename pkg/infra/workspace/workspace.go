package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Source reads manifests from a checked out repository
type Source struct {
	fsys fs.FS
}

// New creates a Source over fsys
func New(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

// NewDir creates a Source over the directory root
func NewDir(root string) *Source {
	return New(os.DirFS(root))
}

// Exists reports whether name is a regular file. Paths that cannot exist inside
// the workspace (absolute or escaping with "..") report false.
func (s *Source) Exists(ctx context.Context, name string) (bool, error) {
	name, ok := normalize(name)
	if !ok {
		return false, nil
	}

	info, err := fs.Stat(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to stat file", goerr.V("path", name))
	}

	return info.Mode().IsRegular(), nil
}

// ReadFile returns the content of name
func (s *Source) ReadFile(ctx context.Context, name string) ([]byte, error) {
	clean, ok := normalize(name)
	if !ok {
		return nil, goerr.New("path is outside the workspace", goerr.V("path", name))
	}

	data, err := fs.ReadFile(s.fsys, clean)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", clean))
	}
	return data, nil
}

func normalize(name string) (string, bool) {
	name = path.Clean(strings.TrimPrefix(name, "./"))
	return name, fs.ValidPath(name)
}
