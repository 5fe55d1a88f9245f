package filelist

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

// Stdin is the path value that selects standard input
const Stdin = "-"

// List is a fixed set of changed files, typically the output of an external diff
type List struct {
	files []model.ChangedFile
}

// Read parses newline-separated paths from r
func Read(r io.Reader) (*List, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read changed file list")
	}
	return &List{files: model.ParseChangedFiles(string(data))}, nil
}

// Open reads the list from the file at name, or from stdin when name is "-"
func Open(name string, stdin io.Reader) (*List, error) {
	if name == Stdin {
		return Read(stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open changed file list", goerr.V("path", name))
	}
	defer f.Close()

	return Read(f)
}

// ChangedFiles implements interfaces.ChangedFileSource
func (l *List) ChangedFiles(ctx context.Context, _ *model.PullRequest) ([]model.ChangedFile, error) {
	return l.files, nil
}
