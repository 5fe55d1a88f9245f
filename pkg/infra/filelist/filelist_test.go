package filelist_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/infra/filelist"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("from stdin", func(t *testing.T) {
		list, err := filelist.Open("-", strings.NewReader("theme1/style.css\n\ntheme2/style.css\n"))
		gt.NoError(t, err)

		files, err := list.ChangedFiles(ctx, nil)
		gt.NoError(t, err)
		gt.V(t, files).Equal([]model.ChangedFile{"theme1/style.css", "theme2/style.css"})
	})

	t.Run("from file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "changed.txt")
		gt.NoError(t, os.WriteFile(p, []byte("a/b.php\r\n"), 0600))

		list, err := filelist.Open(p, nil)
		gt.NoError(t, err)

		files, err := list.ChangedFiles(ctx, nil)
		gt.NoError(t, err)
		gt.V(t, files).Equal([]model.ChangedFile{"a/b.php"})
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := filelist.Open(filepath.Join(t.TempDir(), "missing.txt"), nil)
		gt.Error(t, err)
	})
}
