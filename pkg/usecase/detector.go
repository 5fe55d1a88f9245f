package usecase

import (
	"context"
	"path"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

// Detector maps changed files to the themes that contain them
type Detector struct {
	src interfaces.ManifestSource
}

// NewDetector creates a Detector reading manifests from src
func NewDetector(src interfaces.ManifestSource) *Detector {
	return &Detector{src: src}
}

// Detect walks up from each changed file to the closest directory holding a
// manifest. A manifest with a theme name adds that directory to the result; the
// walk for the file stops at the first manifest either way, and stops without a
// match at the repository root.
func (d *Detector) Detect(ctx context.Context, files []model.ChangedFile) (*model.ThemeChangeSet, error) {
	logger := ctxlog.From(ctx)
	changes := model.NewThemeChangeSet()

	for _, file := range files {
		if file == "" {
			continue
		}

		dir, manifest, err := d.findThemeRoot(ctx, file.Dir())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to detect theme", goerr.V("file", string(file)))
		}
		if manifest == nil {
			continue
		}

		if changes.Add(dir, *manifest) {
			logger.Debug("Detected changed theme",
				"key", manifest.Key(),
				"dir", dir,
				"file", string(file),
			)
		}
	}

	logger.Info("Theme change detection completed",
		"changed_files", len(files),
		"themes", changes.Len(),
	)

	return changes, nil
}

// findThemeRoot returns the closest ancestor of dir (inclusive) that is a theme
// root, or a nil manifest when there is none.
func (d *Detector) findThemeRoot(ctx context.Context, dir string) (string, *model.ThemeManifest, error) {
	for ; !isWalkRoot(dir); dir = parentDir(dir) {
		name := ManifestPath(dir)

		exists, err := d.src.Exists(ctx, name)
		if err != nil {
			return "", nil, goerr.Wrap(err, "failed to check theme manifest",
				goerr.T(types.ErrTagManifestRead),
				goerr.V("path", name),
			)
		}
		if !exists {
			continue
		}

		manifest, err := ReadManifest(ctx, d.src, dir)
		if err != nil {
			return "", nil, err
		}
		if !manifest.IsThemeRoot() {
			ctxlog.From(ctx).Debug("Manifest without theme name", "path", name)
			return "", nil, nil
		}
		return dir, manifest, nil
	}

	return "", nil, nil
}

func isWalkRoot(dir string) bool {
	return dir == "." || dir == "/" || dir == ""
}

func parentDir(dir string) string {
	return path.Dir(dir)
}
