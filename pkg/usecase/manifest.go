package usecase

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

// Header lines may be prefixed by comment decoration such as " * ".
var (
	themeNameHeader  = regexp.MustCompile(`^[\s*#/]*Theme Name:\s*(.*)$`)
	templateHeader   = regexp.MustCompile(`^[\s*#/]*Template:\s*(.*)$`)
	textDomainHeader = regexp.MustCompile(`^[\s*#/]*Text Domain:\s*(.*)$`)
)

// ManifestPath returns the manifest file location for dir
func ManifestPath(dir string) string {
	return path.Join(dir, model.ManifestFileName)
}

// ReadManifest reads and parses the manifest in dir. The caller is expected to
// have checked that the manifest exists.
func ReadManifest(ctx context.Context, src interfaces.ManifestSource, dir string) (*model.ThemeManifest, error) {
	name := ManifestPath(dir)

	data, err := src.ReadFile(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read theme manifest",
			goerr.T(types.ErrTagManifestRead),
			goerr.V("path", name),
		)
	}

	return ParseManifest(string(data)), nil
}

// ParseManifest scans manifest text line by line.
// The first "Theme Name:" and "Text Domain:" lines win. For "Template:" the last
// line wins and a blank value clears the parent.
func ParseManifest(content string) *model.ThemeManifest {
	var manifest model.ThemeManifest
	var nameFound, domainFound bool

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")

		if !nameFound {
			if v, ok := matchHeader(themeNameHeader, line); ok {
				manifest.Name = v
				nameFound = true
				continue
			}
		}

		if v, ok := matchHeader(templateHeader, line); ok {
			manifest.Parent = v
			continue
		}

		if !domainFound {
			if v, ok := matchHeader(textDomainHeader, line); ok {
				manifest.TextDomain = v
				domainFound = true
			}
		}
	}

	return &manifest
}

func matchHeader(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	v = strings.TrimSpace(strings.TrimSuffix(v, "*/"))
	return v, true
}
