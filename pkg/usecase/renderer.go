package usecase

import (
	"bytes"
	_ "embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
)

//go:embed templates/comment.md
var commentTemplate string

// Renderer composes the preview comment body
type Renderer struct {
	settings model.PreviewSettings
	tmpl     *template.Template
}

type commentData struct {
	Marker   string
	Single   bool
	Names    []string
	Links    []string
	HasChild bool
}

// NewRenderer parses the comment template
func NewRenderer(settings model.PreviewSettings) (*Renderer, error) {
	tmpl, err := template.New("comment").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(commentTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse comment template")
	}

	return &Renderer{
		settings: settings,
		tmpl:     tmpl,
	}, nil
}

// Render builds the comment body with one preview link per theme in the order
// the themes were detected.
func (r *Renderer) Render(changes *model.ThemeChangeSet, branchRef, repoFullName string) (string, error) {
	data := commentData{
		Marker:   model.CommentMarker,
		HasChild: changes.HasChildTheme(),
	}

	for _, entry := range changes.Entries() {
		name, parent := entry.Key.Split()
		slug := r.themeSlug(entry)

		blueprint, err := BuildBlueprint(slug, branchRef, repoFullName, r.blueprintOptions()...)
		if err != nil {
			return "", goerr.Wrap(err, "failed to build blueprint", goerr.V("theme", entry.Key))
		}

		link := r.previewLink(name, blueprint)
		if parent != "" {
			link += fmt.Sprintf(" (child of **%s**)", parent)
		}

		data.Names = append(data.Names, name)
		data.Links = append(data.Links, link)
	}

	return r.execute(data)
}

// RenderSingle builds the body for a repository that is itself one theme
func (r *Renderer) RenderSingle(themeSlug, branchRef, repoFullName string) (string, error) {
	opts := append(r.blueprintOptions(), WithArchive())
	blueprint, err := BuildBlueprint(themeSlug, branchRef, repoFullName, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build blueprint", goerr.V("theme", themeSlug))
	}

	return r.execute(commentData{
		Marker: model.CommentMarker,
		Single: true,
		Links:  []string{r.previewLink(themeSlug, blueprint)},
	})
}

func (r *Renderer) execute(data commentData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute comment template")
	}
	return buf.String(), nil
}

func (r *Renderer) previewLink(name, blueprint string) string {
	return fmt.Sprintf("- [Preview changes for **%s**](%s#%s)", name, r.settings.PlaygroundURL, blueprint)
}

func (r *Renderer) blueprintOptions() []BlueprintOption {
	return []BlueprintOption{
		WithProxyURL(r.settings.ProxyURL),
		WithValidationPlugin(r.settings.ValidationPlugin),
	}
}

// themeSlug prefers the manifest text domain, then the configured default, then
// the directory name.
func (r *Renderer) themeSlug(entry *model.ThemeEntry) string {
	if entry.Manifest.TextDomain != "" {
		return entry.Manifest.TextDomain
	}
	if r.settings.DefaultSlug != "" {
		return r.settings.DefaultSlug
	}
	return path.Base(entry.Dir)
}
