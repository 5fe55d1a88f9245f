package usecase

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

// Blueprint is a WordPress Playground provisioning recipe
type Blueprint struct {
	Steps []BlueprintStep `json:"steps"`
}

// BlueprintStep is one step of a Blueprint. Field order is the JSON key order.
type BlueprintStep struct {
	Step            string       `json:"step"`
	Username        string       `json:"username,omitempty"`
	Password        string       `json:"password,omitempty"`
	PluginData      *PluginData  `json:"pluginData,omitempty"`
	ThemeData       *ThemeData   `json:"themeData,omitempty"`
	ThemeFolderName string       `json:"themeFolderName,omitempty"`
	Options         *StepOptions `json:"options,omitempty"`
}

// PluginData points an installPlugin step at a plugin directory entry
type PluginData struct {
	Resource string `json:"resource"`
	Slug     string `json:"slug"`
}

// ThemeData points an installTheme step at a theme archive URL
type ThemeData struct {
	Resource string `json:"resource"`
	URL      string `json:"url"`
}

// StepOptions holds per-step install options
type StepOptions struct {
	Activate bool `json:"activate"`
}

const (
	validationPluginSlug = "theme-check"
	playgroundUsername   = "admin"
	playgroundPassword   = "password"
)

type blueprintConfig struct {
	proxyURL         string
	validationPlugin bool
	archive          bool
}

// BlueprintOption customizes BuildBlueprint
type BlueprintOption func(*blueprintConfig)

// WithProxyURL sets the content proxy that serves theme archives
func WithProxyURL(proxyURL string) BlueprintOption {
	return func(c *blueprintConfig) {
		c.proxyURL = proxyURL
	}
}

// WithValidationPlugin toggles installing the theme-check plugin
func WithValidationPlugin(enabled bool) BlueprintOption {
	return func(c *blueprintConfig) {
		c.validationPlugin = enabled
	}
}

// WithArchive fetches the whole branch archive instead of one theme directory.
// Used when the repository itself is a single theme.
func WithArchive() BlueprintOption {
	return func(c *blueprintConfig) {
		c.archive = true
	}
}

// NewBlueprint assembles the step sequence for one theme
func NewBlueprint(themeSlug, branchRef, repoFullName string, opts ...BlueprintOption) (*Blueprint, error) {
	cfg := &blueprintConfig{
		proxyURL:         model.DefaultProxyURL,
		validationPlugin: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	proxyURL, err := buildProxyURL(cfg, themeSlug, branchRef, repoFullName)
	if err != nil {
		return nil, err
	}

	folderName := themeSlug
	if cfg.archive {
		folderName = themeSlug + "-" + branchRef
	}

	steps := []BlueprintStep{
		{
			Step:     "login",
			Username: playgroundUsername,
			Password: playgroundPassword,
		},
	}
	if cfg.validationPlugin {
		steps = append(steps, BlueprintStep{
			Step: "installPlugin",
			PluginData: &PluginData{
				Resource: "wordpress.org/plugins",
				Slug:     validationPluginSlug,
			},
			Options: &StepOptions{Activate: true},
		})
	}
	steps = append(steps,
		BlueprintStep{
			Step: "installTheme",
			ThemeData: &ThemeData{
				Resource: "url",
				URL:      proxyURL,
			},
		},
		BlueprintStep{
			Step:            "activateTheme",
			ThemeFolderName: folderName,
		},
	)

	return &Blueprint{Steps: steps}, nil
}

// BuildBlueprint returns the blueprint for one theme as compact JSON. The output
// depends only on the arguments, so identical inputs give identical bytes.
func BuildBlueprint(themeSlug, branchRef, repoFullName string, opts ...BlueprintOption) (string, error) {
	bp, err := NewBlueprint(themeSlug, branchRef, repoFullName, opts...)
	if err != nil {
		return "", err
	}
	return bp.JSON()
}

// JSON encodes the blueprint without HTML escaping so query separators stay readable
func (b *Blueprint) JSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b); err != nil {
		return "", goerr.Wrap(err, "failed to encode blueprint")
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func buildProxyURL(cfg *blueprintConfig, themeSlug, branchRef, repoFullName string) (string, error) {
	u, err := url.Parse(cfg.proxyURL)
	if err != nil {
		return "", goerr.Wrap(err, "invalid proxy URL",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("proxy_url", cfg.proxyURL),
		)
	}

	query := url.Values{}
	query.Set("repo", repoFullName)
	query.Set("branch", branchRef)
	if cfg.archive {
		query.Set("action", "archive")
	} else {
		query.Set("action", "partial")
		query.Set("directory", themeSlug)
	}
	// Encode sorts by key
	u.RawQuery = query.Encode()

	return u.String(), nil
}
