package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Preview holds preview link and comment configuration. Values given by flags
// override values from the settings file.
type Preview struct {
	ConfigFile    string
	PlaygroundURL string
	ProxyURL      string
	BotLogin      string
	DefaultSlug   string
	ThemeDir      string

	// nil when the flag was not given
	ValidationPlugin *bool
	SingleTheme      *bool
}

// previewFile is the layout of the TOML settings file
type previewFile struct {
	PlaygroundURL    string `toml:"playground_url"`
	ProxyURL         string `toml:"proxy_url"`
	BotLogin         string `toml:"bot_login"`
	ValidationPlugin *bool  `toml:"validation_plugin"`
	DefaultSlug      string `toml:"default_slug"`
	SingleTheme      *bool  `toml:"single_theme"`
	ThemeDir         string `toml:"theme_dir"`
}

// Flags returns CLI flags for preview configuration
func (c *Preview) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML settings file",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("THEMEPREVIEW_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "playground-url",
			Usage:       "WordPress Playground URL (default: " + model.DefaultPlaygroundURL + ")",
			Destination: &c.PlaygroundURL,
			Sources:     cli.EnvVars("THEMEPREVIEW_PLAYGROUND_URL"),
		},
		&cli.StringFlag{
			Name:        "proxy-url",
			Usage:       "Content proxy serving theme archives (default: " + model.DefaultProxyURL + ")",
			Destination: &c.ProxyURL,
			Sources:     cli.EnvVars("THEMEPREVIEW_PROXY_URL"),
		},
		&cli.StringFlag{
			Name:        "bot-login",
			Usage:       "Login of the account posting the preview comment (default: " + model.DefaultBotLogin + ", or the App's bot in serve mode)",
			Destination: &c.BotLogin,
			Sources:     cli.EnvVars("THEMEPREVIEW_BOT_LOGIN"),
		},
		&cli.StringFlag{
			Name:        "default-slug",
			Usage:       "Theme slug used when a manifest has no Text Domain header",
			Destination: &c.DefaultSlug,
			Sources:     cli.EnvVars("THEMEPREVIEW_DEFAULT_SLUG"),
		},
		&cli.StringFlag{
			Name:        "theme-dir",
			Usage:       "Theme directory in single theme mode (default: repository root)",
			Destination: &c.ThemeDir,
			Sources:     cli.EnvVars("THEMEPREVIEW_THEME_DIR"),
		},
		&cli.BoolFlag{
			Name:    "validation-plugin",
			Usage:   "Install the theme-check plugin in the preview (default: true)",
			Sources: cli.EnvVars("THEMEPREVIEW_VALIDATION_PLUGIN"),
			Action: func(_ context.Context, _ *cli.Command, v bool) error {
				c.ValidationPlugin = &v
				return nil
			},
		},
		&cli.BoolFlag{
			Name:    "single-theme",
			Usage:   "Treat the repository as one theme instead of detecting themes",
			Sources: cli.EnvVars("THEMEPREVIEW_SINGLE_THEME"),
			Action: func(_ context.Context, _ *cli.Command, v bool) error {
				c.SingleTheme = &v
				return nil
			},
		},
	}
}

// Settings merges defaults, the settings file and flags
func (c *Preview) Settings() (model.PreviewSettings, error) {
	settings, _, err := c.settings()
	return settings, err
}

// AppSettings is Settings for comments posted by a GitHub App installation. The
// App comments as "<slug>[bot]", so when no bot login is configured it is taken
// from appLogin.
func (c *Preview) AppSettings(ctx context.Context, appLogin func(context.Context) (string, error)) (model.PreviewSettings, error) {
	settings, botLoginSet, err := c.settings()
	if err != nil || botLoginSet {
		return settings, err
	}

	login, err := appLogin(ctx)
	if err != nil {
		return settings, goerr.Wrap(err, "failed to resolve bot login of GitHub App")
	}
	settings.BotLogin = login
	return settings, nil
}

// settings also reports whether the bot login came from the file or a flag
func (c *Preview) settings() (model.PreviewSettings, bool, error) {
	settings := model.DefaultPreviewSettings()
	botLoginSet := c.BotLogin != ""

	if c.ConfigFile != "" {
		file, err := loadPreviewFile(c.ConfigFile)
		if err != nil {
			return settings, false, err
		}
		file.apply(&settings)
		botLoginSet = botLoginSet || file.BotLogin != ""
	}

	overrideString(&settings.PlaygroundURL, c.PlaygroundURL)
	overrideString(&settings.ProxyURL, c.ProxyURL)
	overrideString(&settings.BotLogin, c.BotLogin)
	overrideString(&settings.DefaultSlug, c.DefaultSlug)
	overrideString(&settings.ThemeDir, c.ThemeDir)
	overrideBool(&settings.ValidationPlugin, c.ValidationPlugin)
	overrideBool(&settings.SingleTheme, c.SingleTheme)

	return settings, botLoginSet, nil
}

func loadPreviewFile(path string) (*previewFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open settings file",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", path),
		)
	}
	defer func() { _ = f.Close() }()

	var file previewFile
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse settings file",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", path),
		)
	}
	return &file, nil
}

func (f *previewFile) apply(s *model.PreviewSettings) {
	overrideString(&s.PlaygroundURL, f.PlaygroundURL)
	overrideString(&s.ProxyURL, f.ProxyURL)
	overrideString(&s.BotLogin, f.BotLogin)
	overrideString(&s.DefaultSlug, f.DefaultSlug)
	overrideString(&s.ThemeDir, f.ThemeDir)
	overrideBool(&s.ValidationPlugin, f.ValidationPlugin)
	overrideBool(&s.SingleTheme, f.SingleTheme)
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
