package model

const (
	DefaultPlaygroundURL = "https://playground.wordpress.net/"
	DefaultProxyURL      = "https://github-proxy.com/proxy.php"
)

// PreviewSettings controls how preview links and the comment body are built
type PreviewSettings struct {
	PlaygroundURL string
	ProxyURL      string
	BotLogin      string

	// ValidationPlugin installs the theme-check plugin before the theme
	ValidationPlugin bool

	// DefaultSlug is used when a manifest has no "Text Domain:" header
	DefaultSlug string

	// SingleTheme renders one link for ThemeDir instead of detecting themes
	SingleTheme bool
	ThemeDir    string
}

// DefaultPreviewSettings returns the settings used when nothing is configured
func DefaultPreviewSettings() PreviewSettings {
	return PreviewSettings{
		PlaygroundURL:    DefaultPlaygroundURL,
		ProxyURL:         DefaultProxyURL,
		BotLogin:         DefaultBotLogin,
		ValidationPlugin: true,
		ThemeDir:         ".",
	}
}

// PreviewPlan is the desired comment state computed from a change
type PreviewPlan struct {
	Changes *ThemeChangeSet
	// Body is nil when no theme changed and the managed comment should go away
	Body *string
}
