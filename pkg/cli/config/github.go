package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	githubinfra "github.com/m-mizutani/themepreview/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	WebhookSecret  string `masq:"secret"`
	APIURL         string
}

// Flags returns CLI flags for token authentication, as used inside a workflow run
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token used to manage the preview comment",
			Destination: &c.Token,
			Sources:     cli.EnvVars("THEMEPREVIEW_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		c.apiURLFlag(),
	}
}

// AppFlags returns CLI flags for GitHub App authentication and webhook verification
func (c *GitHub) AppFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Required:    true,
			Destination: &c.AppID,
			Sources:     cli.EnvVars("THEMEPREVIEW_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Required:    true,
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("THEMEPREVIEW_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM)",
			Required:    true,
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("THEMEPREVIEW_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("THEMEPREVIEW_GITHUB_WEBHOOK_SECRET"),
		},
		c.apiURLFlag(),
	}
}

func (c *GitHub) apiURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "github-api-url",
		Usage:       "GitHub API base URL, for GitHub Enterprise Server",
		Destination: &c.APIURL,
		Sources:     cli.EnvVars("THEMEPREVIEW_GITHUB_API_URL", "GITHUB_API_URL"),
	}
}

// NewTokenClient creates a GitHub client from the token
func (c *GitHub) NewTokenClient() (*githubinfra.Client, error) {
	if c.Token == "" {
		return nil, goerr.New("GitHub token is required", goerr.T(types.ErrTagInvalidConfig))
	}
	return githubinfra.NewTokenClient(c.Token, c.APIURL)
}

// NewAppClient creates a GitHub client authenticated as the App installation
func (c *GitHub) NewAppClient() (*githubinfra.Client, error) {
	if c.AppID == 0 || c.InstallationID == 0 || c.PrivateKey == "" {
		return nil, goerr.New("GitHub App credentials are incomplete",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("app_id", c.AppID),
			goerr.V("installation_id", c.InstallationID),
		)
	}
	return githubinfra.NewClientFromConfig(c.AppID, c.InstallationID, c.PrivateKey, c.APIURL)
}

// AppBotLogin returns the login comments of the App installation are posted as
func (c *GitHub) AppBotLogin(ctx context.Context) (string, error) {
	return githubinfra.AppBotLogin(ctx, c.AppID, []byte(c.PrivateKey), c.APIURL)
}
