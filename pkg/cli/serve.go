package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/cli/config"
	controller "github.com/m-mizutani/themepreview/pkg/controller/http"
	"github.com/m-mizutani/themepreview/pkg/infra/metrics"
	"github.com/m-mizutani/themepreview/pkg/usecase"
	"github.com/m-mizutani/themepreview/pkg/utils/async"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		githubCfg  config.GitHub
		previewCfg config.Preview
	)

	flags := append(serverCfg.Flags(), githubCfg.AppFlags()...)
	flags = append(flags, previewCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start GitHub App webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting themepreview server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("github", githubCfg),
			)

			settings, err := previewCfg.AppSettings(ctx, githubCfg.AppBotLogin)
			if err != nil {
				return err
			}
			logger.Info("Managing preview comments", slog.String("bot_login", settings.BotLogin))

			githubClient, err := githubCfg.NewAppClient()
			if err != nil {
				return err
			}

			// Create use cases
			previewUC, err := usecase.NewPreview(githubClient, settings)
			if err != nil {
				return goerr.Wrap(err, "failed to create preview usecase")
			}
			dispatcher := async.NewDispatcher(async.WithTimeout(serverCfg.EventTimeout))

			serverOpts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithInFlight(dispatcher.InFlight),
			}
			var webhookOpts []usecase.WebhookOption
			if serverCfg.Metrics {
				m := metrics.New()
				m.RegisterInFlight(dispatcher.InFlight)
				serverOpts = append(serverOpts, controller.WithMetrics(m.Handler()))
				webhookOpts = append(webhookOpts, usecase.WithMetrics(m))
			}
			webhookUC := usecase.NewWebhook(previewUC, githubClient, dispatcher, webhookOpts...)

			// Create HTTP server with options
			server, err := controller.NewServer(ctx, webhookUC, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
				}
				return nil
			})

			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Shutting down server", slog.Any("cause", context.Cause(egCtx)))

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egCtx), serverCfg.ShutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := dispatcher.Wait(shutdownCtx); err != nil {
					return goerr.Wrap(err, "in-flight events did not finish",
						goerr.V("in_flight", dispatcher.InFlight()),
					)
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
