package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/aaearon/mcp-privilege-cloud-sub001/auth"
	"github.com/aaearon/mcp-privilege-cloud-sub001/config"
	"github.com/aaearon/mcp-privilege-cloud-sub001/health"
	"github.com/aaearon/mcp-privilege-cloud-sub001/observe"
	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
	"github.com/aaearon/mcp-privilege-cloud-sub001/tools"
)

// Version is set by the build.
var version = "dev"

func main() {
	if err := run(); err != nil {
		// Diagnostics go to stderr; stdout belongs to the MCP stream.
		color.New(color.FgRed).Fprintf(os.Stderr, "mcp-privilege-cloud: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger := observe.NewLogger(cfg.LogLevel)
	metrics, err := observe.NewMetrics(ctx, tools.ServerName, version, cfg.MetricsExporter)
	if err != nil {
		return fmt.Errorf("metrics setup: %w", err)
	}

	authenticator := auth.NewAuthenticator(auth.Credentials{
		TenantID:     cfg.TenantID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	},
		auth.WithTokenURL(cfg.TokenURL()),
		auth.WithTimeout(cfg.Timeout),
	)
	cache := auth.NewTokenCache(authenticator,
		auth.WithFetchHook(func(err error) {
			metrics.RecordTokenRefresh(context.Background(), err)
			if err != nil {
				logger.Warn(context.Background(), "token exchange failed")
			} else {
				logger.Debug(context.Background(), "token refreshed")
			}
		}),
	)

	client := pcloud.New(cfg.APIBaseURL(), cache,
		pcloud.WithTimeout(cfg.Timeout),
		pcloud.WithAuthRetries(cfg.MaxRetries),
		pcloud.WithRequestHook(func(method string, status int) {
			metrics.RecordAPIRequest(context.Background(), method, status)
		}),
	)

	checks := health.NewAggregator(cfg.Timeout,
		health.NewTokenCacheChecker(cache),
		health.NewEndpointChecker("identity", cfg.IdentityBaseURL()),
		health.NewEndpointChecker("privilege_cloud", cfg.APIBaseURL()),
	)

	srv := tools.New(client, tools.Options{
		Version: version,
		Logger:  logger,
		Metrics: metrics,
		Health:  checks,
	})

	logger.Info(ctx, "server starting",
		observe.F("version", version),
		observe.F("subdomain", cfg.Subdomain),
		observe.F("tenant", cfg.TenantID),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// stop unblocks the shutdown goroutine when the stream closes.
		defer stop()
		return srv.ServeStdio(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return metrics.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info(context.Background(), "server stopped")
	return nil
}
