package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/config"
	httptransport "github.com/vendorly/vendorly-api/internal/http"
	"github.com/vendorly/vendorly-api/internal/http/handler"
	httpmiddleware "github.com/vendorly/vendorly-api/internal/http/middleware"
	"github.com/vendorly/vendorly-api/internal/identity"
	"github.com/vendorly/vendorly-api/internal/repository"
	"github.com/vendorly/vendorly-api/internal/server"
	"github.com/vendorly/vendorly-api/internal/service"
	"github.com/vendorly/vendorly-api/internal/telemetry"
	"github.com/vendorly/vendorly-api/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newAccountRepository,
			newVendorRepository,
			newIdentityProvider,
			newTokenVerifier,
			identity.NewResolver,
			newWebhookVerifier,
			service.NewAccountService,
			service.NewVendorService,
			handler.NewVendorHandler,
			handler.NewWebhookHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, runMigrations, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return repository.NewPostgresAccountRepo(pool)
}

func newVendorRepository(pool *pgxpool.Pool) repository.VendorRepository {
	return repository.NewPostgresVendorRepo(pool)
}

func newIdentityProvider(cfg config.Config) identity.Provider {
	return identity.NewHTTPProvider(cfg)
}

func newTokenVerifier(cfg config.Config) (identity.TokenVerifier, error) {
	return identity.NewJWTVerifier(cfg)
}

func newWebhookVerifier(cfg config.Config) *webhook.Verifier {
	return webhook.NewVerifier(cfg.WebhookSecret, cfg.WebhookTolerance)
}

func newAuthMiddleware(verifier identity.TokenVerifier, resolver *identity.Resolver) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Verifier: verifier, Resolver: resolver}
}

func runMigrations(pool *pgxpool.Pool, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repository.Migrate(ctx, pool, logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
