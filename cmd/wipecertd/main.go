package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wipecert/internal/config"
	"wipecert/internal/infra/db"
	httpinfra "wipecert/internal/infra/http"
	"wipecert/internal/infra/ledger"
	"wipecert/internal/infra/pinning"
	"wipecert/internal/infra/policyopa"
	"wipecert/internal/infra/ratelimit"
	"wipecert/internal/infra/render"
	"wipecert/internal/usecase"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.FromEnv()
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledgerClient, err := ledger.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("ledger client init failed")
	}

	store, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	if store == nil {
		log.Warn().Msg("DATABASE_DSN not set, issuance attempts will not be persisted")
	}

	pinner := pinning.NewFromConfig(cfg)
	if !pinner.Enabled() {
		log.Warn().Msg("pinning credentials not set, certificates will carry no storage reference")
	}

	issue := &usecase.IssueCertificate{
		Ledger:          ledgerClient,
		Renderer:        render.New(cfg.ArtifactDir),
		Pinner:          pinner,
		ExplorerBaseURL: cfg.ExplorerBaseURL,
		Log:             log,
	}
	if store != nil {
		issue.Attempts = db.NewIssuanceAttemptRepository(store)
		issue.Receipts = db.NewIssuanceReceiptRepository(store)
	}
	if cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromBundlePath(ctx, cfg.PolicyBundlePath, cfg.PolicyBundleID)
		if err != nil {
			log.Fatal().Err(err).Msg("policy bundle load failed")
		}
		issue.Policy = engine
		log.Info().Str("bundle_id", cfg.PolicyBundleID).Str("bundle_hash", engine.BundleHash()).Msg("policy bundle loaded")
	}

	deps := httpinfra.Deps{
		Issue:   issue,
		Resolve: &usecase.ResolveCertificate{Ledger: ledgerClient, Pinner: pinner},
	}
	if cfg.RedisAddr != "" {
		limiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("redis rate limiter init failed")
		}
		deps.RateLimiter = limiter
	} else {
		deps.RateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}

	srv := httpinfra.NewServer(cfg, deps, log)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(parsed)
}
