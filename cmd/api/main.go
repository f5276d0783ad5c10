package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hostbook/internal/adapters/http_server"
	"hostbook/internal/adapters/mailer"
	"hostbook/internal/adapters/observability"
	redisad "hostbook/internal/adapters/redis"
	"hostbook/internal/app"
	"hostbook/internal/auth"
	"hostbook/internal/domain"
	"hostbook/internal/shared"
	"hostbook/internal/storage/memory"
	mysqlrepo "hostbook/internal/storage/mysql"
)

type store interface {
	domain.BookingRepository
	domain.GuestRepository
	domain.OwnerRepository
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	shutdownTracing, err := observability.InitTracing(ctx, "hostbook-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init failed")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// storage
	var repo store
	if cfg.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN empty: using in-memory store")
		repo = memory.New()
	} else {
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	}

	// cache
	var cache domain.Cache = redisad.Noop{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; reads fall through to storage")
		}
		defer rc.Close()
		cache = rc
	}

	// notifications
	var notifier domain.Notifier = mailer.LogNotifier{L: log.Logger}
	if cfg.MailerEnabled() {
		mc, err := mailer.New(cfg.MailerBase, mailer.Options{
			ServiceID:   cfg.MailerServiceID,
			TemplateID:  cfg.MailerTemplateID,
			PublicKey:   cfg.MailerPublicKey,
			AccessToken: cfg.MailerAccessToken,
		}, cfg.MailerRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("mailer init failed")
		}
		notifier = mc
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	q := app.NewQueryService(repo, repo, cache, cfg.CacheTTL)
	c := app.NewCommandService(repo, repo, cache, notifier)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:      q,
		C:      c,
		Auth:   auth.NewService(repo, tokens),
		Tokens: tokens,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
