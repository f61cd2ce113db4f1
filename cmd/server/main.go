package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"odyssey/internal/autonomy"
	autonomyhandler "odyssey/internal/autonomy/handler"
	autonomymetrics "odyssey/internal/autonomy/metrics"
	"odyssey/internal/constitution"
	"odyssey/internal/jwttoken"
	"odyssey/internal/knowledge"
	"odyssey/internal/platform/config"
	"odyssey/internal/platform/httpserver"
	"odyssey/internal/platform/logger"
	"odyssey/internal/platform/postgres"
	redisplatform "odyssey/internal/platform/redis"
	"odyssey/internal/remediation"
	httptransport "odyssey/internal/transport/http"
	auditpg "odyssey/pkg/platform/audit/store/postgres"
	"odyssey/pkg/platform/audit/publisher"
	"odyssey/pkg/platform/audit/worker"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal context packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	auditPublisher, err := publisher.New(auditpg.New(db), log)
	if err != nil {
		log.Error("audit publisher setup failed", "error", err)
		os.Exit(1)
	}

	var cache remediation.Cache
	if rdb != nil {
		cache = remediation.NewRedisCache(rdb.Client)
	}
	var platform remediation.Platform
	if cfg.Autonomy.PlatformAdminURL != "" {
		platform = remediation.NewAdminClient(cfg.Autonomy.PlatformAdminURL)
	}
	actions := remediation.NewActions(cache, db, platform, log)

	autonomyMetrics := autonomymetrics.New()
	engine, err := autonomy.New(
		autonomy.Config{
			Latitude:             cfg.Autonomy.Latitude,
			FailOpenOnStateFetch: cfg.Autonomy.FailOpenOnStateFetch,
			Authorize:            autonomy.SinglePrincipal(cfg.Autonomy.AuthorizedPrincipal),
		},
		autonomy.Deps{
			Registry:  remediation.DefaultRegistry(),
			Actions:   actions,
			State:     constitution.NewPostgresStore(db),
			Knowledge: knowledge.NewPostgresStore(db),
			Auditor:   auditPublisher,
			Logger:    log,
			Metrics:   autonomyMetrics,
		},
	)
	if err != nil {
		log.Error("autonomy engine setup failed", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewService(cfg.Server.JWTSigningKey, "odyssey", "odyssey-operators")

	router := httptransport.NewRouter(httptransport.Deps{
		Autonomy:        autonomyhandler.New(engine, log, autonomyMetrics),
		Audit:           httptransport.NewAuditHandler(auditPublisher, log),
		TokenValidator:  jwtService,
		DetectorKeyHash: cfg.Server.DetectorKeyHash,
		DB:              db,
		Redis:           rdb,
		Logger:          log,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		relay, err := worker.NewRelay(db, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, cfg.Kafka.PollInterval, log)
		if err != nil {
			log.Error("audit relay setup failed", "error", err)
			os.Exit(1)
		}
		defer relay.Close()
		if err := relay.EnsureTopic(ctx); err != nil {
			log.Error("audit topic setup failed", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return relay.Run(ctx) })
	}

	g.Go(func() error {
		log.Info("starting odyssey", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
