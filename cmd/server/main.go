// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amparo/internal/audit"
	"amparo/internal/blob"
	claimhandler "amparo/internal/claim/handler"
	claimmetrics "amparo/internal/claim/metrics"
	claimservice "amparo/internal/claim/service"
	claimstore "amparo/internal/claim/store"
	"amparo/internal/eligibility"
	"amparo/internal/intake/intent"
	paymenthandler "amparo/internal/payment/handler"
	paymentmetrics "amparo/internal/payment/metrics"
	paymentservice "amparo/internal/payment/service"
	paymentstore "amparo/internal/payment/store"
	"amparo/internal/platform/config"
	"amparo/internal/platform/httpserver"
	"amparo/internal/platform/logger"
	"amparo/internal/platform/metrics"
	"amparo/internal/platform/postgres"
	"amparo/internal/platform/redis"
	"amparo/internal/platform/token"
	policystore "amparo/internal/policy/store"
	"amparo/internal/rules"
	httptransport "amparo/internal/transport/http"
	"amparo/internal/vigency"
	vigencystore "amparo/internal/vigency/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	policies := policystore.NewPostgres(db)
	payments := paymentstore.NewPostgres(db)
	claims := claimstore.NewClaimPostgres(db)
	documents := claimstore.NewDocumentPostgres(db)
	periods := vigencystore.NewPostgres(db)
	ruleStore := rules.NewPostgres(db)
	auditStore := audit.NewPostgres(db)

	var sinks []audit.Sink
	var kafkaSink *audit.KafkaSink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err = audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("audit kafka sink failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, kafkaSink)
	}
	auditor := audit.NewPublisher(auditStore, log, sinks...)

	var intents intent.Store
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		intents = intent.NewRedis(redisClient.Client)
	}

	httpMetrics := metrics.New()
	validator := token.NewHSValidator(cfg.JWTSigningKey)

	claimSvc := claimservice.New(claimservice.Config{
		Claims:      claims,
		Documents:   documents,
		Policies:    policies,
		Vigency:     vigency.NewGuard(periods),
		Eligibility: eligibility.NewGuard(policies, payments),
		Rules:       ruleStore,
		Blobs:       blob.NewFilesystem(cfg.BlobRoot),
		Intents:     intents,
		Auditor:     auditor,
		Metrics:     claimmetrics.New(),
		IntentTTL:   cfg.IntentTTL,
	})
	paymentSvc := paymentservice.New(policies, payments, ruleStore, auditor, paymentmetrics.New())

	if intents != nil {
		sweeper := intent.NewSweeper(intents, documents, log, cfg.SweepInterval, cfg.IntentTTL)
		go sweeper.Run(ctx)
	}

	router := httptransport.NewRouter(
		claimhandler.New(claimSvc, log, httpMetrics, validator),
		paymenthandler.New(paymentSvc, log, httpMetrics, validator),
	)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting amparo", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(shutdownCtx); err != nil {
			log.Error("audit sink close failed", "error", err)
		}
	}
}
