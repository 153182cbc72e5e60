package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"pinksync/internal/audit"
	"pinksync/internal/broker"
	"pinksync/internal/capability"
	"pinksync/internal/compliance"
	"pinksync/internal/delivery"
	"pinksync/internal/event"
	jwttoken "pinksync/internal/jwt_token"
	"pinksync/internal/platform/config"
	"pinksync/internal/platform/httpserver"
	"pinksync/internal/platform/logger"
	"pinksync/internal/platform/metrics"
	platformredis "pinksync/internal/platform/redis"
	"pinksync/internal/stream"
	"pinksync/internal/subscription"
	httptransport "pinksync/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event archive: Postgres when configured, in-memory otherwise.
	var eventStore event.Store = event.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgStore := event.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("ensure event schema", "error", err)
			os.Exit(1)
		}
		eventStore = pgStore
		log.Info("event archive backed by postgres")
	}

	// Subscription store: Redis when configured, in-memory otherwise.
	var subStore subscription.Store = subscription.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		subStore = subscription.NewRedisStore(redisClient.Client)
		log.Info("subscriptions backed by redis")
	}

	caps := capability.NewService(capability.NewInMemoryStore())
	engine := compliance.NewEngine(compliance.NewInMemoryStateStore(), caps)
	subs := subscription.NewService(subStore)

	dispatcher := delivery.NewDispatcher(
		cfg.Dispatch.Workers,
		cfg.Dispatch.Timeout,
		cfg.Dispatch.Buffer,
		m,
		log,
	)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("dispatcher stopped", "error", err)
		}
	}()

	var streamSink broker.StreamSink
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := stream.NewPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := publisher.Close(closeCtx); err != nil {
				log.Error("flush stream publisher", "error", err)
			}
		}()
		streamSink = publisher
		log.Info("accepted events streamed to kafka", "topic", cfg.Kafka.Topic)
	}

	auditStore := audit.NewInMemoryStore()
	auditor := audit.NewPublisher(auditStore, 1024)
	auditWorker := audit.NewWorker(auditStore, auditor.Inbox(), log)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	b := broker.New(eventStore, engine, caps, subs, log, broker.Options{
		Delivery: dispatcher,
		Stream:   streamSink,
		Auditor:  auditor,
		Metrics:  m,
	})

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "pinksync", "pinksync-auditors")
	handler := httptransport.NewHandler(b, log, m, jwttoken.NewJWTServiceAdapter(jwtService))
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting pinksync broker", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
