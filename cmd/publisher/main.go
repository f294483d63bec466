// Command publisher consumes identity-management admin events from Kafka,
// translates them into authorization tuples, and writes them to OpenFGA
// per tenant. Business logic lives in the internal packages; main only wires
// dependencies and owns the process lifecycle.
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

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/event"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/identity"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/openfga"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/config"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/httpserver"
	kafkaconsumer "github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/kafka/consumer"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/logger"
	platformredis "github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/platform/redis"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/publisher"
	"github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/registry"
	httptransport "github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/transport/http"
	transportkafka "github.com/razi-ahmad/keycloak-openfga-event-publisher/internal/transport/kafka"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Env)

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}

	var lookup identity.Lookup = identity.NewKeycloakClient(cfg.Keycloak)
	if rdb != nil {
		lookup = identity.NewCachedLookup(lookup, identity.NewRedisRoleCache(rdb.Client), cfg.Redis.TTL, log)
	}

	reg := registry.New(func(ctx context.Context) (registry.Client, error) {
		return openfga.NewClient(ctx, cfg.OpenFGA)
	}, log)

	svc := publisher.New(
		event.NewClassifier(lookup),
		reg,
		lookup,
		log,
		publisher.WithMetrics(publisher.NewMetrics()),
	)

	consumer, err := kafkaconsumer.New(kafkaconsumer.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Group:   cfg.Kafka.Group,
	}, transportkafka.NewListener(svc, log), log)
	if err != nil {
		log.Error("kafka setup failed", "error", err)
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := consumer.EnsureTopic(startupCtx); err != nil {
		cancel()
		log.Error("admin event topic unavailable", "topic", cfg.Kafka.Topic, "error", err)
		os.Exit(1)
	}
	cancel()

	checks := map[string]httptransport.ReadyCheck{}
	if rdb != nil {
		checks["redis"] = rdb.Health
	}
	srv := httpserver.New(cfg.HTTPAddr, httptransport.NewRouter(checks))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting openfga event publisher",
		"http_addr", cfg.HTTPAddr,
		"topic", cfg.Kafka.Topic,
		"openfga_api_url", cfg.OpenFGA.APIURL,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(ctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		consumer.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
