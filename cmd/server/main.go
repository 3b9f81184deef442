// Command server wires the candidate service: config, stores, period cache,
// change-event publisher, HTTP router. Business logic lives in the internal
// packages; main stays small.
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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pubcred/internal/candidate/events"
	candidatehandler "pubcred/internal/candidate/handler"
	candidatemetrics "pubcred/internal/candidate/metrics"
	candidateservice "pubcred/internal/candidate/service"
	candidatestore "pubcred/internal/candidate/store/candidate"
	"pubcred/internal/period"
	"pubcred/internal/platform/config"
	"pubcred/internal/platform/httpserver"
	"pubcred/internal/platform/logger"
	platformredis "pubcred/internal/platform/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var candidateStore candidateservice.CandidateStore
	var periodStore period.Store
	var db *sql.DB

	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		candidateStore = candidatestore.NewPostgres(db)
		periodStore = period.NewPostgres(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		candidateStore = candidatestore.NewInMemory()
		periodStore = period.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		periodStore = period.NewCachedStore(periodStore, redisClient, cfg.Redis.PeriodTTL)
	}

	periodService, err := period.NewService(periodStore)
	if err != nil {
		log.Error("failed to build period service", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	service, err := candidateservice.New(candidateStore, periodService,
		candidateservice.WithPublisher(publisher),
		candidateservice.WithMetrics(candidatemetrics.New()),
		candidateservice.WithRetryAttempts(cfg.UpsertRetryAttempts),
	)
	if err != nil {
		log.Error("failed to build candidate service", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	candidatehandler.New(service, log).Register(router)
	period.NewHandler(periodService, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting pubcred", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
