// main wires the accountability engine: stores, services, handlers, and the
// HTTP lifecycle. Business logic lives in the internal feature packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"mandate/internal/activity"
	"mandate/internal/blob"
	claimsadapters "mandate/internal/claims/adapters"
	claimshandler "mandate/internal/claims/handler"
	claimmetrics "mandate/internal/claims/metrics"
	claimservice "mandate/internal/claims/service"
	claimstore "mandate/internal/claims/store"
	"mandate/internal/constituency"
	jwttoken "mandate/internal/jwt_token"
	ledgerhandler "mandate/internal/ledger/handler"
	ledgermetrics "mandate/internal/ledger/metrics"
	ledgerservice "mandate/internal/ledger/service"
	ledgerstore "mandate/internal/ledger/store"
	"mandate/internal/platform/config"
	"mandate/internal/platform/httpserver"
	"mandate/internal/platform/logger"
	"mandate/internal/platform/metrics"
	"mandate/internal/platform/postgres"
	platformredis "mandate/internal/platform/redis"
	"mandate/internal/registry"
	"mandate/internal/succession"
	"mandate/internal/timeline"
	httptransport "mandate/internal/transport/http"
	"mandate/internal/transport/http/shared"
	"mandate/pkg/platform/tx"
)

const activityOutboxSize = 1024

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("engine stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Storage selection: PostgreSQL when a DSN is configured, in-memory
	// otherwise (development, tests).
	var (
		positionStore registry.Store
		claimStore    claimstore.Store
		activityStore activity.Store
		promiseStore  ledgerstore.PromiseStore
		projectStore  ledgerstore.ProjectStore
		questionStore ledgerstore.QuestionStore
		txRunner      tx.Runner = tx.PassthroughRunner{}
	)
	if db != nil {
		positionStore = registry.NewPostgres(db)
		claimStore = claimstore.NewPostgres(db)
		activityStore = activity.NewPostgresStore(db)
		ledgerPG := ledgerstore.NewPostgres(db)
		promiseStore = ledgerPG.Promises()
		projectStore = ledgerPG.Projects()
		questionStore = ledgerPG.Questions()
		txRunner = tx.NewSQLRunner(db)
	} else {
		positionStore = registry.NewInMemoryStore()
		claimStore = claimstore.NewInMemory()
		activityStore = activity.NewInMemoryStore()
		ledgerMem := ledgerstore.NewInMemory()
		promiseStore = ledgerMem.Promises()
		projectStore = ledgerMem.Projects()
		questionStore = ledgerMem.Questions()
		if err := registry.Seed(ctx, positionStore); err != nil {
			return err
		}
		log.Info("using in-memory stores, seeded reference positions")
	}

	// Activity publishing: entries land in the store synchronously and fan
	// out to Kafka through a bounded outbox drained by a worker.
	publisher, err := activity.NewKafkaPublisher(cfg.Kafka)
	if err != nil {
		return err
	}
	var outbox chan activity.Entry
	if publisher != nil {
		outbox = make(chan activity.Entry, activityOutboxSize)
		defer publisher.Close()
	}
	emitter := activity.NewEmitter(activityStore, outbox, log)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "mandate", "mandate")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	holderReader := claimsadapters.NewHolderReader(claimStore)
	registryOpts := []registry.Option{registry.WithMetrics(registry.NewMetrics())}
	if redisClient != nil {
		registryOpts = append(registryOpts,
			registry.WithSearchCache(registry.NewSearchCache(redisClient.Client, config.PositionSearchCacheTTL)))
	}
	registryService := registry.NewService(positionStore, holderReader, registryOpts...)

	claimsService := claimservice.New(
		claimStore,
		positionStore,
		claimservice.AllowAllMembers{},
		emitter,
		log,
		claimservice.WithMetrics(claimmetrics.New()),
		claimservice.WithBlobStore(blob.NewInMemoryStore()),
		claimservice.WithTxRunner(txRunner),
	)

	ledgerService := ledgerservice.New(
		promiseStore,
		projectStore,
		questionStore,
		claimStore,
		positionStore,
		constituency.NewStaticLocations(),
		emitter,
		log,
		ledgerservice.WithMetrics(ledgermetrics.New()),
		ledgerservice.WithTxRunner(txRunner),
	)

	aggregator := timeline.NewAggregator(log, timeline.NewActivitySource(activityStore))
	successionService := succession.New(claimStore, promiseStore, questionStore, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Metrics:    metrics.New(),
		Validator:  validator,
		Registry:   registry.NewHandler(registryService, log),
		Claims:     claimshandler.New(claimsService, log),
		Ledger:     ledgerhandler.New(ledgerService, log),
		Timeline:   timeline.NewHandler(aggregator, log),
		Succession: succession.NewHandler(successionService, log),
		Health:     healthRoute(db, redisClient),
	})

	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	if publisher != nil {
		worker := activity.NewWorker(publisher, outbox, log)
		g.Go(func() error { return worker.Run(gctx) })
	}
	g.Go(func() error {
		log.Info("accountability engine listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func healthRoute(db *sql.DB, redisClient *platformredis.Client) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			status := map[string]string{"status": "ok"}
			code := http.StatusOK
			if db != nil {
				if err := db.PingContext(req.Context()); err != nil {
					status["postgres"] = "down"
					code = http.StatusServiceUnavailable
				} else {
					status["postgres"] = "up"
				}
			}
			if redisClient != nil {
				if err := redisClient.Health(req.Context()); err != nil {
					status["redis"] = "down"
					code = http.StatusServiceUnavailable
				} else {
					status["redis"] = "up"
				}
			}
			if code != http.StatusOK {
				status["status"] = "degraded"
			}
			shared.WriteJSON(w, code, status)
		})
	}
}
