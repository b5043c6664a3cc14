// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"match-workers/internal/cache"
	"match-workers/internal/common/aws"
	"match-workers/internal/common/camunda"
	"match-workers/internal/common/config"
	"match-workers/internal/common/database"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/observability"
	"match-workers/internal/commute"
	"match-workers/internal/matching"
	"match-workers/internal/repository"
	"match-workers/internal/search"

	// Data Access Workers (2)
	qe "match-workers/internal/workers/data-access/query-elasticsearch"
	qp "match-workers/internal/workers/data-access/query-postgresql"

	// Matching Workers (3)
	em "match-workers/internal/workers/matching/evaluate-match"
	emb "match-workers/internal/workers/matching/evaluate-match-batch"
	nhm "match-workers/internal/workers/matching/notify-hot-match"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	engine, err := matching.NewEngine(cfg.Scoring)
	if err != nil {
		zapLog.Fatal("invalid scoring configuration", zap.Error(err))
	}

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		Logger:         log,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			RetryConfig: &camunda.RetryConfig{
				MaxRetries: 2,
				BaseDelay:  500 * time.Millisecond,
				MaxDelay:   2 * time.Second,
			},
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	if topo, err := zeebe.Topology(ctx); err == nil {
		zapLog.Info("Zeebe client connected successfully",
			zap.String("gatewayVersion", topo.GatewayVersion),
			zap.Int("brokers", topo.Brokers),
			zap.Int32("partitions", topo.Partitions),
		)
	}

	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// ==========================
	// Matching collaborators
	// ==========================

	profiles := repository.NewProfileStore(pg.DB)
	registry := cache.NewRegistryCache(repository.NewDomainStore(pg.DB), redis.Client,
		cfg.Cache.KeyPrefix, time.Duration(cfg.Cache.RegistryTTL)*time.Second, log)
	resolver := commute.NewResolver(repository.NewCommuteStore(pg.DB), cfg.Batch.LookupRate, cfg.Batch.LookupBurst)
	matchCache := cache.NewMatchCache(redis.Client, cfg.Cache.KeyPrefix,
		time.Duration(cfg.Cache.MatchTTL)*time.Second, log)
	batch := matching.NewBatch(engine, registry, resolver, matching.BatchOptions{
		Concurrency:   cfg.Batch.Concurrency,
		SlowThreshold: config.GetDuration(cfg.Batch.SlowThreshold),
	}, log)

	var index emb.Indexer
	if cfg.MatchIndex.Enabled {
		mi := search.NewMatchIndex(esClient.Client, cfg.MatchIndex.Index, cfg.MatchIndex.Refresh, log)
		if err := mi.Ensure(ctx); err != nil {
			zapLog.Fatal("match index setup failed", zap.String("index", mi.Name()), zap.Error(err))
		}
		index = mi
	}

	if _, err := registry.Registry(ctx); err != nil {
		// Workers retry through DOMAIN_REGISTRY_UNAVAILABLE; startup continues.
		zapLog.Warn("domain registry not loadable at startup", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// ==========================
	// Workers
	// ==========================

	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, cfg.Workers[taskType], handler, log); w != nil {
			workers = append(workers, w)
		}
	}

	if cfg.Workers[em.TaskType].Enabled {
		handler := em.NewHandler(em.LoadConfig(cfg), em.Dependencies{
			Engine:        engine,
			Profiles:      profiles,
			Registry:      registry,
			Resolver:      resolver,
			Cache:         matchCache,
			Observability: obs,
		}, log)
		start(em.TaskType, handler.Handle)
	}

	if cfg.Workers[emb.TaskType].Enabled {
		handler := emb.NewHandler(emb.LoadConfig(cfg), emb.Dependencies{
			Batch:         batch,
			Profiles:      profiles,
			Index:         index,
			Observability: obs,
		}, log)
		start(emb.TaskType, handler.Handle)
	}

	if cfg.Workers[nhm.TaskType].Enabled {
		var (
			mailer nhm.Mailer
			sms    nhm.SMSSender
		)
		if cfg.Notifications.Email.Enabled {
			ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
			mailer = ses
		}
		if cfg.Notifications.SMS.Enabled {
			sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SNS client", zap.Error(err))
			}
			sms = sns
		}
		handler := nhm.NewHandler(nhm.LoadConfig(cfg), repository.NewRecipientStore(pg.DB), mailer, sms, log)
		start(nhm.TaskType, handler.Handle)
	}

	if cfg.Workers[qp.TaskType].Enabled {
		handler := qp.NewHandler(qp.LoadConfig(cfg), pg.DB, log)
		start(qp.TaskType, handler.Handle)
	}

	if cfg.Workers[qe.TaskType].Enabled {
		handler := qe.NewHandler(qe.LoadConfig(cfg), esClient.Client, log)
		start(qe.TaskType, handler.Handle)
	}

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// ==========================
	// Health & metrics
	// ==========================

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"status": "ready", "time": time.Now().Format(time.RFC3339)}
		code := http.StatusOK
		for name, check := range map[string]func(context.Context) error{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
			"zeebe":    zeebe.HealthCheck,
		} {
			if err := check(r.Context()); err != nil {
				checks[name] = err.Error()
				checks["status"] = "not ready"
				code = http.StatusServiceUnavailable
			}
		}
		writeStatus(w, code, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := cfg.Observability.MetricsAddress
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
