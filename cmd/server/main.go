package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"propfinder/server/config"
	"propfinder/server/internal/api"
	"propfinder/server/internal/cache"
	"propfinder/server/internal/database"
	"propfinder/server/internal/engine"
	"propfinder/server/internal/indexing"
	"propfinder/server/internal/processor"
	"propfinder/server/internal/queue"
	"propfinder/server/internal/scheduler"
	"propfinder/server/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithError(err).Warn("Invalid log level, using info")
	}
	gin.SetMode(cfg.Server.GinMode)

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load market catalog")
	}
	if err := catalog.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid market catalog")
	}

	if cfg.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0o755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}
	logger.WithField("driver", cfg.Database.Driver).Info("Opening database")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	var contentStore store.Store = store.NewSQLStore(db.GetDB(), logger)

	var meiliStore *store.MeiliStore
	if cfg.Search.Backend == "meilisearch" {
		client := meilisearch.NewClient(meilisearch.ClientConfig{
			Host:   cfg.Meilisearch.Host,
			APIKey: cfg.Meilisearch.APIKey,
		})
		meiliStore = store.NewMeiliStore(client, catalog.SearchIndexes(), logger)
		contentStore = meiliStore
		logger.WithField("host", cfg.Meilisearch.Host).Info("Using Meilisearch content store")
	}

	var cachedStore *cache.RedisStore
	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("Redis is not reachable, cache lookups will fall through")
		}
		cancel()

		cachedStore = cache.NewRedisStore(contentStore, rdb, cfg.Cache.TTL, logger)
		contentStore = cachedStore
	}

	searchEngine := engine.New(contentStore, engine.Config{
		PageSize:     cfg.Search.PageSize,
		FetchLimit:   cfg.Search.FetchLimit,
		FetchTimeout: cfg.Search.FetchTimeout,
		Markets:      catalog.MarketIDs(),
	}, logger)

	// The search index is fed from the database through the batch queue
	var reindexer api.Reindexer
	if meiliStore != nil {
		batchQueue := queue.NewBatchQueue(cfg.BatchProcessing.QueueSize, logger)
		batchProcessor := processor.NewBatchProcessor(meiliStore, batchQueue, cfg, logger)
		batchProcessor.Start()
		defer batchProcessor.Stop()

		syncer := indexing.NewSyncer(db, batchQueue, cfg.BatchProcessing.MaxBatchSize, logger).
			WithPreparer(meiliStore)
		if cachedStore != nil {
			syncer.WithInvalidator(cachedStore)
		}

		sched := scheduler.NewScheduler(syncer, catalog.MarketIDs(), cfg.Indexing.Schedule, cfg.Indexing.OnStartup, logger)
		if err := sched.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start index scheduler")
		}
		defer sched.Stop()
		reindexer = sched
	}

	handler := api.NewHandler(searchEngine, reindexer, catalog, logger)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
