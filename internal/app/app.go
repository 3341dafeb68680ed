package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/cache"
	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/internal/database"
	"github.com/veltra/mixfeed/internal/engine"
	"github.com/veltra/mixfeed/internal/handlers"
	"github.com/veltra/mixfeed/internal/messaging"
	"github.com/veltra/mixfeed/internal/metrics"
	"github.com/veltra/mixfeed/internal/middleware"
	"github.com/veltra/mixfeed/internal/search"
	"github.com/veltra/mixfeed/internal/store"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	engine   *engine.Engine
	search   *search.Engine
	consumer *messaging.InteractionConsumer
	handlers *handlers.Handlers
	router   *gin.Engine

	consumerCancel context.CancelFunc
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	m := metrics.New(prometheus.DefaultRegisterer)
	cacheStore := cache.NewRedisStore(db.Redis)

	contentStore := store.NewContentStore(db.PG, app.logger)
	interactionStore := store.NewInteractionStore(db.PG, app.logger)
	similarityStore := store.NewSimilarityStore(db.PG, app.logger)
	socialStore := store.NewSocialStore(db.Neo4j, app.logger)

	providers := engine.NewCandidateProviders(contentStore, interactionStore, similarityStore,
		socialStore, cacheStore, &cfg.Engine, app.logger, m)
	profiler := engine.NewActivityProfiler(interactionStore, cacheStore, &cfg.Engine, app.logger)
	detector := engine.NewColdStartDetector(profiler, interactionStore, cacheStore, &cfg.Engine, app.logger)
	augmenter := engine.NewSocialScoreAugmenter(socialStore, &cfg.Engine, app.logger)
	app.engine = engine.NewEngine(providers, detector, augmenter, cacheStore, &cfg.Engine, app.logger, m)

	app.search = search.NewEngine(contentStore, &cfg.Search, app.logger, m)

	health := handlers.NewHealthHandler(db, app.logger)
	app.handlers = handlers.New(app.logger, app.engine, app.search, health)

	app.startConsumer()
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// startConsumer runs the interaction-event consumer in the background for
// cache invalidation. The consumer is best-effort: its failure never takes
// the API down.
func (a *App) startConsumer() {
	a.consumer = messaging.NewInteractionConsumer(a.config, a.engine, a.logger)

	ctx, cancel := context.WithCancel(context.Background())
	a.consumerCancel = cancel

	go func() {
		if err := a.consumer.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.WithError(err).Error("Interaction consumer stopped")
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.consumerCancel != nil {
		a.consumerCancel()
	}
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing interaction consumer")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)

	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		feed := api.Group("/feed")
		{
			feed.GET("", a.handlers.Feed.GetAnonymous)
			feed.GET("/:userId", a.handlers.Feed.Get)
			feed.GET("/:userId/scroll", a.handlers.Feed.Scroll)
		}

		api.GET("/search", a.handlers.Search.Get)

		api.POST("/cache/invalidate/:userId", a.handlers.Cache.Invalidate)
	}

	a.router = router
}
