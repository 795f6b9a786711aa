package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisCache "girlfanz/pkg/cache"
	"girlfanz/pkg/config"
	"girlfanz/pkg/database"
	"girlfanz/pkg/jwt"
	"girlfanz/pkg/logger"
	"girlfanz/pkg/middleware"
	"girlfanz/pkg/queue"
	"girlfanz/pkg/s3"
	"girlfanz/services/feed/internal/consumer"
	feedHTTP "girlfanz/services/feed/internal/controller/http"
	"girlfanz/services/feed/internal/cursor"
	"girlfanz/services/feed/internal/repo/cache"
	"girlfanz/services/feed/internal/repo/persistent"
	"girlfanz/services/feed/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	_ "girlfanz/services/feed/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server

	cancel context.CancelFunc
	group  *errgroup.Group
	ctx    context.Context
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithLevel(cfg.LogLevel).With("service", "feed")

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := redisCache.NewRedisClient(cfg)
	if err != nil {
		// Feed works without redis: no page cache and no rate limiting.
		log.Warn("Failed to connect to redis: %v (continuing without cache)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("Failed to create S3 client: %v (media URLs disabled)", err)
		s3Client = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (continuing without events)", err)
		queueClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	postRepo := persistent.NewPostRepository(a.db)
	purchaseRepo := persistent.NewPurchaseRepository(a.db)
	identityRepo := persistent.NewIdentityRepository(a.db)

	var pages cache.PageCache
	if a.redisClient != nil && a.cfg.Feed.PageCacheTTL > 0 {
		pages = cache.NewRedisPageCache(a.redisClient, a.cfg.Feed.PageCacheTTL)
	}

	var signer usecase.MediaSigner
	if a.s3Client != nil {
		signer = a.s3Client
	}

	// Initialize use cases
	feedUseCase := usecase.NewFeedUseCase(
		postRepo,
		purchaseRepo,
		pages,
		signer,
		cursor.NewCodec(a.cfg.Feed.CursorSecret),
		usecase.OptionsFromPolicy(a.cfg.Feed),
		a.log,
	)
	identity := usecase.NewIdentityProvider(identityRepo, a.log)

	// Initialize HTTP handlers
	feedHandler := feedHTTP.NewFeedHandler(feedUseCase, identity, a.log)

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           NewRouter(feedHandler, a.jwtService, a.redisClient),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.group, a.ctx = errgroup.WithContext(a.ctx)

	a.group.Go(func() error {
		a.log.Info("Feed service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Failed to start server: %v", err)
			return err
		}
		return nil
	})

	if a.queueClient != nil {
		handler := consumer.NewEventHandler(purchaseRepo, pages, a.log)
		a.group.Go(func() error {
			return a.queueClient.Consume(a.ctx, consumer.QueueName, consumer.RoutingKeys, handler.Handle)
		})
	}

	return nil
}

// NewRouter mounts the feed API. Authentication is optional: anonymous
// requests are served as the anonymous viewer, invalid tokens are rejected.
func NewRouter(feedHandler *feedHTTP.FeedHandler, jwtService *jwt.Service, redisClient *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, 200, time.Minute)) // 200 requests per minute
	{
		api.GET("/feed", feedHandler.GetFeed)
		api.GET("/creators/:creator_id/feed", feedHandler.GetCreatorFeed)
	}

	return r
}

func (a *App) Wait() {
	// Wait for interrupt signal or for the server/consumer to fail
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-a.ctx.Done():
	}
	a.log.Info("Shutting down feed service...")
}

func (a *App) Shutdown() error {
	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var shutdownErr error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		shutdownErr = err
	}

	a.cancel()
	if err := a.group.Wait(); err != nil {
		a.log.Error("Feed service stopped with error: %v", err)
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Feed service exited")
	_ = a.log.Sync()
	return shutdownErr
}
