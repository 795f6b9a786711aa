package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"girlfanz/pkg/cache"
	"girlfanz/pkg/config"
	"girlfanz/pkg/jwt"
	"girlfanz/pkg/logger"
	"girlfanz/pkg/middleware"
	chatHTTP "girlfanz/services/chat/internal/controller/http"
	"girlfanz/services/chat/internal/hub"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "girlfanz/services/chat/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	jwtService  *jwt.Service
	hub         *hub.Hub
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithLevel(cfg.LogLevel).With("service", "chat")

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (rate limiting disabled)", err)
		redisClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		hub:         hub.New(log),
	}, nil
}

func (a *App) Run() error {
	go a.hub.Run()

	chatHandler := chatHTTP.NewChatHandler(a.hub, a.jwtService, a.log, a.cfg.ChatHandshakeTimeout)

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           NewRouter(chatHandler, a.redisClient),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Chat service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func NewRouter(chatHandler *chatHTTP.ChatHandler, redisClient *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication happens inside the socket handshake.
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(redisClient, 30, time.Minute))
	api.GET("/ws", chatHandler.HandleWebSocket)

	return r
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down chat service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown does not wait for hijacked connections; stopping the hub closes them.
	err := a.httpServer.Shutdown(ctx)
	a.hub.Stop()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	a.log.Info("Chat service exited")
	_ = a.log.Sync()
	return nil
}
