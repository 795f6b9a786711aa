package main

import (
	"girlfanz/pkg/config"
	app "girlfanz/services/feed/internal/app"

	_ "girlfanz/services/feed/docs" // Swagger docs
)

// @title           Feed Service API
// @version         1.0
// @description     Cursor-paginated feed with subscription, paywall and age-verification rules

// @host      localhost:8003
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Optional; anonymous requests get the anonymous viewer.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Validate secrets for services that use JWT and signed cursors
	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}
	if cfg.Feed.CursorSecret == "" {
		panic("FEED_CURSOR_SECRET must be set in environment variables")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
