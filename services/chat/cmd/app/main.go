package main

import (
	"girlfanz/pkg/config"
	app "girlfanz/services/chat/internal/app"

	_ "girlfanz/services/chat/docs" // Swagger docs
)

// @title           Chat Service API
// @version         1.0
// @description     WebSocket relay for direct messages between fans and creators

// @host      localhost:8009
// @BasePath  /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
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
