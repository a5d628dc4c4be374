package main

import (
	_ "boardflow/docs"
	"boardflow/internal/config"
	"boardflow/internal/server"
)

// @title           Boardflow API
// @version         1.0
// @description     Collaborative boards with role-based access and card automations.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	logger := server.NewLogger(cfg)

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
