package main

import (
	"log"

	"github.com/dailyroutine/internal/config"
	"github.com/dailyroutine/internal/db"
	"github.com/dailyroutine/internal/handler"
	"github.com/dailyroutine/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// optional root admin from env, no-op when unset
	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword, cfg.SuperRootEmail, db.RoleAdmin); err != nil {
		log.Fatalf("failed to ensure root user: %v", err)
	}

	api := handler.NewAPI(db.DB, cfg)
	r := router.SetupRouter(api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
