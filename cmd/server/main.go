package main

import (
	"context"
	"log"

	"github.com/buzztalks/backend/internal/router"
	"github.com/buzztalks/backend/pkg/config"
	"github.com/buzztalks/backend/pkg/firebase"
	"github.com/buzztalks/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	fbApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Firebase unavailable, continuing with first-party auth only: %v", err)
		fbApp = &firebase.App{}
	}

	e := echo.New()
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e)
	router.SetupRoutes(e, cfg, db, fbApp.AuthClient)

	log.Printf("Starting server on port %s (%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
