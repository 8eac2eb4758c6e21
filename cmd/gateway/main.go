package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	api "github.com/lcmaths/practice-api/internal/api/http"
	"github.com/lcmaths/practice-api/internal/attempt"
	"github.com/lcmaths/practice-api/internal/auth"
	"github.com/lcmaths/practice-api/internal/catalog"
	"github.com/lcmaths/practice-api/internal/config"
	"github.com/lcmaths/practice-api/internal/db"
	"github.com/lcmaths/practice-api/internal/evaluate"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// Tier 2 is disabled when no API key is configured.
	var remote evaluate.Remote
	if cfg.GeminiAPIKey != "" {
		remote = evaluate.NewGemini(evaluate.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.GeminiTimeout,
		})
	} else {
		log.Printf("GOOGLE_API_KEY not set; answer feedback uses the local heuristic only")
	}

	router := api.NewRouter(api.Deps{
		Env:           cfg.Env,
		Auth:          auth.NewStore(dbh, cfg.SessionTTL),
		Catalog:       catalog.NewStore(dbh),
		Attempts:      attempt.NewStore(dbh),
		Evaluator:     evaluate.New(remote),
		AdminEmails:   cfg.AdminEmails,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.CookieSecure,
	})

	log.Printf("listening on %s (env=%s, db=%s)", cfg.HTTPAddr, cfg.Env, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, router))
}
