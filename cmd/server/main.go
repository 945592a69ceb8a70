// cmd/server is the application entry point. It loads the schedule and
// attendee directory, wires together all layers, and starts the HTTP
// server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/patterns42/workshop-registration/internal/attendee"
	"github.com/patterns42/workshop-registration/internal/config"
	"github.com/patterns42/workshop-registration/internal/database"
	"github.com/patterns42/workshop-registration/internal/handler"
	"github.com/patterns42/workshop-registration/internal/repository"
	"github.com/patterns42/workshop-registration/internal/schedule"
	"github.com/patterns42/workshop-registration/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Load the schedule (remote with local fallback). ───────────────
	parser := schedule.NewParser(cfg.AgendaURL, cfg.LocalSchedulePath)
	sched, err := parser.Load(ctx)
	if err != nil {
		log.Fatalf("schedule: %v", err)
	}
	if len(sched.Days) == 0 {
		log.Fatal("schedule: no days parsed, refusing to serve")
	}
	log.Printf("✓ Schedule loaded: %d days, %d selectable sessions", len(sched.Days), len(sched.AllSessions()))

	// ── 2. Load the attendee directory. ──────────────────────────────────
	userdata, err := os.Open(cfg.UserdataPath)
	if err != nil {
		log.Fatalf("attendee source: %v", err)
	}
	dir, err := attendee.ParseDirectory(userdata, attendee.Identity{Name: cfg.TestName, Hash: cfg.TestHash})
	userdata.Close()
	if err != nil {
		log.Fatalf("attendee source: %v", err)
	}
	log.Printf("✓ Attendee directory loaded: %d entries (test identity included)", dir.Len())

	// ── 3. Connect to PostgreSQL and bootstrap the schema. ───────────────
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to PostgreSQL")

	regRepo := repository.NewRegistrationRepository(pool)
	if err := regRepo.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ── 4. Wire up layers. ───────────────────────────────────────────────
	regSvc := service.NewRegistrationService(regRepo, sched, dir)
	regHandler := handler.NewRegistrationHandler(regSvc, cfg.SlotIDs)

	// ── 5. Build the router. ─────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS

	r.Get("/health", handler.HealthCheck)
	r.Get("/", regHandler.Root)
	r.Get("/stats", regHandler.Statistics)
	r.Get("/{hash}", regHandler.SelectionPage)
	r.Post("/{hash}", regHandler.SaveSessions)

	r.Route("/admin", func(r chi.Router) {
		r.Use(chimiddleware.BasicAuth("admin", map[string]string{
			cfg.AdminUsername: cfg.AdminPassword,
		}))
		r.Get("/registrations", regHandler.AdminExport)
	})

	// ── 6. Start server with graceful shutdown. ──────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
