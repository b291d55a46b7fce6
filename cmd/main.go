// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-registrations/internal/config"
	"github.com/Shivanand-hulikatti/event-registrations/internal/database"
	"github.com/Shivanand-hulikatti/event-registrations/internal/handler"
	"github.com/Shivanand-hulikatti/event-registrations/internal/repository"
	"github.com/Shivanand-hulikatti/event-registrations/internal/service"
	"github.com/Shivanand-hulikatti/event-registrations/internal/telemetry"
)

func main() {
	if err := run(context.Background()); err != nil {
		config.Exitf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to PostgreSQL")

	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.DB.DSN()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Println("schema up to date")
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	db := database.New(pool, cfg.DB.QueryTimeout)
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	regRepo := repository.NewRegistrationRepository(db)

	eventSvc := service.NewEventService(eventRepo, regRepo)
	admissionSvc := service.NewAdmissionService(eventRepo, regRepo, time.Now)
	userSvc := service.NewUserService(userRepo, regRepo)

	router := handler.NewRouter(
		handler.NewEventHandler(eventSvc, admissionSvc),
		handler.NewUserHandler(userSvc),
	)

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until SIGINT/SIGTERM or the listener fails.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Println("server stopped")
	return nil
}
