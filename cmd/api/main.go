package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/action-stage/internal/config"
	"github.com/jwebster45206/action-stage/internal/handlers"
	"github.com/jwebster45206/action-stage/internal/logger"
	"github.com/jwebster45206/action-stage/internal/middleware"
	"github.com/jwebster45206/action-stage/internal/services"
	"github.com/jwebster45206/action-stage/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Action Stage API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	generator, err := services.NewGenerator(cfg, log)
	if err != nil {
		log.Error("Failed to create generator", "error", err)
		os.Exit(1)
	}

	// Initialize the model on startup
	if initializer, ok := generator.(services.ModelInitializer); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		err := initializer.InitModel(ctx)
		cancel()
		if err != nil {
			log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
			os.Exit(1)
		}
	}

	roster, err := storage.LoadRoster(cfg.ProfilesDir, log)
	if err != nil {
		log.Error("Failed to load profiles", "error", err, "dir", cfg.ProfilesDir)
		os.Exit(1)
	}
	log.Info("Profiles loaded",
		"characters", len(roster.Characters),
		"users", len(roster.Users))

	var store storage.StateStore
	if cfg.RedisURL != "" {
		redisStore, err := storage.NewRedisStore(cfg.RedisURL, cfg.StateTTL, log)
		if err != nil {
			log.Error("Failed to create state store", "error", err)
			os.Exit(1)
		}
		storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = redisStore.WaitForConnection(storeCtx)
		storeCancel()
		if err != nil {
			log.Error("Failed to connect to state store", "error", err)
			os.Exit(1)
		}
		store = redisStore
	} else {
		log.Info("REDIS_URL not set; callers must carry message_state themselves")
	}

	stages := handlers.NewStages(roster, generator, log)
	mux := handlers.NewRouter(stages, store, generator, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("Error closing state store", "error", err)
		}
	}

	log.Info("Server exited")
}
