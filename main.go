package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gtdash/app"
	"gtdash/domain/core"
	"gtdash/internal"
	"gtdash/internal/config"
	"gtdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The dataset is built before any listener starts; a bad input file aborts startup
	rt, err := app.NewRuntime(ctx, appConfig, logger)
	if err != nil {
		if core.IsLoadError(err) {
			log.Fatalf("Incident data could not be loaded, check DATA_SOURCE and DATA_FILE: %v", err)
		}
		log.Fatalf("Failed to initialize dataset: %v", err)
	}
	defer rt.Close()

	matcher, err := rt.Matcher(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize question matcher: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)
	server, err := ui.NewServer(rt.Snapshot, rt.Charts, matcher)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	apiServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	adminServer := &http.Server{
		Addr:              ":" + appConfig.Profiling.Port,
		Handler:           ui.NewAdminApp(rt.Snapshot, ui.AdminConfig{Profiling: appConfig.Profiling.Enabled}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if appConfig.Profiling.Enabled {
			log.Printf("Admin server with profiling on :%s (go tool pprof http://localhost:%s/debug/pprof/profile?seconds=30)",
				appConfig.Profiling.Port, appConfig.Profiling.Port)
		} else {
			log.Printf("Admin server on :%s", appConfig.Profiling.Port)
		}
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Admin server failed: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting dashboard API on port %s", appConfig.Server.Port)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown: %v", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Admin server shutdown: %v", err)
	}
}
