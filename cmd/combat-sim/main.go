package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/dnd-combat-sim/internal/api"
	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/logging"
	"github.com/ericogr/dnd-combat-sim/internal/version"
)

func main() {
	// Path may be provided via COMBATSIM_CONFIG; otherwise an optional
	// combatsim.{json,yaml} in the working directory is used.
	cfg := loadConfigOrExit(os.Getenv("COMBATSIM_CONFIG"))
	logging.SetLevel(cfg.LogLevel)

	cat := loadCatalogOrExit(cfg.CatalogPath)
	repo := createRepositoryOrExit(cfg.DBPath, cat)
	runner := createRunner(cfg, cat, repo)

	router := gin.New()
	router.Use(gin.Recovery())
	api.NewSimulationHandler(runner).Register(router)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		logging.Info("Server started", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress, "version": version.String()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to start server", err, nil)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SimulationTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", err, nil)
	}
	logging.Info("Server stopped", nil)
}
