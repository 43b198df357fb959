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

	"waypoint-route-service/internal/api"
	"waypoint-route-service/internal/api/handlers"
	"waypoint-route-service/internal/app"
	"waypoint-route-service/internal/config"
	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/solver"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis) behind ports and starts the HTTP server.
func main() {
	// The TSP worker is this same binary; it must not start a server.
	solver.MaybeRunWorker()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	mode, err := distmatrix.ParseMode(cfg.Optimizer.DistanceMode)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg.Store)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()

	tsp, err := app.NewSolver(cfg.Optimizer)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(api.Deps{
		Calc:   app.NewCalculator(cfg.Optimizer),
		Solver: tsp,
		Repo:   stores.Repo,
		Store:  stores.Statuses,
		Defaults: handlers.OptimizeDefaults{
			JumpRange:     cfg.Optimizer.JumpRange,
			ReturnToStart: cfg.Optimizer.ReturnToStart,
			DistanceMode:  mode,
		},
	})

	// Writes must outlive the TSP budget plus distance computation on large sessions.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Optimizer.TSPTimeout + 2*time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("op=server.shutdown err=%v", err)
		}
	}()

	log.Printf("Server listening addr=:%s driver=%s redis=%t tsp_timeout=%s",
		cfg.Server.Port, cfg.Store.Driver, cfg.Store.RedisAddr != "", cfg.Optimizer.TSPTimeout)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
