package api

import (
	"net/http"

	"waypoint-route-service/internal/api/handlers"
	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/ports"
	"waypoint-route-service/internal/solver"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Calc     *distmatrix.Calculator
	Solver   *solver.Solver
	Repo     ports.WaypointRepository
	Store    ports.StatusStore
	Defaults handlers.OptimizeDefaults
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	optHandler := &handlers.OptimizeHandler{
		Calc:     deps.Calc,
		Solver:   deps.Solver,
		Repo:     deps.Repo,
		Store:    deps.Store,
		Defaults: deps.Defaults,
	}
	statusHandler := &handlers.StatusHandler{Store: deps.Store}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Post("/optimize", optHandler.Optimize)
	r.Route("/sessions/{session}", func(r chi.Router) {
		r.Post("/optimize", optHandler.OptimizeSession)
		r.Get("/status", statusHandler.Get)
		r.Put("/status/{system}", statusHandler.Put)
	})

	return r
}
