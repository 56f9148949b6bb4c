package api

import (
	"net/http"
	"saferoom-locator/internal/api/handlers"

	"go.uber.org/zap"
)

// Deps are the read and command sides the local API exposes.
type Deps struct {
	Engine handlers.Engine
	View   handlers.ViewReader
	Routes handlers.RouteReader
	Status handlers.StatusReader
	Logger *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	mapHandler := &handlers.MapHandler{
		Engine: d.Engine,
		View:   d.View,
		Routes: d.Routes,
		Status: d.Status,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/viewport", mapHandler.Viewport)
	mux.HandleFunc("/shelters", mapHandler.Shelters)
	mux.HandleFunc("/shelters/nearest", mapHandler.Nearest)
	mux.HandleFunc("/shelters/{id}/select", mapHandler.Select)
	mux.HandleFunc("/recenter", mapHandler.Recenter)
	mux.HandleFunc("/tracking/restart", mapHandler.RestartTracking)
	mux.HandleFunc("/selection", mapHandler.Selection)
	mux.HandleFunc("/status", mapHandler.StatusReport)

	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return loggingMiddleware(log.Named("api"), mux)
}
