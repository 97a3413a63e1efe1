package api

import (
	"net/http"

	"separation-route-service/internal/api/handlers"
	"separation-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	separation *services.SeparationService,
	lifecycle *services.LifecycleService,
	assignment *services.AssignmentService,
) http.Handler {
	mux := http.NewServeMux()

	sepHandler := &handlers.SeparationHandler{Separation: separation}
	routeHandler := &handlers.RouteHandler{
		Lifecycle:  lifecycle,
		Assignment: assignment,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/separation/start", sepHandler.Start)
	mux.HandleFunc("/separation/scan", sepHandler.Scan)
	mux.HandleFunc("/separation/complete", sepHandler.Complete)
	mux.HandleFunc("/session/routes_status", routeHandler.Statuses)
	mux.HandleFunc("/route/", routeHandler.Transition)
	mux.HandleFunc("/routes/assign", routeHandler.Assign)
	mux.HandleFunc("/routes/send", routeHandler.Send)

	return loggingMiddleware(authMiddleware(mux))
}
