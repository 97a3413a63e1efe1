package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"separation-route-service/internal/api/dto"
	"separation-route-service/internal/domain"
	"separation-route-service/internal/ports"
	"separation-route-service/internal/services"
)

type RouteHandler struct {
	Lifecycle  *services.LifecycleService
	Assignment *services.AssignmentService
}

// Statuses serves the route list the management screens poll.
func (h *RouteHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	routes, err := h.Lifecycle.Statuses(r.Context())
	if err != nil {
		log.Printf("route statuses failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := make([]dto.RouteStatusResponse, 0, len(routes))
	for _, rt := range routes {
		res = append(res, dto.RouteStatusResponse{
			ID:             rt.RouteID,
			Color:          rt.Color,
			AssignedToName: rt.AssignedToName,
			Status:         string(rt.Status),
			TotalPackages:  rt.TotalPackages,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Transition dispatches /route/{id}/start and /route/{id}/finish.
// Both are one-way: a started route cannot be un-started, a finished
// one cannot be reopened.
func (h *RouteHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/route/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	routeID, action := parts[0], parts[1]

	var (
		route *domain.Route
		err   error
	)
	switch action {
	case "start":
		route, err = h.Lifecycle.Start(r.Context(), routeID)
	case "finish":
		route, err = h.Lifecycle.Finish(r.Context(), routeID)
	default:
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "route not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			writeError(w, r, http.StatusConflict, "route cannot "+action+" from its current status")
		default:
			log.Printf("route %s %s failed: %v", routeID, action, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RouteStatusResponse{
		ID:             route.RouteID,
		Color:          route.Color,
		AssignedToName: route.AssignedToName,
		Status:         string(route.Status),
		TotalPackages:  route.TotalPackages,
	})
}

// Assign records a deliverer for a route.
func (h *RouteHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AssignRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if strings.TrimSpace(req.RouteID) == "" || strings.TrimSpace(req.DelivererID) == "" {
		writeError(w, r, http.StatusBadRequest, "route_id and deliverer_id are required")
		return
	}

	err := h.Assignment.Assign(r.Context(), req.RouteID, req.DelivererID, req.DelivererName)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "route not found")
			return
		}
		log.Printf("assign route failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "assigned"})
}

// Send dispatches every route to its courier. Refused while any route
// still lacks a deliverer.
func (h *RouteHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	err := h.Assignment.Dispatch(r.Context())
	if err != nil {
		var unassigned *services.UnassignedRouteError
		switch {
		case errors.As(err, &unassigned):
			writeError(w, r, http.StatusConflict, unassigned.Error())
		case errors.Is(err, services.ErrNoRoutes):
			writeError(w, r, http.StatusConflict, "no routes to dispatch")
		default:
			log.Printf("dispatch routes failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "dispatched"})
}
