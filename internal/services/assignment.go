package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/platform/obs"
	"separation-route-service/internal/ports"
)

// AssignmentService builds the route -> deliverer map and gates the
// dispatch action on its completeness. Assignments are persisted before
// they are ever reflected back, so a failed call leaves the previous
// (possibly empty) assignment in place.
type AssignmentService struct {
	Routes     ports.RouteRepository
	Dispatcher ports.RouteDispatcher
}

// Assign records a deliverer for a route after server confirmation.
func (s *AssignmentService) Assign(ctx context.Context, routeID, delivererID, delivererName string) (err error) {
	defer obs.Time(ctx, "assignment.Assign")(&err)

	routeID = strings.TrimSpace(routeID)
	delivererID = strings.TrimSpace(delivererID)
	if routeID == "" || delivererID == "" {
		return errors.New("assign route: route id and deliverer id are required")
	}

	if _, err := s.Routes.Get(ctx, routeID); err != nil {
		return fmt.Errorf("assign route: load %s: %w", routeID, err)
	}

	if err := s.Routes.Assign(ctx, routeID, delivererID, delivererName); err != nil {
		return fmt.Errorf("assign route %s: %w", routeID, err)
	}

	return nil
}

// AllAssigned reports whether every optimized route has a deliverer.
// An empty route set never satisfies the gate.
func AllAssigned(routes []*domain.Route) bool {
	if len(routes) == 0 {
		return false
	}
	for _, r := range routes {
		if !r.Assigned() {
			return false
		}
	}
	return true
}

// AssignmentMap derives routeID -> delivererID from the route list.
func AssignmentMap(routes []*domain.Route) map[string]string {
	m := make(map[string]string, len(routes))
	for _, r := range routes {
		if r.Assigned() {
			m[r.RouteID] = r.AssignedToID
		}
	}
	return m
}

// Dispatch sends every route to its courier. Refused while any route
// lacks an assignment; the error names the first blocking route.
func (s *AssignmentService) Dispatch(ctx context.Context) (err error) {
	defer obs.Time(ctx, "assignment.Dispatch")(&err)

	routes, err := s.Routes.List(ctx)
	if err != nil {
		return fmt.Errorf("dispatch routes: list: %w", err)
	}

	if len(routes) == 0 {
		return ErrNoRoutes
	}
	for _, r := range routes {
		if !r.Assigned() {
			return &UnassignedRouteError{RouteID: r.RouteID}
		}
	}

	for _, r := range routes {
		if err := s.Dispatcher.DispatchRoute(ctx, r); err != nil {
			return fmt.Errorf("dispatch routes: route %s: %w", r.RouteID, err)
		}
	}

	return nil
}
