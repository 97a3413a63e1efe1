package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/platform/obs"
	"separation-route-service/internal/ports"
)

// LifecycleService issues start/finish transitions for routes and serves
// the polled status view. The repository re-checks every transition, so
// a cached status on one operator screen can never push a route through
// an illegal edge.
type LifecycleService struct {
	Routes ports.RouteRepository
	Cache  ports.StatusCache // optional
	Now    func() time.Time  // defaults to time.Now
}

func (s *LifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start moves a route to in_transit. Permitted only from pending,
// separating or ready; the operator has already confirmed, since a
// courier physically departs.
func (s *LifecycleService) Start(ctx context.Context, routeID string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "lifecycle.Start")(&err)

	route, err := s.Routes.Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("start route: load %s: %w", routeID, err)
	}

	if !route.CanStart() {
		return nil, fmt.Errorf("start route %s: status %q: %w", routeID, route.Status, domain.ErrInvalidTransition)
	}

	err = s.Routes.UpdateStatus(ctx, routeID, domain.StartableStatuses(), domain.StatusInTransit, s.now())
	if err != nil {
		return nil, fmt.Errorf("start route %s: %w", routeID, err)
	}

	s.invalidate(ctx)
	return s.Routes.Get(ctx, routeID)
}

// Finish moves a route to completed. Permitted only from in_transit.
func (s *LifecycleService) Finish(ctx context.Context, routeID string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "lifecycle.Finish")(&err)

	route, err := s.Routes.Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("finish route: load %s: %w", routeID, err)
	}

	if !route.CanFinish() {
		return nil, fmt.Errorf("finish route %s: status %q: %w", routeID, route.Status, domain.ErrInvalidTransition)
	}

	err = s.Routes.UpdateStatus(ctx, routeID, []domain.RouteStatus{domain.StatusInTransit}, domain.StatusCompleted, s.now())
	if err != nil {
		return nil, fmt.Errorf("finish route %s: %w", routeID, err)
	}

	s.invalidate(ctx)
	return s.Routes.Get(ctx, routeID)
}

// Statuses returns the route list for the polled management view,
// served from the cache when fresh.
func (s *LifecycleService) Statuses(ctx context.Context) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "lifecycle.Statuses")(&err)

	if s.Cache != nil {
		routes, ok, err := s.Cache.Get(ctx)
		if err != nil {
			log.Printf("status cache read failed: %v", err)
		} else if ok {
			return routes, nil
		}
	}

	routes, err := s.Routes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("route statuses: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, routes); err != nil {
			log.Printf("status cache write failed: %v", err)
		}
	}

	return routes, nil
}

// A failed invalidation only delays visibility by one cache TTL, so it
// is logged rather than surfaced.
func (s *LifecycleService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("status cache invalidate failed: %v", err)
	}
}
