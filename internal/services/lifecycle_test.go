package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"separation-route-service/internal/domain"
)

func TestLifecycleStartAndFinish(t *testing.T) {
	routes := newFakeRouteRepo(
		&domain.Route{RouteID: "route-1", Status: domain.StatusPending},
	)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := &LifecycleService{Routes: routes, Now: func() time.Time { return fixed }}
	ctx := context.Background()

	started, err := svc.Start(ctx, "route-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Status != domain.StatusInTransit {
		t.Fatalf("expected in_transit, got %q", started.Status)
	}
	if started.StartedAt == nil || !started.StartedAt.Equal(fixed) {
		t.Fatalf("expected started_at %v, got %v", fixed, started.StartedAt)
	}

	finished, err := svc.Finish(ctx, "route-1")
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if finished.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %q", finished.Status)
	}
	if finished.FinishedAt == nil || !finished.FinishedAt.Equal(fixed) {
		t.Fatalf("expected finished_at %v, got %v", fixed, finished.FinishedAt)
	}
}

func TestLifecycleStartRejectsCompletedRoute(t *testing.T) {
	routes := newFakeRouteRepo(
		&domain.Route{RouteID: "route-1", Status: domain.StatusCompleted},
	)
	svc := &LifecycleService{Routes: routes}

	_, err := svc.Start(context.Background(), "route-1")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	r, _ := routes.Get(context.Background(), "route-1")
	if r.Status != domain.StatusCompleted {
		t.Fatalf("rejected start mutated route to %q", r.Status)
	}
}

func TestLifecycleFinishRequiresInTransit(t *testing.T) {
	for _, status := range []domain.RouteStatus{
		domain.StatusPending, domain.StatusSeparating, domain.StatusReady, domain.StatusCompleted,
	} {
		routes := newFakeRouteRepo(
			&domain.Route{RouteID: "route-1", Status: status},
		)
		svc := &LifecycleService{Routes: routes}

		_, err := svc.Finish(context.Background(), "route-1")
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("status %q: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

type fakeStatusCache struct {
	routes      []*domain.Route
	ok          bool
	sets        int
	invalidates int
}

func (f *fakeStatusCache) Get(ctx context.Context) ([]*domain.Route, bool, error) {
	return f.routes, f.ok, nil
}

func (f *fakeStatusCache) Set(ctx context.Context, routes []*domain.Route) error {
	f.routes, f.ok = routes, true
	f.sets++
	return nil
}

func (f *fakeStatusCache) Invalidate(ctx context.Context) error {
	f.routes, f.ok = nil, false
	f.invalidates++
	return nil
}

func TestLifecycleStatusesServesAndFillsCache(t *testing.T) {
	routes := newFakeRouteRepo(
		&domain.Route{RouteID: "route-1", Status: domain.StatusReady},
	)
	cache := &fakeStatusCache{}
	svc := &LifecycleService{Routes: routes, Cache: cache}
	ctx := context.Background()

	first, err := svc.Statuses(ctx)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(first) != 1 || cache.sets != 1 {
		t.Fatalf("expected one route and a cache fill, got %d routes, %d sets", len(first), cache.sets)
	}

	// A second read must come from the cache.
	delete(routes.routes, "route-1")
	second, err := svc.Statuses(ctx)
	if err != nil {
		t.Fatalf("Statuses (cached): %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected cached route list, got %d routes", len(second))
	}
}

func TestLifecycleTransitionsInvalidateCache(t *testing.T) {
	routes := newFakeRouteRepo(
		&domain.Route{RouteID: "route-1", Status: domain.StatusReady},
	)
	cache := &fakeStatusCache{ok: true}
	svc := &LifecycleService{Routes: routes, Cache: cache}

	if _, err := svc.Start(context.Background(), "route-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if cache.invalidates != 1 {
		t.Fatalf("expected one invalidation, got %d", cache.invalidates)
	}
}
