package ports

import (
	"context"

	"separation-route-service/internal/domain"
)

// Port: short-lived cache in front of the polled route-status view.
// Every operator screen polls the same list every few seconds; the cache
// absorbs that load without letting a status change go stale for long.
type StatusCache interface {
	// Get returns the cached list and whether it was present.
	Get(ctx context.Context) ([]*domain.Route, bool, error)
	Set(ctx context.Context, routes []*domain.Route) error
	// Invalidate drops the cached list after a confirmed transition.
	Invalidate(ctx context.Context) error
}
