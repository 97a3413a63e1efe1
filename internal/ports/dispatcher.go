package ports

import (
	"context"

	"separation-route-service/internal/domain"
)

// Port: notifies a courier that their fully-assigned route is on its way.
type RouteDispatcher interface {
	DispatchRoute(ctx context.Context, route *domain.Route) error
}
