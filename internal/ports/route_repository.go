package ports

import (
	"context"
	"time"

	"separation-route-service/internal/domain"
)

// Port: a boundary for retrieving and mutating routes.
type RouteRepository interface {
	List(ctx context.Context) ([]*domain.Route, error)
	Get(ctx context.Context, routeID string) (*domain.Route, error)

	// UpdateStatus moves a route to a new status only when its current
	// status is in from. The compare over from happens in the store so a
	// concurrent operator cannot race past the state machine; a mismatch
	// yields domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, routeID string, from []domain.RouteStatus, to domain.RouteStatus, at time.Time) error

	// Assign records a server-confirmed deliverer assignment.
	Assign(ctx context.Context, routeID, delivererID, delivererName string) error
}

// Port: the package -> route index consulted during separation.
type AssignmentIndex interface {
	// Lookup resolves a barcode, or ErrNotFound for unknown codes.
	Lookup(ctx context.Context, barcode string) (*domain.PackageAssignment, error)
	// Count returns the total number of indexed packages.
	Count(ctx context.Context) (int, error)
}

// Port: idempotent per-session scan recording.
type ScanStore interface {
	// Record marks a barcode as scanned for the session. A repeated
	// barcode is a no-op and reports counted=false.
	Record(ctx context.Context, sessionID, barcode string) (counted bool, err error)
	Count(ctx context.Context, sessionID string) (int, error)
	// CountForRoute reports how many of the route's packages the session
	// has scanned so far.
	CountForRoute(ctx context.Context, sessionID, routeID string) (int, error)
}
