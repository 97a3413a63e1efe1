package services

import "errors"

var (
	// ErrEmptyBarcode: blank or whitespace-only input is dropped before
	// it ever reaches the index.
	ErrEmptyBarcode = errors.New("barcode must not be empty")

	// ErrUnknownBarcode: the code is not part of any current route.
	ErrUnknownBarcode = errors.New("barcode not found in current routes")

	// ErrNoActiveSession: scanning requires an open separation session.
	ErrNoActiveSession = errors.New("no active separation session")

	// ErrSessionIncomplete: finalizing requires every package scanned.
	ErrSessionIncomplete = errors.New("separation is not complete")

	// ErrNoRoutes: the assignment gate is never satisfied by an empty
	// route set.
	ErrNoRoutes = errors.New("no routes to dispatch")
)

// UnassignedRouteError names the route blocking dispatch so the operator
// knows exactly which assignment is missing.
type UnassignedRouteError struct {
	RouteID string
}

func (e *UnassignedRouteError) Error() string {
	return "route " + e.RouteID + " has no assigned deliverer"
}
