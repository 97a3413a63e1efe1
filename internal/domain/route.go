package domain

import (
	"errors"
	"fmt"
	"time"
)

// Lifecycle of a courier's route. A route only ever moves forward:
// pending -> separating -> ready -> in_transit -> completed.
type RouteStatus string

const (
	StatusPending    RouteStatus = "pending"
	StatusSeparating RouteStatus = "separating"
	StatusReady      RouteStatus = "ready"
	StatusInTransit  RouteStatus = "in_transit"
	StatusCompleted  RouteStatus = "completed"
)

var ErrInvalidTransition = errors.New("invalid route status transition")

var transitions = map[RouteStatus]map[RouteStatus]struct{}{
	StatusPending: {
		StatusSeparating: {},
		StatusReady:      {},
		StatusInTransit:  {},
	},
	StatusSeparating: {
		StatusReady:     {},
		StatusInTransit: {},
	},
	StatusReady: {
		StatusInTransit: {},
	},
	StatusInTransit: {
		StatusCompleted: {},
	},
}

// CanTransition reports whether the lifecycle allows moving from cur to next.
func CanTransition(cur, next RouteStatus) bool {
	allowed, ok := transitions[cur]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// StartableStatuses lists every status from which a route may depart.
func StartableStatuses() []RouteStatus {
	return []RouteStatus{StatusPending, StatusSeparating, StatusReady}
}

func (s RouteStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSeparating, StatusReady, StatusInTransit, StatusCompleted:
		return true
	}
	return false
}

// A courier's assigned bundle of stops for one session.
// Status is only mutated through Start/Finish (or the repository's
// guarded update); assignment fields stay empty until an operator
// assigns a deliverer.
type Route struct {
	RouteID        string
	Color          string
	AssignedToID   string
	AssignedToName string
	Status         RouteStatus
	TotalPackages  int
	StartedAt      *time.Time
	FinishedAt     *time.Time
}

func (r *Route) Assigned() bool {
	return r.AssignedToID != ""
}

// CanStart reports whether the courier may physically depart.
func (r *Route) CanStart() bool {
	return CanTransition(r.Status, StatusInTransit)
}

// CanFinish reports whether the route may be marked completed.
func (r *Route) CanFinish() bool {
	return CanTransition(r.Status, StatusCompleted)
}

// Start moves the route to in_transit. Irreversible real-world action,
// so callers are expected to have confirmed with the operator first.
func (r *Route) Start(now time.Time) error {
	if !r.CanStart() {
		return fmt.Errorf("start route %s: status %q: %w", r.RouteID, r.Status, ErrInvalidTransition)
	}

	r.Status = StatusInTransit
	r.StartedAt = &now
	return nil
}

// Finish moves the route to completed.
func (r *Route) Finish(now time.Time) error {
	if !r.CanFinish() {
		return fmt.Errorf("finish route %s: status %q: %w", r.RouteID, r.Status, ErrInvalidTransition)
	}

	r.Status = StatusCompleted
	r.FinishedAt = &now
	return nil
}
