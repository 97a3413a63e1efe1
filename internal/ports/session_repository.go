package ports

import (
	"context"
	"errors"
	"time"

	"separation-route-service/internal/domain"
)

// ErrNotFound is returned by repositories when the requested entity
// does not exist.
var ErrNotFound = errors.New("not found")

// Port: a boundary for persisting separation sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.SeparationSession) error
	Get(ctx context.Context, sessionID string) (*domain.SeparationSession, error)
	// Active returns the most recent session that has not been completed,
	// or ErrNotFound when none exists.
	Active(ctx context.Context) (*domain.SeparationSession, error)
	SetScanned(ctx context.Context, sessionID string, scanned int) error
	Complete(ctx context.Context, sessionID string, at time.Time) error
}
