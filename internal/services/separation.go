package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/platform/obs"
	"separation-route-service/internal/ports"

	"github.com/google/uuid"
)

// SeparationService owns the scan-resolution path: it is the single
// writer of a session's scanned count, and the store is the source of
// truth for what counts as a duplicate.
type SeparationService struct {
	Sessions ports.SessionRepository
	Routes   ports.RouteRepository
	Index    ports.AssignmentIndex
	Scans    ports.ScanStore
}

// StartSession resumes the active session or opens a fresh one sized to
// the current package index. The caller always receives server state,
// never a locally cached copy.
func (s *SeparationService) StartSession(ctx context.Context) (_ *domain.SeparationSession, err error) {
	defer obs.Time(ctx, "separation.StartSession")(&err)

	active, err := s.Sessions.Active(ctx)
	if err == nil {
		return active, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("start session: load active session: %w", err)
	}

	total, err := s.Index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("start session: count indexed packages: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("start session: %w", ErrNoRoutes)
	}

	sess, err := domain.NewSeparationSession(uuid.NewString(), total)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: persist session: %w", err)
	}

	return sess, nil
}

// ActiveSession returns the session currently accepting scans, or
// ErrNoActiveSession when separation has not been started.
func (s *SeparationService) ActiveSession(ctx context.Context) (*domain.SeparationSession, error) {
	sess, err := s.Sessions.Active(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("active session: %w", err)
	}
	return sess, nil
}

// ResolveScan resolves one submitted barcode for the session.
//
// A repeated barcode is not an error: the store's recording is
// idempotent, so the same result is returned with an unchanged count
// and the session can never double-increment. Unknown codes and missing
// sessions fail without touching any state.
func (s *SeparationService) ResolveScan(ctx context.Context, sessionID, barcode string) (_ *domain.ScanResult, _ *domain.ScanProgress, err error) {
	defer obs.Time(ctx, "separation.ResolveScan")(&err)

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, nil, ErrEmptyBarcode
	}

	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil, ErrNoActiveSession
		}
		return nil, nil, fmt.Errorf("resolve scan: load session: %w", err)
	}

	assignment, err := s.Index.Lookup(ctx, barcode)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil, fmt.Errorf("resolve scan: %q: %w", barcode, ErrUnknownBarcode)
		}
		return nil, nil, fmt.Errorf("resolve scan: lookup %q: %w", barcode, err)
	}

	route, err := s.Routes.Get(ctx, assignment.RouteID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve scan: load route %s: %w", assignment.RouteID, err)
	}

	counted, err := s.Scans.Record(ctx, sessionID, barcode)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve scan: record scan: %w", err)
	}

	if counted {
		// First scanned package of a route moves it pending -> separating.
		// Losing the race to another screen is fine: someone moved it.
		err := s.Routes.UpdateStatus(
			ctx, route.RouteID,
			[]domain.RouteStatus{domain.StatusPending},
			domain.StatusSeparating,
			time.Now(),
		)
		if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return nil, nil, fmt.Errorf("resolve scan: mark route separating: %w", err)
		}

		// Once every package of the route is separated, the route itself
		// is ready, without waiting for the rest of the session.
		routeScanned, err := s.Scans.CountForRoute(ctx, sessionID, route.RouteID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve scan: count route scans: %w", err)
		}
		if routeScanned >= route.TotalPackages {
			err := s.Routes.UpdateStatus(
				ctx, route.RouteID,
				[]domain.RouteStatus{domain.StatusPending, domain.StatusSeparating},
				domain.StatusReady,
				time.Now(),
			)
			if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
				return nil, nil, fmt.Errorf("resolve scan: mark route ready: %w", err)
			}
		}
	}

	scanned, err := s.Scans.Count(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve scan: count scans: %w", err)
	}

	if err := sess.RecordProgress(scanned); err != nil {
		return nil, nil, fmt.Errorf("resolve scan: %w", err)
	}
	if counted {
		if err := s.Sessions.SetScanned(ctx, sessionID, scanned); err != nil {
			return nil, nil, fmt.Errorf("resolve scan: persist progress: %w", err)
		}
	}

	address := truncateAddress(assignment.Address, 60)

	result := &domain.ScanResult{
		Barcode:       barcode,
		RouteID:       route.RouteID,
		RouteColor:    route.Color,
		DelivererName: route.AssignedToName,
		Sequence:      assignment.Sequence,
		TotalInRoute:  route.TotalPackages,
		Address:       address,
	}
	progress := &domain.ScanProgress{
		Scanned:    scanned,
		Percentage: sess.Progress(),
	}

	return result, progress, nil
}

// truncateAddress caps the display address at max characters. Cutting
// on a rune boundary keeps accented street names valid UTF-8.
func truncateAddress(address string, max int) string {
	if utf8.RuneCountInString(address) <= max {
		return address
	}

	runes := []rune(address)
	return string(runes[:max])
}

// CompleteSession finalizes separation. Only callable once every package
// has been scanned; all routes still separating become ready.
func (s *SeparationService) CompleteSession(ctx context.Context, sessionID string) (err error) {
	defer obs.Time(ctx, "separation.CompleteSession")(&err)

	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("complete session: load session: %w", err)
	}

	if !sess.IsComplete() {
		return fmt.Errorf(
			"complete session: %d of %d packages scanned: %w",
			sess.ScannedPackages, sess.TotalPackages, ErrSessionIncomplete,
		)
	}

	now := time.Now()
	if err := s.Sessions.Complete(ctx, sessionID, now); err != nil {
		return fmt.Errorf("complete session: persist completion: %w", err)
	}

	routes, err := s.Routes.List(ctx)
	if err != nil {
		return fmt.Errorf("complete session: list routes: %w", err)
	}

	for _, r := range routes {
		err := s.Routes.UpdateStatus(
			ctx, r.RouteID,
			[]domain.RouteStatus{domain.StatusPending, domain.StatusSeparating},
			domain.StatusReady,
			now,
		)
		if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return fmt.Errorf("complete session: mark route %s ready: %w", r.RouteID, err)
		}
	}

	return nil
}
