package services

import (
	"context"
	"fmt"
	"time"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/ports"
)

// In-memory fakes shared by the service tests.

type fakeSessionRepo struct {
	sessions  map[string]*domain.SeparationSession
	completed map[string]bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:  map[string]*domain.SeparationSession{},
		completed: map[string]bool{},
	}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.SeparationSession) error {
	cp := *s
	f.sessions[s.SessionID] = &cp
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, id string) (*domain.SeparationSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session: %w", ports.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) Active(ctx context.Context) (*domain.SeparationSession, error) {
	for id, s := range f.sessions {
		if !f.completed[id] {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("active session: %w", ports.ErrNotFound)
}

func (f *fakeSessionRepo) SetScanned(ctx context.Context, id string, scanned int) error {
	s, ok := f.sessions[id]
	if !ok {
		return ports.ErrNotFound
	}
	return s.RecordProgress(scanned)
}

func (f *fakeSessionRepo) Complete(ctx context.Context, id string, at time.Time) error {
	if _, ok := f.sessions[id]; !ok {
		return ports.ErrNotFound
	}
	f.completed[id] = true
	return nil
}

type fakeRouteRepo struct {
	routes map[string]*domain.Route
}

func newFakeRouteRepo(routes ...*domain.Route) *fakeRouteRepo {
	f := &fakeRouteRepo{routes: map[string]*domain.Route{}}
	for _, r := range routes {
		cp := *r
		f.routes[r.RouteID] = &cp
	}
	return f
}

func (f *fakeRouteRepo) List(ctx context.Context) ([]*domain.Route, error) {
	out := make([]*domain.Route, 0, len(f.routes))
	for _, r := range f.routes {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRouteRepo) Get(ctx context.Context, id string) (*domain.Route, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, fmt.Errorf("get route: %w", ports.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRouteRepo) UpdateStatus(ctx context.Context, id string, from []domain.RouteStatus, to domain.RouteStatus, at time.Time) error {
	r, ok := f.routes[id]
	if !ok {
		return fmt.Errorf("update status: %w", ports.ErrNotFound)
	}

	for _, s := range from {
		if r.Status == s {
			r.Status = to
			switch to {
			case domain.StatusInTransit:
				t := at
				r.StartedAt = &t
			case domain.StatusCompleted:
				t := at
				r.FinishedAt = &t
			}
			return nil
		}
	}

	return fmt.Errorf("update route %q to %q: %w", id, to, domain.ErrInvalidTransition)
}

func (f *fakeRouteRepo) Assign(ctx context.Context, id, delivererID, delivererName string) error {
	r, ok := f.routes[id]
	if !ok {
		return fmt.Errorf("assign: %w", ports.ErrNotFound)
	}
	r.AssignedToID = delivererID
	r.AssignedToName = delivererName
	return nil
}

type fakeIndex struct {
	assignments map[string]*domain.PackageAssignment
}

func newFakeIndex(assignments ...*domain.PackageAssignment) *fakeIndex {
	f := &fakeIndex{assignments: map[string]*domain.PackageAssignment{}}
	for _, a := range assignments {
		f.assignments[a.Barcode] = a
	}
	return f
}

func (f *fakeIndex) Lookup(ctx context.Context, barcode string) (*domain.PackageAssignment, error) {
	a, ok := f.assignments[barcode]
	if !ok {
		return nil, fmt.Errorf("lookup: %w", ports.ErrNotFound)
	}
	return a, nil
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) {
	return len(f.assignments), nil
}

type fakeScanStore struct {
	scanned map[string]map[string]bool
	byRoute map[string]string // barcode -> route
}

func newFakeScanStore(index *fakeIndex) *fakeScanStore {
	byRoute := map[string]string{}
	for b, a := range index.assignments {
		byRoute[b] = a.RouteID
	}
	return &fakeScanStore{scanned: map[string]map[string]bool{}, byRoute: byRoute}
}

func (f *fakeScanStore) Record(ctx context.Context, sessionID, barcode string) (bool, error) {
	m, ok := f.scanned[sessionID]
	if !ok {
		m = map[string]bool{}
		f.scanned[sessionID] = m
	}
	if m[barcode] {
		return false, nil
	}
	m[barcode] = true
	return true, nil
}

func (f *fakeScanStore) Count(ctx context.Context, sessionID string) (int, error) {
	return len(f.scanned[sessionID]), nil
}

func (f *fakeScanStore) CountForRoute(ctx context.Context, sessionID, routeID string) (int, error) {
	n := 0
	for barcode := range f.scanned[sessionID] {
		if f.byRoute[barcode] == routeID {
			n++
		}
	}
	return n, nil
}

type fakeDispatcher struct {
	dispatched []string
	failFor    map[string]error
}

func (f *fakeDispatcher) DispatchRoute(ctx context.Context, route *domain.Route) error {
	if err := f.failFor[route.RouteID]; err != nil {
		return err
	}
	f.dispatched = append(f.dispatched, route.RouteID)
	return nil
}
