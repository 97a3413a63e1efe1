package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"separation-route-service/internal/domain"
)

func separationFixture(t *testing.T) (*SeparationService, *fakeRouteRepo, *fakeSessionRepo) {
	t.Helper()

	index := newFakeIndex(
		&domain.PackageAssignment{Barcode: "PKG-1", RouteID: "route-1", Sequence: 1, Address: "Rua das Flores 12"},
		&domain.PackageAssignment{Barcode: "PKG-2", RouteID: "route-1", Sequence: 2, Address: "Av. Paulista 900"},
		&domain.PackageAssignment{Barcode: "PKG-3", RouteID: "route-2", Sequence: 1, Address: "Rua Augusta 45"},
	)

	routes := newFakeRouteRepo(
		&domain.Route{RouteID: "route-1", Color: "#667eea", Status: domain.StatusPending, TotalPackages: 2, AssignedToName: "Ana"},
		&domain.Route{RouteID: "route-2", Color: "#ff6b6b", Status: domain.StatusPending, TotalPackages: 1},
	)

	sessions := newFakeSessionRepo()
	svc := &SeparationService{
		Sessions: sessions,
		Routes:   routes,
		Index:    index,
		Scans:    newFakeScanStore(index),
	}
	return svc, routes, sessions
}

func TestStartSessionSizesFromIndex(t *testing.T) {
	svc, _, _ := separationFixture(t)

	sess, err := svc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if sess.TotalPackages != 3 {
		t.Fatalf("expected total 3, got %d", sess.TotalPackages)
	}
	if sess.ScannedPackages != 0 {
		t.Fatalf("expected fresh session, got %d scanned", sess.ScannedPackages)
	}
}

func TestStartSessionResumesActive(t *testing.T) {
	svc, _, _ := separationFixture(t)

	first, err := svc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	second, err := svc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession (resume): %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("expected resumed session %s, got %s", first.SessionID, second.SessionID)
	}
}

func TestResolveScanAdvancesProgress(t *testing.T) {
	svc, routes, _ := separationFixture(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	result, progress, err := svc.ResolveScan(ctx, sess.SessionID, " PKG-1 ")
	if err != nil {
		t.Fatalf("ResolveScan: %v", err)
	}
	if result.RouteID != "route-1" || result.Sequence != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.DelivererName != "Ana" {
		t.Fatalf("expected deliverer from route, got %q", result.DelivererName)
	}
	if progress.Scanned != 1 {
		t.Fatalf("expected 1 scanned, got %d", progress.Scanned)
	}
	want := 33.3
	if progress.Percentage != want {
		t.Fatalf("expected %.1f%%, got %.1f%%", want, progress.Percentage)
	}

	r, _ := routes.Get(ctx, "route-1")
	if r.Status != domain.StatusSeparating {
		t.Fatalf("expected route-1 separating after first scan, got %q", r.Status)
	}
}

func TestResolveScanDuplicateDoesNotDoubleCount(t *testing.T) {
	svc, _, sessions := separationFixture(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	first, p1, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-1")
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, p2, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-1")
	if err != nil {
		t.Fatalf("repeated scan: %v", err)
	}

	if p2.Scanned != p1.Scanned {
		t.Fatalf("duplicate scan changed count: %d -> %d", p1.Scanned, p2.Scanned)
	}
	if second.RouteID != first.RouteID || second.Sequence != first.Sequence {
		t.Fatalf("duplicate scan changed result: %+v vs %+v", first, second)
	}

	stored, _ := sessions.Get(ctx, sess.SessionID)
	if stored.ScannedPackages != 1 {
		t.Fatalf("expected persisted count 1, got %d", stored.ScannedPackages)
	}
}

func TestResolveScanUnknownBarcodeLeavesStateUntouched(t *testing.T) {
	svc, routes, sessions := separationFixture(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	_, _, err = svc.ResolveScan(ctx, sess.SessionID, "PKG-999")
	if !errors.Is(err, ErrUnknownBarcode) {
		t.Fatalf("expected ErrUnknownBarcode, got %v", err)
	}

	stored, _ := sessions.Get(ctx, sess.SessionID)
	if stored.ScannedPackages != 0 {
		t.Fatalf("unknown barcode changed count to %d", stored.ScannedPackages)
	}
	r, _ := routes.Get(ctx, "route-1")
	if r.Status != domain.StatusPending {
		t.Fatalf("unknown barcode moved route to %q", r.Status)
	}
}

func TestResolveScanEmptyBarcode(t *testing.T) {
	svc, _, _ := separationFixture(t)

	_, _, err := svc.ResolveScan(context.Background(), "whatever", "   ")
	if !errors.Is(err, ErrEmptyBarcode) {
		t.Fatalf("expected ErrEmptyBarcode, got %v", err)
	}
}

func TestResolveScanMissingSession(t *testing.T) {
	svc, _, _ := separationFixture(t)

	_, _, err := svc.ResolveScan(context.Background(), "no-such-session", "PKG-1")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestResolveScanMarksFullyScannedRouteReady(t *testing.T) {
	svc, routes, _ := separationFixture(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// route-2 holds a single package: its last scan is its first scan.
	if _, _, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-3"); err != nil {
		t.Fatalf("scan PKG-3: %v", err)
	}
	r, _ := routes.Get(ctx, "route-2")
	if r.Status != domain.StatusReady {
		t.Fatalf("expected route-2 ready after its only package, got %q", r.Status)
	}

	// route-1 still has a package outstanding after the first scan.
	if _, _, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-1"); err != nil {
		t.Fatalf("scan PKG-1: %v", err)
	}
	r, _ = routes.Get(ctx, "route-1")
	if r.Status != domain.StatusSeparating {
		t.Fatalf("expected route-1 separating at 1 of 2, got %q", r.Status)
	}

	if _, _, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-2"); err != nil {
		t.Fatalf("scan PKG-2: %v", err)
	}
	r, _ = routes.Get(ctx, "route-1")
	if r.Status != domain.StatusReady {
		t.Fatalf("expected route-1 ready at 2 of 2, got %q", r.Status)
	}
}

func TestResolveScanTruncatesLongAddress(t *testing.T) {
	// Accented runes positioned so a byte-wise cut at 60 would split one.
	long := strings.Repeat("x", 59) + strings.Repeat("ã", 10)
	index := newFakeIndex(
		&domain.PackageAssignment{Barcode: "PKG-1", RouteID: "route-1", Sequence: 1, Address: long},
	)
	svc := &SeparationService{
		Sessions: newFakeSessionRepo(),
		Routes: newFakeRouteRepo(
			&domain.Route{RouteID: "route-1", Status: domain.StatusPending, TotalPackages: 1},
		),
		Index: index,
		Scans: newFakeScanStore(index),
	}
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	result, _, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-1")
	if err != nil {
		t.Fatalf("ResolveScan: %v", err)
	}
	if got := utf8.RuneCountInString(result.Address); got != 60 {
		t.Fatalf("expected 60-character address, got %d", got)
	}
	if !utf8.ValidString(result.Address) {
		t.Fatalf("truncation produced invalid UTF-8: %q", result.Address)
	}
}

func TestTruncateAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Rua das Flores 12", "Rua das Flores 12"},
		{strings.Repeat("a", 60), strings.Repeat("a", 60)},
		{strings.Repeat("a", 61), strings.Repeat("a", 60)},
		{strings.Repeat("ç", 61), strings.Repeat("ç", 60)},
	}
	for _, c := range cases {
		got := truncateAddress(c.in, 60)
		if got != c.want {
			t.Fatalf("truncateAddress(%q) = %q, want %q", c.in, got, c.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("truncateAddress(%q) produced invalid UTF-8", c.in)
		}
	}
}

func TestCompleteSessionRequiresAllScans(t *testing.T) {
	svc, routes, _ := separationFixture(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, _, err := svc.ResolveScan(ctx, sess.SessionID, "PKG-1"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	err = svc.CompleteSession(ctx, sess.SessionID)
	if !errors.Is(err, ErrSessionIncomplete) {
		t.Fatalf("expected ErrSessionIncomplete, got %v", err)
	}

	for _, code := range []string{"PKG-2", "PKG-3"} {
		if _, _, err := svc.ResolveScan(ctx, sess.SessionID, code); err != nil {
			t.Fatalf("scan %s: %v", code, err)
		}
	}

	if err := svc.CompleteSession(ctx, sess.SessionID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	for _, id := range []string{"route-1", "route-2"} {
		r, _ := routes.Get(ctx, id)
		if r.Status != domain.StatusReady {
			t.Fatalf("expected %s ready after completion, got %q", id, r.Status)
		}
	}
}
