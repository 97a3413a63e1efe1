package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"separation-route-service/internal/api/dto"
)

func TestResolveSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/separation/scan" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("auth header = %q", got)
		}

		var req dto.ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Barcode != "BR42" {
			t.Errorf("barcode = %q", req.Barcode)
		}

		json.NewEncoder(w).Encode(dto.ScanResponse{
			Barcode:       "BR42",
			RouteID:       "R1",
			RouteColor:    "#ef4444",
			DelivererName: "Ana",
			Sequence:      3,
			TotalInRoute:  12,
			Address:       "Rua das Flores, 100",
			Progress:      dto.ProgressPayload{Scanned: 5, Percentage: 41.7},
		})
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "tok-1")
	result, progress, err := r.Resolve(context.Background(), "BR42")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if result.RouteID != "R1" || result.Sequence != 3 || result.DelivererName != "Ana" {
		t.Fatalf("result = %+v", result)
	}
	if progress.Scanned != 5 || progress.Percentage != 41.7 {
		t.Fatalf("progress = %+v", progress)
	}
}

func TestResolveRejectionNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "barcode not found in current routes"})
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "tok-1")
	_, _, err := r.Resolve(context.Background(), "NOPE")

	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want RejectionError", err)
	}
	if rej.Status != http.StatusNotFound {
		t.Fatalf("status = %d", rej.Status)
	}
	if rej.Message != "barcode not found in current routes" {
		t.Fatalf("message = %q", rej.Message)
	}
	if calls != 1 {
		t.Fatalf("rejection retried: %d calls", calls)
	}
}

func TestResolveRetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(dto.ScanResponse{
			Barcode:  "BR42",
			RouteID:  "R1",
			Progress: dto.ProgressPayload{Scanned: 1, Percentage: 10},
		})
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "tok-1")
	result, _, err := r.Resolve(context.Background(), "BR42")
	if err != nil {
		t.Fatalf("resolve after retries: %v", err)
	}
	if result.RouteID != "R1" {
		t.Fatalf("result = %+v", result)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestStartSessionDecodesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/separation/start" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(dto.StartSeparationResponse{
			Session: dto.SessionPayload{
				SessionID:       "sess-9",
				TotalPackages:   20,
				ScannedPackages: 4,
				Progress:        20.0,
			},
		})
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "tok-1")
	sess, err := r.StartSession(context.Background())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if sess.SessionID != "sess-9" || sess.TotalPackages != 20 || sess.ScannedPackages != 4 {
		t.Fatalf("session = %+v", sess)
	}
}

func TestRouteStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]dto.RouteStatusResponse{
			{ID: "R1", Color: "#ef4444", Status: "in_transit", TotalPackages: 12},
			{ID: "R2", Color: "#3b82f6", AssignedToName: "Bia", Status: "ready", TotalPackages: 8},
		})
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "tok-1")
	routes, err := r.RouteStatuses(context.Background())
	if err != nil {
		t.Fatalf("route statuses: %v", err)
	}
	if len(routes) != 2 || routes[0].Status != "in_transit" || routes[1].AssignedToName != "Bia" {
		t.Fatalf("routes = %+v", routes)
	}
}
