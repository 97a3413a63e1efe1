package domain

import "testing"

func TestSessionProgressAccounting(t *testing.T) {
	s, err := NewSeparationSession("sess-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// three distinct confirmed scans
	for _, n := range []int{1, 2, 3} {
		if err := s.RecordProgress(n); err != nil {
			t.Fatalf("record progress %d: %v", n, err)
		}
	}

	if s.ScannedPackages != 3 {
		t.Fatalf("scanned = %d, want 3", s.ScannedPackages)
	}
	if got := s.Progress(); got != 30.0 {
		t.Fatalf("progress = %v, want 30.0", got)
	}
	if s.IsComplete() {
		t.Fatal("session should not be complete at 3/10")
	}
}

func TestSessionCompletion(t *testing.T) {
	s, err := NewSeparationSession("sess-2", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.RecordProgress(1); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if s.IsComplete() {
		t.Fatal("complete too early")
	}

	if err := s.RecordProgress(2); err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if !s.IsComplete() {
		t.Fatal("session should be complete at 2/2")
	}
	if got := s.Progress(); got != 100.0 {
		t.Fatalf("progress = %v, want 100.0", got)
	}
}

func TestSessionRejectsRegression(t *testing.T) {
	s, _ := NewSeparationSession("sess-3", 5)
	if err := s.RecordProgress(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.RecordProgress(2); err == nil {
		t.Fatal("expected error for regressing count")
	}
	if s.ScannedPackages != 3 {
		t.Fatalf("scanned mutated on rejected update: %d", s.ScannedPackages)
	}

	// idempotent re-confirmation of the same count is fine
	if err := s.RecordProgress(3); err != nil {
		t.Fatalf("same-count update rejected: %v", err)
	}
}

func TestSessionRejectsOvershoot(t *testing.T) {
	s, _ := NewSeparationSession("sess-4", 5)
	if err := s.RecordProgress(6); err == nil {
		t.Fatal("expected error for count above total")
	}
	if s.ScannedPackages != 0 {
		t.Fatalf("scanned mutated on rejected update: %d", s.ScannedPackages)
	}
}

func TestSessionProgressRounding(t *testing.T) {
	s, _ := NewSeparationSession("sess-5", 3)
	if err := s.RecordProgress(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1/3 = 33.333...% rounds to one decimal place
	if got := s.Progress(); got != 33.3 {
		t.Fatalf("progress = %v, want 33.3", got)
	}

	if err := s.RecordProgress(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Progress(); got != 66.7 {
		t.Fatalf("progress = %v, want 66.7", got)
	}
}

func TestNewSessionValidation(t *testing.T) {
	if _, err := NewSeparationSession("", 10); err == nil {
		t.Fatal("expected error for empty id")
	}
	if _, err := NewSeparationSession("sess", 0); err == nil {
		t.Fatal("expected error for zero total")
	}
	if _, err := NewSeparationSession("sess", -4); err == nil {
		t.Fatal("expected error for negative total")
	}
}
