package domain

import (
	"errors"
	"fmt"
	"math"
)

// Represents one warehouse sorting operation ("separation").
// TotalPackages is fixed at session start; ScannedPackages only ever
// moves forward and is bounded by TotalPackages. The server-confirmed
// scan count is the only writer of ScannedPackages.
type SeparationSession struct {
	SessionID       string
	TotalPackages   int
	ScannedPackages int
}

var ErrProgressInvalid = errors.New("scan progress update rejected")

func NewSeparationSession(id string, totalPackages int) (*SeparationSession, error) {
	if id == "" {
		return nil, errors.New("new separation session: id must not be empty")
	}
	if totalPackages <= 0 {
		return nil, fmt.Errorf("new separation session: total packages must be positive, got %d", totalPackages)
	}

	return &SeparationSession{
		SessionID:     id,
		TotalPackages: totalPackages,
	}, nil
}

// RecordProgress adopts a server-confirmed scanned count.
// Regressions and counts above TotalPackages are rejected so a stale or
// reordered response can never corrupt the session.
func (s *SeparationSession) RecordProgress(scanned int) error {
	if scanned < s.ScannedPackages {
		return fmt.Errorf(
			"record progress: count went backwards (%d -> %d): %w",
			s.ScannedPackages, scanned, ErrProgressInvalid,
		)
	}
	if scanned > s.TotalPackages {
		return fmt.Errorf(
			"record progress: count %d exceeds total %d: %w",
			scanned, s.TotalPackages, ErrProgressInvalid,
		)
	}

	s.ScannedPackages = scanned
	return nil
}

// Progress returns the completion percentage rounded to one decimal place.
func (s *SeparationSession) Progress() float64 {
	if s.TotalPackages <= 0 {
		return 0
	}

	pct := float64(s.ScannedPackages) / float64(s.TotalPackages) * 100
	pct = math.Round(pct*10) / 10

	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// IsComplete gates the "finalize separation" action.
func (s *SeparationSession) IsComplete() bool {
	return s.ScannedPackages >= s.TotalPackages
}
