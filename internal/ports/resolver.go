package ports

import (
	"context"

	"separation-route-service/internal/domain"
)

// Port: client-side contract for resolving a scanned code against the
// package -> route index.
type BarcodeResolver interface {
	// Resolve submits a trimmed, non-empty barcode and returns the
	// resolution plus the server-confirmed progress pair.
	Resolve(ctx context.Context, barcode string) (*domain.ScanResult, *domain.ScanProgress, error)
}
