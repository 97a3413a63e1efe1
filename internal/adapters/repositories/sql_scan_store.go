package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/ports"
)

// SQL-backed implementation of the ScanStore and AssignmentIndex ports.
// The (session_id, barcode) primary key is what makes scan counting
// idempotent: re-inserting the same barcode touches zero rows.
type SQLScanStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLScanStore(db *sql.DB, d Dialect) *SQLScanStore {
	return &SQLScanStore{DB: db, Dialect: d}
}

func (s *SQLScanStore) Record(ctx context.Context, sessionID, barcode string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, s.Dialect.rebind(`
		INSERT INTO scans (session_id, barcode, scanned_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, barcode) DO NOTHING;`),
		sessionID, barcode, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("record scan: insert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record scan: rows affected: %w", err)
	}

	return n > 0, nil
}

func (s *SQLScanStore) Count(ctx context.Context, sessionID string) (int, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
		SELECT COUNT(*) FROM scans WHERE session_id = ?;`),
		sessionID,
	)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count scans: scan row: %w", err)
	}
	return n, nil
}

func (s *SQLScanStore) CountForRoute(ctx context.Context, sessionID, routeID string) (int, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
		SELECT COUNT(*)
		FROM scans sc
		JOIN package_assignments pa ON pa.barcode = sc.barcode
		WHERE sc.session_id = ? AND pa.route_id = ?;`),
		sessionID, routeID,
	)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count route scans: scan row: %w", err)
	}
	return n, nil
}

// SQL-backed package -> route index.
type SQLAssignmentIndex struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLAssignmentIndex(db *sql.DB, d Dialect) *SQLAssignmentIndex {
	return &SQLAssignmentIndex{DB: db, Dialect: d}
}

func (s *SQLAssignmentIndex) Lookup(ctx context.Context, barcode string) (*domain.PackageAssignment, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
		SELECT barcode, route_id, sequence, address
		FROM package_assignments
		WHERE barcode = ?;`),
		barcode,
	)

	var pa domain.PackageAssignment
	err := row.Scan(&pa.Barcode, &pa.RouteID, &pa.Sequence, &pa.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup barcode %q: %w", barcode, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup barcode %q: scan row: %w", barcode, err)
	}

	return &pa, nil
}

func (s *SQLAssignmentIndex) Count(ctx context.Context) (int, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`SELECT COUNT(*) FROM package_assignments;`))

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count assignments: scan row: %w", err)
	}
	return n, nil
}
