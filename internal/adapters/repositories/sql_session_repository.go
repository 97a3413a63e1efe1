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

// SQL-backed implementation of the SessionRepository port.
type SQLSessionRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLSessionRepository(db *sql.DB, d Dialect) *SQLSessionRepository {
	return &SQLSessionRepository{DB: db, Dialect: d}
}

func (s *SQLSessionRepository) Create(ctx context.Context, sess *domain.SeparationSession) error {
	_, err := s.DB.ExecContext(ctx, s.Dialect.rebind(`
		INSERT INTO sessions (session_id, total_packages, scanned_packages, created_at)
		VALUES (?, ?, ?, ?);`),
		sess.SessionID, sess.TotalPackages, sess.ScannedPackages, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create session: insert: %w", err)
	}
	return nil
}

func (s *SQLSessionRepository) Get(ctx context.Context, sessionID string) (*domain.SeparationSession, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
		SELECT session_id, total_packages, scanned_packages
		FROM sessions
		WHERE session_id = ?;`),
		sessionID,
	)

	var sess domain.SeparationSession
	err := row.Scan(&sess.SessionID, &sess.TotalPackages, &sess.ScannedPackages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %q: %w", sessionID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %q: scan row: %w", sessionID, err)
	}

	return &sess, nil
}

// Active returns the newest session without a completed_at stamp.
func (s *SQLSessionRepository) Active(ctx context.Context) (*domain.SeparationSession, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
		SELECT session_id, total_packages, scanned_packages
		FROM sessions
		WHERE completed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1;`),
	)

	var sess domain.SeparationSession
	err := row.Scan(&sess.SessionID, &sess.TotalPackages, &sess.ScannedPackages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active session: %w", ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("active session: scan row: %w", err)
	}

	return &sess, nil
}

// SetScanned only ever moves the count forward; the guard in SQL keeps a
// late or reordered write from regressing progress.
func (s *SQLSessionRepository) SetScanned(ctx context.Context, sessionID string, scanned int) error {
	res, err := s.DB.ExecContext(ctx, s.Dialect.rebind(`
		UPDATE sessions
		SET scanned_packages = ?
		WHERE session_id = ?
		  AND scanned_packages <= ?
		  AND total_packages >= ?;`),
		scanned, sessionID, scanned, scanned,
	)
	if err != nil {
		return fmt.Errorf("set scanned: update session %q: %w", sessionID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set scanned: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set scanned: session %q rejected count %d: %w", sessionID, scanned, domain.ErrProgressInvalid)
	}

	return nil
}

func (s *SQLSessionRepository) Complete(ctx context.Context, sessionID string, at time.Time) error {
	res, err := s.DB.ExecContext(ctx, s.Dialect.rebind(`
		UPDATE sessions
		SET completed_at = ?
		WHERE session_id = ? AND completed_at IS NULL;`),
		at.UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("complete session: update %q: %w", sessionID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("complete session %q: %w", sessionID, ports.ErrNotFound)
	}

	return nil
}
