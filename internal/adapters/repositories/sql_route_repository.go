package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/ports"
)

// SQL-backed implementation of the RouteRepository port.
type SQLRouteRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLRouteRepository(db *sql.DB, d Dialect) *SQLRouteRepository {
	return &SQLRouteRepository{DB: db, Dialect: d}
}

const routeColumns = `
	route_id,
	color,
	assigned_to_id,
	assigned_to_name,
	status,
	total_packages,
	started_at,
	finished_at`

func scanRoute(scan func(...any) error) (*domain.Route, error) {
	var r domain.Route
	var status string
	var startedAt, finishedAt sql.NullTime

	err := scan(
		&r.RouteID,
		&r.Color,
		&r.AssignedToID,
		&r.AssignedToName,
		&status,
		&r.TotalPackages,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.RouteStatus(status)
	if startedAt.Valid {
		t := startedAt.Time
		r.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}

	return &r, nil
}

func (s *SQLRouteRepository) List(ctx context.Context) ([]*domain.Route, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(`
		SELECT `+routeColumns+`
		FROM routes
		ORDER BY route_id;`),
	)
	if err != nil {
		return nil, fmt.Errorf("list routes: query: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		r, err := scanRoute(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

func (s *SQLRouteRepository) Get(ctx context.Context, routeID string) (*domain.Route, error) {
	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
		SELECT `+routeColumns+`
		FROM routes
		WHERE route_id = ?;`),
		routeID,
	)

	r, err := scanRoute(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %q: %w", routeID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %q: scan row: %w", routeID, err)
	}

	return r, nil
}

// UpdateStatus performs the transition as a compare-and-set: the row only
// changes when its current status is one of from. Zero rows affected on
// an existing route means another screen already moved it.
func (s *SQLRouteRepository) UpdateStatus(
	ctx context.Context,
	routeID string,
	from []domain.RouteStatus,
	to domain.RouteStatus,
	at time.Time,
) error {
	if len(from) == 0 {
		return errors.New("update route status: from statuses must not be empty")
	}

	placeholders := make([]string, 0, len(from))
	args := make([]any, 0, len(from)+3)
	args = append(args, string(to))

	timestampCol := ""
	switch to {
	case domain.StatusInTransit:
		timestampCol = ", started_at = ?"
		args = append(args, at.UTC())
	case domain.StatusCompleted:
		timestampCol = ", finished_at = ?"
		args = append(args, at.UTC())
	}

	args = append(args, routeID)
	for _, f := range from {
		placeholders = append(placeholders, "?")
		args = append(args, string(f))
	}

	query := `
		UPDATE routes
		SET status = ?` + timestampCol + `
		WHERE route_id = ?
		  AND status IN (` + strings.Join(placeholders, ", ") + `);`

	res, err := s.DB.ExecContext(ctx, s.Dialect.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update route status: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update route status: rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Distinguish "no such route" from "illegal transition".
	if _, err := s.Get(ctx, routeID); err != nil {
		return err
	}
	return fmt.Errorf("update route %q to %q: %w", routeID, to, domain.ErrInvalidTransition)
}

func (s *SQLRouteRepository) Assign(ctx context.Context, routeID, delivererID, delivererName string) error {
	res, err := s.DB.ExecContext(ctx, s.Dialect.rebind(`
		UPDATE routes
		SET assigned_to_id = ?, assigned_to_name = ?
		WHERE route_id = ?;`),
		delivererID, delivererName, routeID,
	)
	if err != nil {
		return fmt.Errorf("assign route: update %q: %w", routeID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign route: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assign route %q: %w", routeID, ports.ErrNotFound)
	}

	return nil
}
