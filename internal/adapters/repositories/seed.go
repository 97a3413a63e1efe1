package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type RouteSeed struct {
	RouteID  string        `json:"route_id"`
	Color    string        `json:"color"`
	Packages []PackageSeed `json:"packages"`
}

type PackageSeed struct {
	Barcode  string `json:"barcode"`
	Sequence int    `json:"sequence"`
	Address  string `json:"address"`
}

type ManifestSeed struct {
	Routes []RouteSeed `json:"routes"`
}

// Populate routes and the package index from an optimizer manifest file.
// Existing rows are replaced so re-running the tool is safe.
func SeedFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed manifest: read %q: %w", jsonPath, err)
	}

	var manifest ManifestSeed
	if err := json.Unmarshal(bytes, &manifest); err != nil {
		return fmt.Errorf("seed manifest: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed manifest: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, route := range manifest.Routes {
		routeID := strings.TrimSpace(route.RouteID)
		if routeID == "" {
			return fmt.Errorf("seed manifest: route #%d has empty route_id", i+1)
		}

		color := route.Color
		if color == "" {
			color = "#667eea"
		}

		_, err := tx.Exec(d.rebind(`
			INSERT INTO routes (route_id, color, status, total_packages)
			VALUES (?, ?, 'pending', ?)
			ON CONFLICT (route_id) DO UPDATE SET
				color = excluded.color,
				total_packages = excluded.total_packages;`),
			routeID, color, len(route.Packages),
		)
		if err != nil {
			return fmt.Errorf("seed manifest: insert route %q: %w", routeID, err)
		}

		for j, pkg := range route.Packages {
			barcode := strings.TrimSpace(pkg.Barcode)
			if barcode == "" {
				return fmt.Errorf("seed manifest: route %q package #%d has empty barcode", routeID, j+1)
			}
			if pkg.Sequence <= 0 {
				return fmt.Errorf("seed manifest: route %q package %q has invalid sequence %d", routeID, barcode, pkg.Sequence)
			}

			_, err := tx.Exec(d.rebind(`
				INSERT INTO package_assignments (barcode, route_id, sequence, address)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (barcode) DO UPDATE SET
					route_id = excluded.route_id,
					sequence = excluded.sequence,
					address = excluded.address;`),
				barcode, routeID, pkg.Sequence, strings.TrimSpace(pkg.Address),
			)
			if err != nil {
				return fmt.Errorf("seed manifest: insert package %q: %w", barcode, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed manifest: commit tx: %w", err)
	}

	return nil
}
