package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// CreateRegion inserts a floor-plane region. A missing RegionID gets a
// generated UUID. Vertices are stored in the canonical {x,z} encoding.
func (db *DB) CreateRegion(r *exposure.Region) error {
	if r.RegionID == "" {
		r.RegionID = uuid.New().String()
	}

	verticesJSON, err := json.Marshal(r.Vertices)
	if err != nil {
		return fmt.Errorf("encode vertices: %w", err)
	}

	err = retryOnBusy(func() error {
		_, err := db.Exec(
			`INSERT INTO regions (region_id, venue_id, name, vertices_json, created_at_ms) VALUES (?, ?, ?, ?, ?)`,
			r.RegionID, r.VenueID, r.Name, string(verticesJSON), time.Now().UnixMilli(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("create region: %w", err)
	}
	return nil
}

// UpdateRegionVertices replaces a region's polygon. Callers editing
// regions must invalidate any resolver cache for the venue afterwards.
func (db *DB) UpdateRegionVertices(regionID string, vertices []exposure.PlanePoint) error {
	verticesJSON, err := json.Marshal(vertices)
	if err != nil {
		return fmt.Errorf("encode vertices: %w", err)
	}

	var result sql.Result
	err = retryOnBusy(func() error {
		var err error
		result, err = db.Exec(
			`UPDATE regions SET vertices_json = ?, updated_at_ms = ? WHERE region_id = ?`,
			string(verticesJSON), time.Now().UnixMilli(), regionID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update region vertices: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("region not found: %s", regionID)
	}
	return nil
}

// RegionsForVenue loads all regions for a venue, parsing vertices from
// either accepted encoding. A region with malformed vertex JSON comes back
// with an empty polygon rather than failing the load.
func (db *DB) RegionsForVenue(venueID string) ([]exposure.Region, error) {
	rows, err := db.Query(
		`SELECT region_id, venue_id, name, vertices_json FROM regions WHERE venue_id = ? ORDER BY name ASC`,
		venueID,
	)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	var regions []exposure.Region
	for rows.Next() {
		var r exposure.Region
		var verticesJSON sql.NullString
		if err := rows.Scan(&r.RegionID, &r.VenueID, &r.Name, &verticesJSON); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		if verticesJSON.Valid {
			r.Vertices = exposure.ParseVertices([]byte(verticesJSON.String))
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query regions rows: %w", err)
	}
	return regions, nil
}

// DeleteRegion removes a region by id.
func (db *DB) DeleteRegion(regionID string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var err error
		result, err = db.Exec(`DELETE FROM regions WHERE region_id = ?`, regionID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("region not found: %s", regionID)
	}
	return nil
}
