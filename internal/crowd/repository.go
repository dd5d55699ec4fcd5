package crowd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suraksha/crowd-safety/pkg/geo"
)

// Repository handles database operations for crowd locations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new crowd repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const locationColumns = `
	id, location_name, location_type, latitude, longitude,
	estimated_count, max_capacity, density_percentage, density_level,
	alert_active, alert_message, density_history, last_updated, created_at
`

// Create inserts a new monitored location
func (r *Repository) Create(ctx context.Context, location *Location) error {
	history, err := json.Marshal(location.History)
	if err != nil {
		return fmt.Errorf("marshal density history: %w", err)
	}

	query := `
		INSERT INTO crowd_locations (
			id, location_name, location_type, latitude, longitude,
			estimated_count, max_capacity, density_percentage, density_level,
			alert_active, alert_message, density_history, last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.Exec(ctx, query,
		location.ID, location.Name, location.Category, location.Latitude, location.Longitude,
		location.EstimatedCount, location.MaxCapacity, location.DensityPercentage, location.DensityLevel,
		location.AlertActive, location.AlertMessage, history, location.LastUpdated, location.CreatedAt,
	)
	return err
}

// GetByID retrieves a location by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM crowd_locations WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByName retrieves a location by its unique name
func (r *Repository) GetByName(ctx context.Context, name string) (*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM crowd_locations WHERE location_name = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, name))
}

// Update persists the full mutable state of a location
func (r *Repository) Update(ctx context.Context, location *Location) error {
	history, err := json.Marshal(location.History)
	if err != nil {
		return fmt.Errorf("marshal density history: %w", err)
	}

	query := `
		UPDATE crowd_locations
		SET estimated_count = $2,
			density_percentage = $3,
			density_level = $4,
			alert_active = $5,
			alert_message = $6,
			density_history = $7,
			last_updated = $8
		WHERE id = $1
	`
	_, err = r.db.Exec(ctx, query,
		location.ID, location.EstimatedCount, location.DensityPercentage,
		location.DensityLevel, location.AlertActive, location.AlertMessage,
		history, location.LastUpdated,
	)
	return err
}

// FindNearby returns locations inside a cheap degree bounding box, densest
// first. The radiusKm/111 conversion is intentionally approximate.
func (r *Repository) FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*Location, error) {
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(latitude, longitude, radiusKm)

	query := `
		SELECT ` + locationColumns + `
		FROM crowd_locations
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY density_percentage DESC
	`
	rows, err := r.db.Query(ctx, query, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// FindActiveAlerts returns all locations with an active alert, densest first
func (r *Repository) FindActiveAlerts(ctx context.Context) ([]*Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM crowd_locations
		WHERE alert_active = TRUE
		ORDER BY density_percentage DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// List returns locations matching the optional category and level filters
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM crowd_locations
		WHERE ($1 = '' OR location_type = $1)
		  AND ($2 = '' OR density_level = $2)
		ORDER BY density_percentage DESC
		LIMIT $3 OFFSET $4
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, query, string(filter.Category), string(filter.Level), limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *Repository) scanOne(row pgx.Row) (*Location, error) {
	var location Location
	var history []byte

	err := row.Scan(
		&location.ID, &location.Name, &location.Category, &location.Latitude, &location.Longitude,
		&location.EstimatedCount, &location.MaxCapacity, &location.DensityPercentage, &location.DensityLevel,
		&location.AlertActive, &location.AlertMessage, &history, &location.LastUpdated, &location.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &location.History); err != nil {
			return nil, fmt.Errorf("unmarshal density history: %w", err)
		}
	}
	return &location, nil
}

func (r *Repository) scanAll(rows pgx.Rows) ([]*Location, error) {
	var locations []*Location
	for rows.Next() {
		var location Location
		var history []byte

		if err := rows.Scan(
			&location.ID, &location.Name, &location.Category, &location.Latitude, &location.Longitude,
			&location.EstimatedCount, &location.MaxCapacity, &location.DensityPercentage, &location.DensityLevel,
			&location.AlertActive, &location.AlertMessage, &history, &location.LastUpdated, &location.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(history) > 0 {
			if err := json.Unmarshal(history, &location.History); err != nil {
				return nil, fmt.Errorf("unmarshal density history: %w", err)
			}
		}
		locations = append(locations, &location)
	}
	return locations, rows.Err()
}
