package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suraksha/crowd-safety/pkg/geo"
)

// Repository handles database operations for emergency alerts
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new emergency repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const alertColumns = `
	id, alert_type, severity, location_name, latitude, longitude,
	description, reporter_id, verified, verified_by, broadcast_radius,
	active, resolved_at, created_at, expires_at, notifications_sent,
	user_confirmations, response_actions
`

// severityRank orders alerts most severe first in SQL
const severityRank = `
	CASE severity
		WHEN 'critical' THEN 4
		WHEN 'high' THEN 3
		WHEN 'medium' THEN 2
		ELSE 1
	END
`

// Create inserts a new emergency alert
func (r *Repository) Create(ctx context.Context, alert *Alert) error {
	confirmations, actions, err := marshalLogs(alert)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO emergency_alerts (
			id, alert_type, severity, location_name, latitude, longitude,
			description, reporter_id, verified, verified_by, broadcast_radius,
			active, resolved_at, created_at, expires_at, notifications_sent,
			user_confirmations, response_actions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.db.Exec(ctx, query,
		alert.ID, alert.Type, alert.Severity, alert.LocationName, alert.Latitude, alert.Longitude,
		alert.Description, alert.ReporterID, alert.Verified, alert.VerifiedBy, alert.BroadcastRadiusM,
		alert.Active, alert.ResolvedAt, alert.CreatedAt, alert.ExpiresAt, alert.NotificationsSent,
		confirmations, actions,
	)
	return err
}

// GetByID retrieves an alert by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM emergency_alerts WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// Update persists the full mutable state of an alert
func (r *Repository) Update(ctx context.Context, alert *Alert) error {
	confirmations, actions, err := marshalLogs(alert)
	if err != nil {
		return err
	}

	query := `
		UPDATE emergency_alerts
		SET severity = $2,
			verified = $3,
			verified_by = $4,
			active = $5,
			resolved_at = $6,
			notifications_sent = $7,
			user_confirmations = $8,
			response_actions = $9
		WHERE id = $1
	`
	_, err = r.db.Exec(ctx, query,
		alert.ID, alert.Severity, alert.Verified, alert.VerifiedBy,
		alert.Active, alert.ResolvedAt, alert.NotificationsSent,
		confirmations, actions,
	)
	return err
}

// FindNearbyActive returns unexpired active alerts inside a cheap degree
// bounding box, most severe and newest first.
func (r *Repository) FindNearbyActive(ctx context.Context, latitude, longitude, radiusKm float64, now time.Time) ([]*Alert, error) {
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(latitude, longitude, radiusKm)

	query := `
		SELECT ` + alertColumns + `
		FROM emergency_alerts
		WHERE active = TRUE
		  AND expires_at > $5
		  AND latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY ` + severityRank + ` DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, minLat, maxLat, minLon, maxLon, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// FindActiveByTypeNear returns unexpired active alerts of one type within
// a tight coordinate window. Used for auto-detection deduplication.
func (r *Repository) FindActiveByTypeNear(ctx context.Context, alertType AlertType, latitude, longitude, degreeDelta float64, now time.Time) ([]*Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM emergency_alerts
		WHERE alert_type = $1
		  AND active = TRUE
		  AND expires_at > $6
		  AND latitude BETWEEN $2 AND $3
		  AND longitude BETWEEN $4 AND $5
	`
	rows, err := r.db.Query(ctx, query, alertType,
		latitude-degreeDelta, latitude+degreeDelta,
		longitude-degreeDelta, longitude+degreeDelta, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// CleanupExpired deactivates alerts whose expiry has passed and returns
// how many were touched.
func (r *Repository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE emergency_alerts
		SET active = FALSE, resolved_at = $1
		WHERE active = TRUE AND expires_at <= $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Stats aggregates alert counts per type plus global totals
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT alert_type,
			COUNT(*),
			COUNT(*) FILTER (WHERE active = TRUE),
			COALESCE(AVG(notifications_sent), 0)
		FROM emergency_alerts
		GROUP BY alert_type
		ORDER BY COUNT(*) DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByType: make([]TypeStats, 0)}
	for rows.Next() {
		var ts TypeStats
		if err := rows.Scan(&ts.Type, &ts.Count, &ts.ActiveCount, &ts.AvgNotifications); err != nil {
			return nil, err
		}
		stats.TotalAlerts += ts.Count
		stats.ActiveAlerts += ts.ActiveCount
		stats.ByType = append(stats.ByType, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.LastUpdated = time.Now().UTC()
	return stats, nil
}

func marshalLogs(alert *Alert) ([]byte, []byte, error) {
	confirmations, err := json.Marshal(alert.Confirmations)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal confirmations: %w", err)
	}
	actions, err := json.Marshal(alert.ResponseActions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal response actions: %w", err)
	}
	return confirmations, actions, nil
}

func (r *Repository) scanOne(row pgx.Row) (*Alert, error) {
	var alert Alert
	var confirmations, actions []byte

	err := row.Scan(
		&alert.ID, &alert.Type, &alert.Severity, &alert.LocationName, &alert.Latitude, &alert.Longitude,
		&alert.Description, &alert.ReporterID, &alert.Verified, &alert.VerifiedBy, &alert.BroadcastRadiusM,
		&alert.Active, &alert.ResolvedAt, &alert.CreatedAt, &alert.ExpiresAt, &alert.NotificationsSent,
		&confirmations, &actions,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := unmarshalLogs(&alert, confirmations, actions); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *Repository) scanAll(rows pgx.Rows) ([]*Alert, error) {
	var alerts []*Alert
	for rows.Next() {
		var alert Alert
		var confirmations, actions []byte

		if err := rows.Scan(
			&alert.ID, &alert.Type, &alert.Severity, &alert.LocationName, &alert.Latitude, &alert.Longitude,
			&alert.Description, &alert.ReporterID, &alert.Verified, &alert.VerifiedBy, &alert.BroadcastRadiusM,
			&alert.Active, &alert.ResolvedAt, &alert.CreatedAt, &alert.ExpiresAt, &alert.NotificationsSent,
			&confirmations, &actions,
		); err != nil {
			return nil, err
		}

		if err := unmarshalLogs(&alert, confirmations, actions); err != nil {
			return nil, err
		}
		alerts = append(alerts, &alert)
	}
	return alerts, rows.Err()
}

func unmarshalLogs(alert *Alert, confirmations, actions []byte) error {
	if len(confirmations) > 0 {
		if err := json.Unmarshal(confirmations, &alert.Confirmations); err != nil {
			return fmt.Errorf("unmarshal confirmations: %w", err)
		}
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &alert.ResponseActions); err != nil {
			return fmt.Errorf("unmarshal response actions: %w", err)
		}
	}
	return nil
}
