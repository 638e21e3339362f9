package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
)

// ListMarkers returns all spatial markers ordered by display order. This is
// the marker registry's reload source.
func (db *DB) ListMarkers(ctx context.Context) ([]domain.SpatialMarker, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, aliases, distance_from_door_meters, typical_wait_minutes, display_order
		FROM spatial_markers
		ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	var result []domain.SpatialMarker

	for rows.Next() {
		var (
			id uuid.UUID
			m  domain.SpatialMarker
		)

		if err := rows.Scan(&id, &m.Name, &m.Aliases, &m.DistanceFromDoorMeters, &m.TypicalWaitMinutes, &m.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}

		m.ID = id.String()
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markers: %w", err)
	}

	return result, nil
}

// UpsertMarker creates or updates a marker by canonical name. Callers must
// invalidate the registry afterwards.
func (db *DB) UpsertMarker(ctx context.Context, m domain.SpatialMarker) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO spatial_markers (id, name, aliases, distance_from_door_meters, typical_wait_minutes, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			aliases = EXCLUDED.aliases,
			distance_from_door_meters = EXCLUDED.distance_from_door_meters,
			typical_wait_minutes = EXCLUDED.typical_wait_minutes,
			display_order = EXCLUDED.display_order`,
		uuid.New(), m.Name, m.Aliases, m.DistanceFromDoorMeters, m.TypicalWaitMinutes, m.DisplayOrder)
	if err != nil {
		return fmt.Errorf("upsert marker %q: %w", m.Name, err)
	}

	return nil
}
