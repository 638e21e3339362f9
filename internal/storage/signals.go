package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
)

// ParsedUpdate is one stored queue report with its extracted signal.
type ParsedUpdate struct {
	ID              string
	Source          string
	SourceID        string
	RawText         string
	AuthorName      string
	Signal          domain.ParsedSignal
	SourceTimestamp time.Time
	CreatedAt       time.Time
}

// HasUpdate reports whether a report with this source identity was already
// stored; (source, source_id) is the external dedup key.
func (db *DB) HasUpdate(ctx context.Context, source, sourceID string) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM parsed_updates WHERE source = $1 AND source_id = $2)`,
		source, sourceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check update exists: %w", err)
	}

	return exists, nil
}

// SaveUpdate persists one report with its parsed signal.
func (db *DB) SaveUpdate(ctx context.Context, u *ParsedUpdate) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO parsed_updates (
			id, source, source_id, raw_text, author_name,
			parsed_wait_minutes, parsed_queue_length, parsed_spatial_marker, parsed_marker_modifier_m,
			rejection_mentioned, entry_mentioned, confidence, used_context, source_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (source, source_id) DO NOTHING`,
		uuid.New(), u.Source, u.SourceID, u.RawText, u.AuthorName,
		toInt4Ptr(u.Signal.WaitMinutes), u.Signal.QueueLength, u.Signal.SpatialMarker,
		toInt4Ptr(u.Signal.MarkerModifierMeters),
		u.Signal.RejectionMentioned, u.Signal.EntryMentioned, u.Signal.Confidence,
		u.Signal.UsedContext, toTimestamptz(u.SourceTimestamp))
	if err != nil {
		return fmt.Errorf("save update: %w", err)
	}

	return nil
}

// RecentSignals returns stored signals created after the cutoff, newest
// first, excluding rows flagged as outliers. This feeds the aggregation
// engine; dedup happened at write time.
func (db *DB) RecentSignals(ctx context.Context, since time.Time) ([]domain.SignalRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT source, parsed_wait_minutes, parsed_queue_length, parsed_spatial_marker,
			parsed_marker_modifier_m, rejection_mentioned, entry_mentioned,
			confidence, used_context, created_at
		FROM parsed_updates
		WHERE created_at >= $1 AND is_outlier = FALSE
		ORDER BY created_at DESC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	var result []domain.SignalRecord

	for rows.Next() {
		var (
			rec      domain.SignalRecord
			waitCol  pgtype.Int4
			modifier pgtype.Int4
		)

		if err := rows.Scan(&rec.Source, &waitCol, &rec.Signal.QueueLength, &rec.Signal.SpatialMarker,
			&modifier, &rec.Signal.RejectionMentioned, &rec.Signal.EntryMentioned,
			&rec.Signal.Confidence, &rec.Signal.UsedContext, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}

		rec.Signal.WaitMinutes = fromInt4Ptr(waitCol)
		rec.Signal.MarkerModifierMeters = fromInt4Ptr(modifier)

		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}

	return result, nil
}

// FlagOutlier marks a stored update so it no longer feeds aggregation.
func (db *DB) FlagOutlier(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse update id: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, `UPDATE parsed_updates SET is_outlier = TRUE WHERE id = $1`, uid); err != nil {
		return fmt.Errorf("flag outlier: %w", err)
	}

	return nil
}
