package repository

import (
	"context"
	"database/sql"
	"fmt"

	"daysegment/backend/internal/model"
)

type SegmentRepository struct {
	db *sql.DB
}

func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

func (r *SegmentRepository) Create(ctx context.Context, segment *model.Segment) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO segments (id, user_id, name, start_time, end_time, color)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		segment.ID,
		segment.UserID,
		segment.Name,
		segment.StartTime,
		segment.EndTime,
		segment.Color,
	)
	if err != nil {
		return fmt.Errorf("create segment: %w", err)
	}
	return nil
}

func (r *SegmentRepository) GetByID(ctx context.Context, userID, id string) (*model.Segment, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, name, start_time, end_time, color
		 FROM segments WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanSegment(row)
}

func (r *SegmentRepository) List(ctx context.Context, userID string) ([]model.Segment, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, name, start_time, end_time, color
		 FROM segments WHERE user_id = ? ORDER BY start_time ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	segments := make([]model.Segment, 0)
	for rows.Next() {
		segment, scanErr := scanSegment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		segments = append(segments, *segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

func (r *SegmentRepository) Update(ctx context.Context, segment *model.Segment) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE segments SET name = ?, start_time = ?, end_time = ?, color = ?
		 WHERE user_id = ? AND id = ?`,
		segment.Name,
		segment.StartTime,
		segment.EndTime,
		segment.Color,
		segment.UserID,
		segment.ID,
	)
	if err != nil {
		return fmt.Errorf("update segment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update segment affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SegmentRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM segments WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete segment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete segment affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSegment(s scanner) (*model.Segment, error) {
	segment := model.Segment{}
	err := s.Scan(
		&segment.ID,
		&segment.UserID,
		&segment.Name,
		&segment.StartTime,
		&segment.EndTime,
		&segment.Color,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan segment: %w", err)
	}
	return &segment, nil
}
