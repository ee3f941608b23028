package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daysegment/backend/internal/model"
)

type SubtaskRepository struct {
	db *sql.DB
}

func NewSubtaskRepository(db *sql.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

const subtaskColumns = `id, task_id, name, is_completed, created_at, completed_at, sort_order`

func (r *SubtaskRepository) InsertTx(ctx context.Context, tx *sql.Tx, subtask *model.Subtask) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO subtasks (`+subtaskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		subtask.ID,
		subtask.TaskID,
		subtask.Name,
		subtask.IsCompleted,
		subtask.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullTime(subtask.CompletedAt),
		subtask.Order,
	)
	if err != nil {
		return fmt.Errorf("insert subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) GetTx(ctx context.Context, tx *sql.Tx, taskID, id string) (*model.Subtask, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE task_id = ? AND id = ?`,
		taskID,
		id,
	)
	return scanSubtask(row)
}

func (r *SubtaskRepository) UpdateTx(ctx context.Context, tx *sql.Tx, subtask *model.Subtask) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE subtasks
		 SET name = ?, is_completed = ?, completed_at = ?, sort_order = ?
		 WHERE task_id = ? AND id = ?`,
		subtask.Name,
		subtask.IsCompleted,
		nullTime(subtask.CompletedAt),
		subtask.Order,
		subtask.TaskID,
		subtask.ID,
	)
	if err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) DeleteTx(ctx context.Context, tx *sql.Tx, taskID, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ? AND id = ?`, taskID, id)
	if err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subtask affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID string) ([]model.Subtask, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE task_id = ? ORDER BY sort_order ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := make([]model.Subtask, 0)
	for rows.Next() {
		subtask, scanErr := scanSubtask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		subtasks = append(subtasks, *subtask)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtasks: %w", err)
	}
	return subtasks, nil
}

func (r *SubtaskRepository) ListByTaskTx(ctx context.Context, tx *sql.Tx, taskID string) ([]model.Subtask, error) {
	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE task_id = ? ORDER BY sort_order ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := make([]model.Subtask, 0)
	for rows.Next() {
		subtask, scanErr := scanSubtask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		subtasks = append(subtasks, *subtask)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtasks: %w", err)
	}
	return subtasks, nil
}

// CountTx re-derives the parent task's counters from the subtask rows.
func (r *SubtaskRepository) CountTx(ctx context.Context, tx *sql.Tx, taskID string) (total, completed int, err error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(1), COALESCE(SUM(is_completed), 0) FROM subtasks WHERE task_id = ?`,
		taskID,
	)
	if err := row.Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("count subtasks: %w", err)
	}
	return total, completed, nil
}

// NextOrderTx returns an order value placing a new subtask after every
// existing one. Orders are unique per task but not required contiguous.
func (r *SubtaskRepository) NextOrderTx(ctx context.Context, tx *sql.Tx, taskID string) (int, error) {
	var max sql.NullInt64
	row := tx.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM subtasks WHERE task_id = ?`, taskID)
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("next subtask order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func scanSubtask(s scanner) (*model.Subtask, error) {
	subtask := model.Subtask{}
	var createdAt string
	var completedAt sql.NullString

	err := s.Scan(
		&subtask.ID,
		&subtask.TaskID,
		&subtask.Name,
		&subtask.IsCompleted,
		&createdAt,
		&completedAt,
		&subtask.Order,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan subtask: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse subtask created_at: %w", err)
	}
	subtask.CreatedAt = parsedCreatedAt

	if subtask.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, fmt.Errorf("parse subtask completed_at: %w", err)
	}

	return &subtask, nil
}
