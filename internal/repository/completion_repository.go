package repository

import (
	"context"
	"database/sql"
	"fmt"

	"daysegment/backend/internal/model"
)

type CompletionRepository struct {
	db *sql.DB
}

func NewCompletionRepository(db *sql.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Completion rows are append-only; there is no update or delete path.

func (r *CompletionRepository) InsertTx(ctx context.Context, tx *sql.Tx, completion *model.TaskCompletion) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO task_completions (id, user_id, date, task_id, segment_id, task_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		completion.ID,
		completion.UserID,
		completion.Date,
		completion.TaskID,
		completion.SegmentID,
		completion.TaskType,
	)
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

func (r *CompletionRepository) List(ctx context.Context, userID string) ([]model.TaskCompletion, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, date, task_id, segment_id, task_type
		 FROM task_completions WHERE user_id = ? ORDER BY date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	completions := make([]model.TaskCompletion, 0)
	for rows.Next() {
		var completion model.TaskCompletion
		if err := rows.Scan(
			&completion.ID,
			&completion.UserID,
			&completion.Date,
			&completion.TaskID,
			&completion.SegmentID,
			&completion.TaskType,
		); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, completion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return completions, nil
}
