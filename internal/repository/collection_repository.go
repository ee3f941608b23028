package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daysegment/backend/internal/model"
)

type CollectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(ctx context.Context, collection *model.Collection) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO collections (id, user_id, name, is_recurring, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		collection.ID,
		collection.UserID,
		collection.Name,
		collection.IsRecurring,
		collection.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (r *CollectionRepository) GetByID(ctx context.Context, userID, id string) (*model.Collection, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, name, is_recurring, created_at
		 FROM collections WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanCollection(row)
}

func (r *CollectionRepository) List(ctx context.Context, userID string) ([]model.Collection, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, name, is_recurring, created_at
		 FROM collections WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := make([]model.Collection, 0)
	for rows.Next() {
		collection, scanErr := scanCollection(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		collections = append(collections, *collection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return collections, nil
}

func (r *CollectionRepository) Update(ctx context.Context, collection *model.Collection) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE collections SET name = ?, is_recurring = ? WHERE user_id = ? AND id = ?`,
		collection.Name,
		collection.IsRecurring,
		collection.UserID,
		collection.ID,
	)
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update collection affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CollectionRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_collections WHERE collection_id = ?`, id); err != nil {
		return fmt.Errorf("delete collection joins: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete collection affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete collection: %w", err)
	}
	return nil
}

func (r *CollectionRepository) AddTask(ctx context.Context, taskID, collectionID string) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO task_collections (task_id, collection_id) VALUES (?, ?)`,
		taskID,
		collectionID,
	)
	if err != nil {
		return fmt.Errorf("add task to collection: %w", err)
	}
	return nil
}

func (r *CollectionRepository) RemoveTask(ctx context.Context, taskID, collectionID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM task_collections WHERE task_id = ? AND collection_id = ?`,
		taskID,
		collectionID,
	)
	if err != nil {
		return fmt.Errorf("remove task from collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove task affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CollectionRepository) ListTasks(ctx context.Context, userID, collectionID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND id IN (
			SELECT task_id FROM task_collections WHERE collection_id = ?
		 )
		 ORDER BY created_at DESC`,
		userID,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list collection tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection tasks: %w", err)
	}
	return tasks, nil
}

func scanCollection(s scanner) (*model.Collection, error) {
	collection := model.Collection{}
	var createdAt string

	err := s.Scan(
		&collection.ID,
		&collection.UserID,
		&collection.Name,
		&collection.IsRecurring,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan collection: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse collection created_at: %w", err)
	}
	collection.CreatedAt = parsedCreatedAt

	return &collection, nil
}
