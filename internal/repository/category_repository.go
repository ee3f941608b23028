package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"daysegment/backend/internal/model"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, user_id, name, color, icon, description, is_default, created_at`

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		nullString(category.Icon),
		nullString(category.Description),
		category.IsDefault,
		category.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID, id string) (*model.Category, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanCategory(row)
}

// GetByName matches case-insensitively; category names are unique per user
// regardless of case.
func (r *CategoryRepository) GetByName(ctx context.Context, userID, name string) (*model.Category, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND lower(name) = ?`,
		userID,
		strings.ToLower(name),
	)
	return scanCategory(row)
}

func (r *CategoryRepository) List(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name COLLATE NOCASE ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE categories SET name = ?, color = ?, icon = ?, description = ?, is_default = ?
		 WHERE user_id = ? AND id = ?`,
		category.Name,
		category.Color,
		nullString(category.Icon),
		nullString(category.Description),
		category.IsDefault,
		category.UserID,
		category.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete does not cascade: tasks keep their categoryId and callers tolerate
// the orphaned reference.
func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(s scanner) (*model.Category, error) {
	category := model.Category{}
	var icon sql.NullString
	var description sql.NullString
	var createdAt string

	err := s.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Color,
		&icon,
		&description,
		&category.IsDefault,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse category created_at: %w", err)
	}
	category.CreatedAt = parsedCreatedAt
	category.Icon = stringPtr(icon)
	category.Description = stringPtr(description)

	return &category, nil
}
