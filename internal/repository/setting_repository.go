package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daysegment/backend/internal/model"
)

type SettingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, userID, key string) (*model.Setting, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT key, user_id, value, updated_at FROM settings WHERE user_id = ? AND key = ?`,
		userID,
		key,
	)

	setting := model.Setting{}
	var updatedAt string
	if err := row.Scan(&setting.Key, &setting.UserID, &setting.Value, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse setting updated_at: %w", err)
	}
	setting.UpdatedAt = parsedUpdatedAt

	return &setting, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, setting *model.Setting) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO settings (key, user_id, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		setting.Key,
		setting.UserID,
		setting.Value,
		setting.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

func (r *SettingRepository) List(ctx context.Context, userID string) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT key, user_id, value, updated_at FROM settings WHERE user_id = ? ORDER BY key ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make([]model.Setting, 0)
	for rows.Next() {
		setting := model.Setting{}
		var updatedAt string
		if err := rows.Scan(&setting.Key, &setting.UserID, &setting.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		parsedUpdatedAt, parseErr := parseTime(updatedAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse setting updated_at: %w", parseErr)
		}
		setting.UpdatedAt = parsedUpdatedAt
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return settings, nil
}

func (r *SettingRepository) Delete(ctx context.Context, userID, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE user_id = ? AND key = ?`, userID, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete setting affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
