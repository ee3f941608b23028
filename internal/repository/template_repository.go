package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daysegment/backend/internal/model"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `id, user_id, name, type, priority, category_id, preferred_segment_id,
		        is_recurring, timer_duration_seconds, alarm_time, usage_count, created_at, last_used_at`

func (r *TemplateRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *TemplateRepository) Create(ctx context.Context, template *model.TaskTemplate) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO task_templates (`+templateColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		template.ID,
		template.UserID,
		template.Name,
		template.Type,
		nullString(template.Priority),
		nullString(template.CategoryID),
		nullString(template.PreferredSegmentID),
		template.IsRecurring,
		nullInt(template.TimerDurationSeconds),
		nullString(template.AlarmTime),
		template.UsageCount,
		template.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullTime(template.LastUsedAt),
	)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, userID, id string) (*model.TaskTemplate, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+templateColumns+` FROM task_templates WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanTemplate(row)
}

func (r *TemplateRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id string) (*model.TaskTemplate, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+templateColumns+` FROM task_templates WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanTemplate(row)
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]model.TaskTemplate, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+templateColumns+` FROM task_templates
		 WHERE user_id = ? ORDER BY usage_count DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]model.TaskTemplate, 0)
	for rows.Next() {
		template, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		templates = append(templates, *template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtask_templates WHERE template_id = ?`, id); err != nil {
		return fmt.Errorf("delete subtask templates: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM task_templates WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete template: %w", err)
	}
	return nil
}

// RecordUsageTx bumps usage_count and stamps last_used_at as part of a
// template instantiation transaction.
func (r *TemplateRepository) RecordUsageTx(ctx context.Context, tx *sql.Tx, userID, id string, usedAt time.Time) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE task_templates SET usage_count = usage_count + 1, last_used_at = ?
		 WHERE user_id = ? AND id = ?`,
		usedAt.UTC().Format(time.RFC3339Nano),
		userID,
		id,
	)
	if err != nil {
		return fmt.Errorf("record template usage: %w", err)
	}
	return nil
}

func (r *TemplateRepository) CreateSubtaskTemplate(ctx context.Context, subtaskTemplate *model.SubtaskTemplate) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO subtask_templates (id, template_id, name, sort_order) VALUES (?, ?, ?, ?)`,
		subtaskTemplate.ID,
		subtaskTemplate.TemplateID,
		subtaskTemplate.Name,
		subtaskTemplate.Order,
	)
	if err != nil {
		return fmt.Errorf("create subtask template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) ListSubtaskTemplates(ctx context.Context, templateID string) ([]model.SubtaskTemplate, error) {
	return r.listSubtaskTemplates(ctx, r.db, templateID)
}

func (r *TemplateRepository) ListSubtaskTemplatesTx(ctx context.Context, tx *sql.Tx, templateID string) ([]model.SubtaskTemplate, error) {
	return r.listSubtaskTemplates(ctx, tx, templateID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *TemplateRepository) listSubtaskTemplates(ctx context.Context, q querier, templateID string) ([]model.SubtaskTemplate, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT id, template_id, name, sort_order FROM subtask_templates
		 WHERE template_id = ? ORDER BY sort_order ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subtask templates: %w", err)
	}
	defer rows.Close()

	templates := make([]model.SubtaskTemplate, 0)
	for rows.Next() {
		var st model.SubtaskTemplate
		if err := rows.Scan(&st.ID, &st.TemplateID, &st.Name, &st.Order); err != nil {
			return nil, fmt.Errorf("scan subtask template: %w", err)
		}
		templates = append(templates, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtask templates: %w", err)
	}
	return templates, nil
}

func scanTemplate(s scanner) (*model.TaskTemplate, error) {
	template := model.TaskTemplate{}
	var (
		priority      sql.NullString
		categoryID    sql.NullString
		segmentID     sql.NullString
		timerDuration sql.NullInt64
		alarmTime     sql.NullString
		createdAt     string
		lastUsedAt    sql.NullString
	)

	err := s.Scan(
		&template.ID,
		&template.UserID,
		&template.Name,
		&template.Type,
		&priority,
		&categoryID,
		&segmentID,
		&template.IsRecurring,
		&timerDuration,
		&alarmTime,
		&template.UsageCount,
		&createdAt,
		&lastUsedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse template created_at: %w", err)
	}
	template.CreatedAt = parsedCreatedAt

	if template.LastUsedAt, err = parseNullTime(lastUsedAt); err != nil {
		return nil, fmt.Errorf("parse template last_used_at: %w", err)
	}

	template.Priority = stringPtr(priority)
	template.CategoryID = stringPtr(categoryID)
	template.PreferredSegmentID = stringPtr(segmentID)
	template.AlarmTime = stringPtr(alarmTime)
	if timerDuration.Valid {
		value := int(timerDuration.Int64)
		template.TimerDurationSeconds = &value
	}

	return &template, nil
}
