package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"daysegment/backend/internal/model"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List results; zero-value fields are ignored.
type TaskFilter struct {
	Status     string
	SegmentID  string
	CategoryID string
}

const taskColumns = `id, user_id, name, status, type, priority, due_date, created_at,
		        started_at, completed_at, tally_timestamps, is_recurring,
		        preferred_segment_id, has_subtasks, subtask_count, completed_subtask_count,
		        category_id, template_id, timer_duration_seconds, alarm_time`

func (r *TaskRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.insert(ctx, r.db, task)
}

func (r *TaskRepository) CreateTx(ctx context.Context, tx *sql.Tx, task *model.Task) error {
	return r.insert(ctx, tx, task)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *TaskRepository) insert(ctx context.Context, ex execer, task *model.Task) error {
	tally, err := encodeTally(task.TallyTimestamps)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Name,
		task.Status,
		task.Type,
		nullString(task.Priority),
		nullTime(task.DueDate),
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullTime(task.StartedAt),
		nullTime(task.CompletedAt),
		tally,
		task.IsRecurring,
		nullString(task.PreferredSegmentID),
		task.HasSubtasks,
		task.SubtaskCount,
		task.CompletedSubtaskCount,
		nullString(task.CategoryID),
		nullString(task.TemplateID),
		nullInt(task.TimerDurationSeconds),
		nullString(task.AlarmTime),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id string) (*model.Task, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanTask(row)
}

func (r *TaskRepository) List(ctx context.Context, userID string, filter TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.SegmentID != "" {
		query += ` AND preferred_segment_id = ?`
		args = append(args, filter.SegmentID)
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
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
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.update(ctx, r.db, task)
}

func (r *TaskRepository) UpdateTx(ctx context.Context, tx *sql.Tx, task *model.Task) error {
	return r.update(ctx, tx, task)
}

func (r *TaskRepository) update(ctx context.Context, ex execer, task *model.Task) error {
	tally, err := encodeTally(task.TallyTimestamps)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(
		ctx,
		`UPDATE tasks
		 SET name = ?,
		     status = ?,
		     type = ?,
		     priority = ?,
		     due_date = ?,
		     started_at = ?,
		     completed_at = ?,
		     tally_timestamps = ?,
		     is_recurring = ?,
		     preferred_segment_id = ?,
		     has_subtasks = ?,
		     subtask_count = ?,
		     completed_subtask_count = ?,
		     category_id = ?,
		     template_id = ?,
		     timer_duration_seconds = ?,
		     alarm_time = ?
		 WHERE user_id = ? AND id = ?`,
		task.Name,
		task.Status,
		task.Type,
		nullString(task.Priority),
		nullTime(task.DueDate),
		nullTime(task.StartedAt),
		nullTime(task.CompletedAt),
		tally,
		task.IsRecurring,
		nullString(task.PreferredSegmentID),
		task.HasSubtasks,
		task.SubtaskCount,
		task.CompletedSubtaskCount,
		nullString(task.CategoryID),
		nullString(task.TemplateID),
		nullInt(task.TimerDurationSeconds),
		nullString(task.AlarmTime),
		task.UserID,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// UpdateCountersTx rewrites the denormalized subtask counters on a task row.
// Callers derive the values from the subtask rows inside the same tx.
func (r *TaskRepository) UpdateCountersTx(ctx context.Context, tx *sql.Tx, userID, taskID string, total, completed int) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE tasks
		 SET has_subtasks = ?, subtask_count = ?, completed_subtask_count = ?
		 WHERE user_id = ? AND id = ?`,
		total > 0,
		total,
		completed,
		userID,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("update task counters: %w", err)
	}
	return nil
}

// Delete removes the task together with its subtasks and collection join
// rows. Category and template references on other rows are left alone.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_collections WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete task collections: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete task: %w", err)
	}
	return nil
}

func scanTask(s scanner) (*model.Task, error) {
	task := model.Task{}
	var (
		priority      sql.NullString
		dueDate       sql.NullString
		createdAt     string
		startedAt     sql.NullString
		completedAt   sql.NullString
		tally         sql.NullString
		segmentID     sql.NullString
		categoryID    sql.NullString
		templateID    sql.NullString
		timerDuration sql.NullInt64
		alarmTime     sql.NullString
	)

	err := s.Scan(
		&task.ID,
		&task.UserID,
		&task.Name,
		&task.Status,
		&task.Type,
		&priority,
		&dueDate,
		&createdAt,
		&startedAt,
		&completedAt,
		&tally,
		&task.IsRecurring,
		&segmentID,
		&task.HasSubtasks,
		&task.SubtaskCount,
		&task.CompletedSubtaskCount,
		&categoryID,
		&templateID,
		&timerDuration,
		&alarmTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	task.CreatedAt = parsedCreatedAt

	if task.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, fmt.Errorf("parse task due_date: %w", err)
	}
	if task.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse task started_at: %w", err)
	}
	if task.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, fmt.Errorf("parse task completed_at: %w", err)
	}

	if tally.Valid && tally.String != "" {
		if err := json.Unmarshal([]byte(tally.String), &task.TallyTimestamps); err != nil {
			return nil, fmt.Errorf("decode tally timestamps: %w", err)
		}
	}

	task.Priority = stringPtr(priority)
	task.PreferredSegmentID = stringPtr(segmentID)
	task.CategoryID = stringPtr(categoryID)
	task.TemplateID = stringPtr(templateID)
	task.AlarmTime = stringPtr(alarmTime)
	if timerDuration.Valid {
		value := int(timerDuration.Int64)
		task.TimerDurationSeconds = &value
	}

	return &task, nil
}

func encodeTally(timestamps []time.Time) (interface{}, error) {
	if len(timestamps) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(timestamps)
	if err != nil {
		return nil, fmt.Errorf("encode tally timestamps: %w", err)
	}
	return string(raw), nil
}
