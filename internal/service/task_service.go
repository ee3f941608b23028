package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

type TaskService struct {
	taskRepo       *repository.TaskRepository
	segmentRepo    *repository.SegmentRepository
	completionRepo *repository.CompletionRepository
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	segmentRepo *repository.SegmentRepository,
	completionRepo *repository.CompletionRepository,
) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		segmentRepo:    segmentRepo,
		completionRepo: completionRepo,
	}
}

type CreateTaskInput struct {
	Name                 string
	Type                 string
	Priority             *string
	DueDate              *time.Time
	IsRecurring          bool
	PreferredSegmentID   *string
	CategoryID           *string
	TimerDurationSeconds *int
	AlarmTime            *string
}

type UpdateTaskInput struct {
	Name                 *string
	Priority             *string
	DueDate              *time.Time
	IsRecurring          *bool
	PreferredSegmentID   *string
	CategoryID           *string
	TimerDurationSeconds *int
	AlarmTime            *string
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*model.Task, *apperrors.APIError) {
	if input.Name == "" {
		return nil, apperrors.BadRequest("invalid_name", "task name is required")
	}
	taskType := input.Type
	if taskType == "" {
		taskType = model.TypeStandard
	}
	if !model.IsValidTaskType(taskType) {
		return nil, apperrors.BadRequest("invalid_type", "unknown task type")
	}
	if input.Priority != nil && !model.IsValidPriority(*input.Priority) {
		return nil, apperrors.BadRequest("invalid_priority", "priority must be one of low, medium, high")
	}

	task := model.Task{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Name:                 input.Name,
		Status:               model.StatusTodo,
		Type:                 taskType,
		Priority:             input.Priority,
		DueDate:              input.DueDate,
		CreatedAt:            time.Now().UTC(),
		IsRecurring:          input.IsRecurring,
		PreferredSegmentID:   input.PreferredSegmentID,
		CategoryID:           input.CategoryID,
		TimerDurationSeconds: input.TimerDurationSeconds,
		AlarmTime:            input.AlarmTime,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, filter repository.TaskFilter) ([]model.Task, *apperrors.APIError) {
	if filter.Status != "" && !model.IsValidStatus(filter.Status) {
		return nil, apperrors.BadRequest("invalid_status", "status must be one of todo, started, completed")
	}
	tasks, err := s.taskRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, input UpdateTaskInput) (*model.Task, *apperrors.APIError) {
	task, apiErr := s.Get(ctx, userID, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.BadRequest("invalid_name", "task name is required")
		}
		task.Name = *input.Name
	}
	if input.Priority != nil {
		if !model.IsValidPriority(*input.Priority) {
			return nil, apperrors.BadRequest("invalid_priority", "priority must be one of low, medium, high")
		}
		task.Priority = input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.IsRecurring != nil {
		task.IsRecurring = *input.IsRecurring
	}
	if input.PreferredSegmentID != nil {
		task.PreferredSegmentID = input.PreferredSegmentID
	}
	if input.CategoryID != nil {
		task.CategoryID = input.CategoryID
	}
	if input.TimerDurationSeconds != nil {
		task.TimerDurationSeconds = input.TimerDurationSeconds
	}
	if input.AlarmTime != nil {
		task.AlarmTime = input.AlarmTime
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.taskRepo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete task")
	}
	return nil
}

// Start moves a todo task to started and stamps startedAt. Starting an
// already started task is a no-op; completed tasks cannot be started.
func (s *TaskService) Start(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	task, apiErr := s.Get(ctx, userID, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if task.Status == model.StatusCompleted {
		return nil, apperrors.BadRequest("already_completed", "task is already completed")
	}
	if task.Status == model.StatusStarted {
		return task, nil
	}

	now := time.Now().UTC()
	task.Status = model.StatusStarted
	task.StartedAt = &now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to start task")
	}
	return task, nil
}

// Complete transitions the task to completed and records one completion
// event in the same transaction. The event's segment is the task's
// preferred segment when set, otherwise the segment whose window contains
// the completion instant. Recurring tasks reset to todo immediately after
// the event is recorded.
func (s *TaskService) Complete(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	now := time.Now().UTC()

	segments, err := s.segmentRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list segments")
	}

	tx, err := s.taskRepo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	task, err := s.taskRepo.GetByIDTx(ctx, tx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}

	if task.Status == model.StatusCompleted {
		return task, nil
	}

	segmentID := ""
	if task.PreferredSegmentID != nil {
		segmentID = *task.PreferredSegmentID
	} else if active := segmentActiveAt(segments, now); active != nil {
		segmentID = active.ID
	}

	completion := model.TaskCompletion{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      now.Format(time.RFC3339),
		TaskID:    task.ID,
		SegmentID: segmentID,
		TaskType:  task.Type,
	}
	if err := s.completionRepo.InsertTx(ctx, tx, &completion); err != nil {
		return nil, apperrors.Internal("failed to record completion")
	}

	if task.IsRecurring {
		task.Status = model.StatusTodo
		task.StartedAt = nil
		task.CompletedAt = nil
	} else {
		task.Status = model.StatusCompleted
		task.CompletedAt = &now
	}

	if err := s.taskRepo.UpdateTx(ctx, tx, task); err != nil {
		return nil, apperrors.Internal("failed to update task")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return task, nil
}

// AddTallyMark appends the current instant to a tally task's timestamps.
func (s *TaskService) AddTallyMark(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	task, apiErr := s.Get(ctx, userID, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if task.Type != model.TypeTally {
		return nil, apperrors.BadRequest("not_tally", "task is not a tally task")
	}

	now := time.Now().UTC()
	task.TallyTimestamps = append(task.TallyTimestamps, now)
	if task.Status == model.StatusTodo {
		task.Status = model.StatusStarted
		task.StartedAt = &now
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to add tally mark")
	}
	return task, nil
}
