package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

// SubtaskService keeps the parent task's denormalized counters honest:
// every mutation runs in one transaction that re-derives hasSubtasks,
// subtaskCount and completedSubtaskCount from the subtask rows, so the
// cached fields can never drift from the source of truth.
type SubtaskService struct {
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
}

func NewSubtaskService(taskRepo *repository.TaskRepository, subtaskRepo *repository.SubtaskRepository) *SubtaskService {
	return &SubtaskService{taskRepo: taskRepo, subtaskRepo: subtaskRepo}
}

func (s *SubtaskService) List(ctx context.Context, userID, taskID string) ([]model.Subtask, *apperrors.APIError) {
	if _, apiErr := s.requireTask(ctx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}
	subtasks, err := s.subtaskRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperrors.Internal("failed to list subtasks")
	}
	return subtasks, nil
}

func (s *SubtaskService) Add(ctx context.Context, userID, taskID, name string) (*model.Subtask, *apperrors.APIError) {
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "subtask name is required")
	}
	if _, apiErr := s.requireTask(ctx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}

	tx, err := s.taskRepo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	order, err := s.subtaskRepo.NextOrderTx(ctx, tx, taskID)
	if err != nil {
		return nil, apperrors.Internal("failed to order subtask")
	}

	subtask := model.Subtask{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Order:     order,
	}
	if err := s.subtaskRepo.InsertTx(ctx, tx, &subtask); err != nil {
		return nil, apperrors.Internal("failed to create subtask")
	}

	if apiErr := s.reconcileCounters(ctx, tx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return &subtask, nil
}

func (s *SubtaskService) Toggle(ctx context.Context, userID, taskID, subtaskID string) (*model.Subtask, *apperrors.APIError) {
	if _, apiErr := s.requireTask(ctx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}

	tx, err := s.taskRepo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	subtask, err := s.subtaskRepo.GetTx(ctx, tx, taskID, subtaskID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("subtask_not_found", "subtask not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get subtask")
	}

	if subtask.IsCompleted {
		subtask.IsCompleted = false
		subtask.CompletedAt = nil
	} else {
		now := time.Now().UTC()
		subtask.IsCompleted = true
		subtask.CompletedAt = &now
	}

	if err := s.subtaskRepo.UpdateTx(ctx, tx, subtask); err != nil {
		return nil, apperrors.Internal("failed to update subtask")
	}

	if apiErr := s.reconcileCounters(ctx, tx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return subtask, nil
}

func (s *SubtaskService) Delete(ctx context.Context, userID, taskID, subtaskID string) *apperrors.APIError {
	if _, apiErr := s.requireTask(ctx, userID, taskID); apiErr != nil {
		return apiErr
	}

	tx, err := s.taskRepo.BeginTx(ctx)
	if err != nil {
		return apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	err = s.subtaskRepo.DeleteTx(ctx, tx, taskID, subtaskID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("subtask_not_found", "subtask not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete subtask")
	}

	if apiErr := s.reconcileCounters(ctx, tx, userID, taskID); apiErr != nil {
		return apiErr
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("failed to commit transaction")
	}
	return nil
}

// Reorder renumbers every subtask of the task: listed ids take positions
// following the given sequence, unlisted ones follow in their prior order.
// Orders stay unique and contiguous within the task.
func (s *SubtaskService) Reorder(ctx context.Context, userID, taskID string, orderedIDs []string) *apperrors.APIError {
	if _, apiErr := s.requireTask(ctx, userID, taskID); apiErr != nil {
		return apiErr
	}

	tx, err := s.taskRepo.BeginTx(ctx)
	if err != nil {
		return apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	subtasks, err := s.subtaskRepo.ListByTaskTx(ctx, tx, taskID)
	if err != nil {
		return apperrors.Internal("failed to list subtasks")
	}

	byID := make(map[string]*model.Subtask, len(subtasks))
	for i := range subtasks {
		byID[subtasks[i].ID] = &subtasks[i]
	}

	position := 0
	listed := make(map[string]struct{}, len(orderedIDs))
	for _, subtaskID := range orderedIDs {
		subtask, ok := byID[subtaskID]
		if !ok {
			return apperrors.NotFound("subtask_not_found", "subtask not found")
		}
		if _, seen := listed[subtaskID]; seen {
			continue
		}
		listed[subtaskID] = struct{}{}
		subtask.Order = position
		position++
		if err := s.subtaskRepo.UpdateTx(ctx, tx, subtask); err != nil {
			return apperrors.Internal("failed to reorder subtask")
		}
	}

	for i := range subtasks {
		subtask := &subtasks[i]
		if _, seen := listed[subtask.ID]; seen {
			continue
		}
		subtask.Order = position
		position++
		if err := s.subtaskRepo.UpdateTx(ctx, tx, subtask); err != nil {
			return apperrors.Internal("failed to reorder subtask")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("failed to commit transaction")
	}
	return nil
}

func (s *SubtaskService) requireTask(ctx context.Context, userID, taskID string) (*model.Task, *apperrors.APIError) {
	task, err := s.taskRepo.GetByID(ctx, userID, taskID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}
	return task, nil
}

func (s *SubtaskService) reconcileCounters(ctx context.Context, tx *sql.Tx, userID, taskID string) *apperrors.APIError {
	total, completed, err := s.subtaskRepo.CountTx(ctx, tx, taskID)
	if err != nil {
		return apperrors.Internal("failed to count subtasks")
	}
	if err := s.taskRepo.UpdateCountersTx(ctx, tx, userID, taskID, total, completed); err != nil {
		return apperrors.Internal("failed to update task counters")
	}
	return nil
}
