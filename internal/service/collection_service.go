package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

type CollectionService struct {
	collectionRepo *repository.CollectionRepository
	taskRepo       *repository.TaskRepository
}

func NewCollectionService(collectionRepo *repository.CollectionRepository, taskRepo *repository.TaskRepository) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo, taskRepo: taskRepo}
}

type CollectionInput struct {
	Name        string
	IsRecurring bool
}

func (s *CollectionService) Create(ctx context.Context, userID string, input CollectionInput) (*model.Collection, *apperrors.APIError) {
	if input.Name == "" {
		return nil, apperrors.BadRequest("invalid_name", "collection name is required")
	}

	collection := model.Collection{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		IsRecurring: input.IsRecurring,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.collectionRepo.Create(ctx, &collection); err != nil {
		return nil, apperrors.Internal("failed to create collection")
	}
	return &collection, nil
}

func (s *CollectionService) List(ctx context.Context, userID string) ([]model.Collection, *apperrors.APIError) {
	collections, err := s.collectionRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list collections")
	}
	return collections, nil
}

func (s *CollectionService) Update(ctx context.Context, userID, id string, input CollectionInput) (*model.Collection, *apperrors.APIError) {
	if input.Name == "" {
		return nil, apperrors.BadRequest("invalid_name", "collection name is required")
	}

	collection, err := s.collectionRepo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("collection_not_found", "collection not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get collection")
	}

	collection.Name = input.Name
	collection.IsRecurring = input.IsRecurring

	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, apperrors.Internal("failed to update collection")
	}
	return collection, nil
}

func (s *CollectionService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.collectionRepo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("collection_not_found", "collection not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete collection")
	}
	return nil
}

func (s *CollectionService) AddTask(ctx context.Context, userID, collectionID, taskID string) *apperrors.APIError {
	if _, err := s.collectionRepo.GetByID(ctx, userID, collectionID); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("collection_not_found", "collection not found")
		}
		return apperrors.Internal("failed to get collection")
	}
	if _, err := s.taskRepo.GetByID(ctx, userID, taskID); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("task_not_found", "task not found")
		}
		return apperrors.Internal("failed to get task")
	}

	if err := s.collectionRepo.AddTask(ctx, taskID, collectionID); err != nil {
		return apperrors.Internal("failed to add task to collection")
	}
	return nil
}

func (s *CollectionService) RemoveTask(ctx context.Context, userID, collectionID, taskID string) *apperrors.APIError {
	if _, err := s.collectionRepo.GetByID(ctx, userID, collectionID); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("collection_not_found", "collection not found")
		}
		return apperrors.Internal("failed to get collection")
	}

	err := s.collectionRepo.RemoveTask(ctx, taskID, collectionID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("membership_not_found", "task is not in this collection")
	}
	if err != nil {
		return apperrors.Internal("failed to remove task from collection")
	}
	return nil
}

func (s *CollectionService) ListTasks(ctx context.Context, userID, collectionID string) ([]model.Task, *apperrors.APIError) {
	if _, err := s.collectionRepo.GetByID(ctx, userID, collectionID); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("collection_not_found", "collection not found")
		}
		return nil, apperrors.Internal("failed to get collection")
	}

	tasks, err := s.collectionRepo.ListTasks(ctx, userID, collectionID)
	if err != nil {
		return nil, apperrors.Internal("failed to list collection tasks")
	}
	return tasks, nil
}
