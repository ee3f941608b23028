package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

type CategoryInput struct {
	Name        string
	Color       string
	Icon        *string
	Description *string
	IsDefault   bool
}

func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (*model.Category, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "category name is required")
	}

	existing, err := s.categoryRepo.GetByName(ctx, userID, name)
	if err != nil && err != repository.ErrNotFound {
		return nil, apperrors.Internal("failed to query categories")
	}
	if existing != nil {
		return nil, apperrors.Conflict("category_exists", "a category with this name already exists", nil)
	}

	category := model.Category{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Color:       input.Color,
		Icon:        input.Icon,
		Description: input.Description,
		IsDefault:   input.IsDefault,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return nil, apperrors.Internal("failed to create category")
	}
	return &category, nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]model.Category, *apperrors.APIError) {
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list categories")
	}
	return categories, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, input CategoryInput) (*model.Category, *apperrors.APIError) {
	category, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("category_not_found", "category not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get category")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "category name is required")
	}

	if !strings.EqualFold(name, category.Name) {
		existing, err := s.categoryRepo.GetByName(ctx, userID, name)
		if err != nil && err != repository.ErrNotFound {
			return nil, apperrors.Internal("failed to query categories")
		}
		if existing != nil {
			return nil, apperrors.Conflict("category_exists", "a category with this name already exists", nil)
		}
	}

	category.Name = name
	category.Color = input.Color
	category.Icon = input.Icon
	category.Description = input.Description
	category.IsDefault = input.IsDefault

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, apperrors.Internal("failed to update category")
	}
	return category, nil
}

// Delete removes the category only. Tasks referencing it keep their
// categoryId; the dangling reference is tolerated by every reader.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.categoryRepo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("category_not_found", "category not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete category")
	}
	return nil
}
