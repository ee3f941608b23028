package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

type TemplateService struct {
	templateRepo *repository.TemplateRepository
	taskRepo     *repository.TaskRepository
	subtaskRepo  *repository.SubtaskRepository
}

func NewTemplateService(
	templateRepo *repository.TemplateRepository,
	taskRepo *repository.TaskRepository,
	subtaskRepo *repository.SubtaskRepository,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		taskRepo:     taskRepo,
		subtaskRepo:  subtaskRepo,
	}
}

type TemplateInput struct {
	Name                 string
	Type                 string
	Priority             *string
	CategoryID           *string
	PreferredSegmentID   *string
	IsRecurring          bool
	TimerDurationSeconds *int
	AlarmTime            *string
	Subtasks             []string
}

func (s *TemplateService) Create(ctx context.Context, userID string, input TemplateInput) (*model.TaskTemplate, *apperrors.APIError) {
	if input.Name == "" {
		return nil, apperrors.BadRequest("invalid_name", "template name is required")
	}
	templateType := input.Type
	if templateType == "" {
		templateType = model.TypeStandard
	}
	if !model.IsValidTaskType(templateType) {
		return nil, apperrors.BadRequest("invalid_type", "unknown task type")
	}
	if len(input.Subtasks) > 0 && templateType != model.TypeSubtasks {
		return nil, apperrors.BadRequest("invalid_subtasks", "only subtasks templates may carry subtask blueprints")
	}

	template := model.TaskTemplate{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Name:                 input.Name,
		Type:                 templateType,
		Priority:             input.Priority,
		CategoryID:           input.CategoryID,
		PreferredSegmentID:   input.PreferredSegmentID,
		IsRecurring:          input.IsRecurring,
		TimerDurationSeconds: input.TimerDurationSeconds,
		AlarmTime:            input.AlarmTime,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.templateRepo.Create(ctx, &template); err != nil {
		return nil, apperrors.Internal("failed to create template")
	}

	for order, name := range input.Subtasks {
		subtaskTemplate := model.SubtaskTemplate{
			ID:         uuid.NewString(),
			TemplateID: template.ID,
			Name:       name,
			Order:      order,
		}
		if err := s.templateRepo.CreateSubtaskTemplate(ctx, &subtaskTemplate); err != nil {
			return nil, apperrors.Internal("failed to create subtask template")
		}
	}

	return &template, nil
}

func (s *TemplateService) List(ctx context.Context, userID string) ([]model.TaskTemplate, *apperrors.APIError) {
	templates, err := s.templateRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list templates")
	}
	return templates, nil
}

func (s *TemplateService) Get(ctx context.Context, userID, id string) (*model.TaskTemplate, []model.SubtaskTemplate, *apperrors.APIError) {
	template, err := s.templateRepo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, nil, apperrors.NotFound("template_not_found", "template not found")
	}
	if err != nil {
		return nil, nil, apperrors.Internal("failed to get template")
	}

	subtaskTemplates, err := s.templateRepo.ListSubtaskTemplates(ctx, id)
	if err != nil {
		return nil, nil, apperrors.Internal("failed to list subtask templates")
	}
	return template, subtaskTemplates, nil
}

func (s *TemplateService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.templateRepo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("template_not_found", "template not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete template")
	}
	return nil
}

// Instantiate creates a task (plus subtasks for subtasks-type blueprints)
// from the template and bumps its usage count, all in one transaction.
func (s *TemplateService) Instantiate(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	now := time.Now().UTC()

	tx, err := s.templateRepo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	template, err := s.templateRepo.GetByIDTx(ctx, tx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("template_not_found", "template not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get template")
	}

	task := model.Task{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Name:                 template.Name,
		Status:               model.StatusTodo,
		Type:                 template.Type,
		Priority:             template.Priority,
		CreatedAt:            now,
		IsRecurring:          template.IsRecurring,
		PreferredSegmentID:   template.PreferredSegmentID,
		CategoryID:           template.CategoryID,
		TemplateID:           &template.ID,
		TimerDurationSeconds: template.TimerDurationSeconds,
		AlarmTime:            template.AlarmTime,
	}

	subtaskTemplates, err := s.templateRepo.ListSubtaskTemplatesTx(ctx, tx, template.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to list subtask templates")
	}

	task.SubtaskCount = len(subtaskTemplates)
	task.HasSubtasks = len(subtaskTemplates) > 0

	if err := s.taskRepo.CreateTx(ctx, tx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}

	for _, blueprint := range subtaskTemplates {
		subtask := model.Subtask{
			ID:        uuid.NewString(),
			TaskID:    task.ID,
			Name:      blueprint.Name,
			CreatedAt: now,
			Order:     blueprint.Order,
		}
		if err := s.subtaskRepo.InsertTx(ctx, tx, &subtask); err != nil {
			return nil, apperrors.Internal("failed to create subtask")
		}
	}

	if err := s.templateRepo.RecordUsageTx(ctx, tx, userID, template.ID, now); err != nil {
		return nil, apperrors.Internal("failed to record template usage")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return &task, nil
}
