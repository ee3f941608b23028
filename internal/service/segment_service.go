package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

type SegmentService struct {
	segmentRepo *repository.SegmentRepository
}

func NewSegmentService(segmentRepo *repository.SegmentRepository) *SegmentService {
	return &SegmentService{segmentRepo: segmentRepo}
}

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type SegmentInput struct {
	Name      string
	StartTime string
	EndTime   string
	Color     string
}

func validateSegmentInput(input SegmentInput) *apperrors.APIError {
	if input.Name == "" {
		return apperrors.BadRequest("invalid_name", "segment name is required")
	}
	if !timeOfDayPattern.MatchString(input.StartTime) || !timeOfDayPattern.MatchString(input.EndTime) {
		return apperrors.BadRequest("invalid_time", "startTime and endTime must be HH:MM")
	}
	if input.StartTime >= input.EndTime {
		return apperrors.BadRequest("invalid_window", "startTime must be before endTime")
	}
	return nil
}

func (s *SegmentService) Create(ctx context.Context, userID string, input SegmentInput) (*model.Segment, *apperrors.APIError) {
	if apiErr := validateSegmentInput(input); apiErr != nil {
		return nil, apiErr
	}

	segment := model.Segment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      input.Name,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Color:     input.Color,
	}
	if err := s.segmentRepo.Create(ctx, &segment); err != nil {
		return nil, apperrors.Internal("failed to create segment")
	}
	return &segment, nil
}

func (s *SegmentService) List(ctx context.Context, userID string) ([]model.Segment, *apperrors.APIError) {
	segments, err := s.segmentRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list segments")
	}
	return segments, nil
}

func (s *SegmentService) Update(ctx context.Context, userID, id string, input SegmentInput) (*model.Segment, *apperrors.APIError) {
	if apiErr := validateSegmentInput(input); apiErr != nil {
		return nil, apiErr
	}

	segment := model.Segment{
		ID:        id,
		UserID:    userID,
		Name:      input.Name,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Color:     input.Color,
	}
	err := s.segmentRepo.Update(ctx, &segment)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("segment_not_found", "segment not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update segment")
	}
	return &segment, nil
}

func (s *SegmentService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.segmentRepo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("segment_not_found", "segment not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete segment")
	}
	return nil
}

// segmentActiveAt returns the segment whose [start, end) window contains
// the instant's time of day, or nil when no segment matches.
func segmentActiveAt(segments []model.Segment, at time.Time) *model.Segment {
	clock := at.Format("15:04")
	for i := range segments {
		if segments[i].StartTime <= clock && clock < segments[i].EndTime {
			return &segments[i]
		}
	}
	return nil
}
