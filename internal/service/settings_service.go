package service

import (
	"context"
	"encoding/json"
	"time"

	apperrors "daysegment/backend/internal/errors"
	"daysegment/backend/internal/model"
	"daysegment/backend/internal/repository"
)

type SettingsService struct {
	settingRepo *repository.SettingRepository
}

func NewSettingsService(settingRepo *repository.SettingRepository) *SettingsService {
	return &SettingsService{settingRepo: settingRepo}
}

// settingDefaults holds the built-in values for known keys, as JSON text.
// A key with a default answers reads before any explicit Set; only a Set
// persists a row.
var settingDefaults = map[string]string{
	model.SettingKeyCompletionSound:  `"complete"`,
	model.SettingKeyWelcomeModalSeen: `false`,
}

func (s *SettingsService) Get(ctx context.Context, userID, key string) (*model.Setting, *apperrors.APIError) {
	setting, err := s.settingRepo.Get(ctx, userID, key)
	if err == repository.ErrNotFound {
		if value, ok := settingDefaults[key]; ok {
			return &model.Setting{Key: key, UserID: userID, Value: value}, nil
		}
		return nil, apperrors.NotFound("setting_not_found", "setting not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get setting")
	}
	return setting, nil
}

func (s *SettingsService) List(ctx context.Context, userID string) ([]model.Setting, *apperrors.APIError) {
	settings, err := s.settingRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list settings")
	}
	return settings, nil
}

func (s *SettingsService) Set(ctx context.Context, userID, key, value string) (*model.Setting, *apperrors.APIError) {
	if key == "" {
		return nil, apperrors.BadRequest("invalid_key", "setting key is required")
	}

	setting := model.Setting{
		Key:       key,
		UserID:    userID,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.settingRepo.Upsert(ctx, &setting); err != nil {
		return nil, apperrors.Internal("failed to save setting")
	}
	return &setting, nil
}

// Delete removes a stored setting row, returning the key to its default.
func (s *SettingsService) Delete(ctx context.Context, userID, key string) *apperrors.APIError {
	err := s.settingRepo.Delete(ctx, userID, key)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("setting_not_found", "setting not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete setting")
	}
	return nil
}

// GetNotificationSettings returns the typed notification record. A missing
// row yields the defaults (persisted so the first read settles the record);
// a stored older version is migrated forward and written back.
func (s *SettingsService) GetNotificationSettings(ctx context.Context, userID string) (*model.NotificationSettings, *apperrors.APIError) {
	setting, err := s.settingRepo.Get(ctx, userID, model.SettingKeyNotifications)
	if err == repository.ErrNotFound {
		defaults := model.DefaultNotificationSettings()
		if apiErr := s.saveNotificationSettings(ctx, userID, defaults); apiErr != nil {
			return nil, apiErr
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get notification settings")
	}

	var stored model.NotificationSettings
	if err := json.Unmarshal([]byte(setting.Value), &stored); err != nil {
		// Unreadable blob: fall back to defaults rather than failing the UI.
		defaults := model.DefaultNotificationSettings()
		if apiErr := s.saveNotificationSettings(ctx, userID, defaults); apiErr != nil {
			return nil, apiErr
		}
		return &defaults, nil
	}

	if migrated := migrateNotificationSettings(&stored); migrated {
		if apiErr := s.saveNotificationSettings(ctx, userID, stored); apiErr != nil {
			return nil, apiErr
		}
	}
	return &stored, nil
}

func (s *SettingsService) UpdateNotificationSettings(ctx context.Context, userID string, settings model.NotificationSettings) (*model.NotificationSettings, *apperrors.APIError) {
	if settings.ReminderLeadMin < 0 {
		return nil, apperrors.BadRequest("invalid_lead", "reminder lead minutes must not be negative")
	}
	settings.Version = model.NotificationSettingsVersion
	if settings.Sound == "" {
		settings.Sound = model.DefaultNotificationSettings().Sound
	}

	if apiErr := s.saveNotificationSettings(ctx, userID, settings); apiErr != nil {
		return nil, apiErr
	}
	return &settings, nil
}

func (s *SettingsService) saveNotificationSettings(ctx context.Context, userID string, settings model.NotificationSettings) *apperrors.APIError {
	raw, err := json.Marshal(settings)
	if err != nil {
		return apperrors.Internal("failed to encode notification settings")
	}

	setting := model.Setting{
		Key:       model.SettingKeyNotifications,
		UserID:    userID,
		Value:     string(raw),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.settingRepo.Upsert(ctx, &setting); err != nil {
		return apperrors.Internal("failed to save notification settings")
	}
	return nil
}

// migrateNotificationSettings upgrades a stored record to the current
// version in place, reporting whether anything changed.
//
// v1 predates quiet hours and the reminder lead; it carried only the
// enabled flags and sound choice.
func migrateNotificationSettings(settings *model.NotificationSettings) bool {
	if settings.Version >= model.NotificationSettingsVersion {
		return false
	}

	defaults := model.DefaultNotificationSettings()
	if settings.Version < 2 {
		if settings.ReminderLeadMin == 0 {
			settings.ReminderLeadMin = defaults.ReminderLeadMin
		}
		if settings.QuietHoursStart == "" {
			settings.QuietHoursStart = defaults.QuietHoursStart
		}
		if settings.QuietHoursEnd == "" {
			settings.QuietHoursEnd = defaults.QuietHoursEnd
		}
	}
	if settings.Sound == "" {
		settings.Sound = defaults.Sound
	}
	settings.Version = model.NotificationSettingsVersion
	return true
}
