package model

import "time"

// Setting is a persisted key/value preference row. Values are stored as
// JSON text so callers can keep anything from a plain string to a record.
type Setting struct {
	Key       string    `json:"key"`
	UserID    string    `json:"userId"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	SettingKeyNotifications    = "notificationSettings"
	SettingKeyCompletionSound  = "completionSound"
	SettingKeyWelcomeModalSeen = "welcomeModalSeen"
)

const NotificationSettingsVersion = 2

// NotificationSettings is a typed, versioned record. Older persisted
// versions are upgraded on read; see SettingsService.
type NotificationSettings struct {
	Version          int    `json:"version"`
	Enabled          bool   `json:"enabled"`
	SegmentReminders bool   `json:"segmentReminders"`
	TaskReminders    bool   `json:"taskReminders"`
	ReminderLeadMin  int    `json:"reminderLeadMinutes"`
	Sound            string `json:"sound"`
	QuietHoursStart  string `json:"quietHoursStart"`
	QuietHoursEnd    string `json:"quietHoursEnd"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Version:          NotificationSettingsVersion,
		Enabled:          true,
		SegmentReminders: true,
		TaskReminders:    true,
		ReminderLeadMin:  10,
		Sound:            "chime",
		QuietHoursStart:  "22:00",
		QuietHoursEnd:    "07:00",
	}
}
