package model

import "time"

// TaskTemplate is a reusable blueprint for creating tasks. UsageCount is
// incremented each time the template instantiates a task.
type TaskTemplate struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	Priority             *string    `json:"priority,omitempty"`
	CategoryID           *string    `json:"categoryId,omitempty"`
	PreferredSegmentID   *string    `json:"preferredSegmentId,omitempty"`
	IsRecurring          bool       `json:"isRecurring"`
	TimerDurationSeconds *int       `json:"timerDurationSeconds,omitempty"`
	AlarmTime            *string    `json:"alarmTime,omitempty"`
	UsageCount           int        `json:"usageCount"`
	CreatedAt            time.Time  `json:"createdAt"`
	LastUsedAt           *time.Time `json:"lastUsedAt,omitempty"`
}

type SubtaskTemplate struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
}
