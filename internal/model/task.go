package model

import "time"

const (
	StatusTodo      = "todo"
	StatusStarted   = "started"
	StatusCompleted = "completed"

	TypeStandard  = "standard"
	TypeTally     = "tally"
	TypeSubtasks  = "subtasks"
	TypeStopwatch = "stopwatch"
	TypeTimer     = "timer"
	TypeAlarm     = "alarm"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID                    string      `json:"id"`
	UserID                string      `json:"userId"`
	Name                  string      `json:"name"`
	Status                string      `json:"status"`
	Type                  string      `json:"type"`
	Priority              *string     `json:"priority,omitempty"`
	DueDate               *time.Time  `json:"dueDate,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
	StartedAt             *time.Time  `json:"startedAt,omitempty"`
	CompletedAt           *time.Time  `json:"completedAt,omitempty"`
	TallyTimestamps       []time.Time `json:"tallyTimestamps,omitempty"`
	IsRecurring           bool        `json:"isRecurring"`
	PreferredSegmentID    *string     `json:"preferredSegmentId,omitempty"`
	HasSubtasks           bool        `json:"hasSubtasks"`
	SubtaskCount          int         `json:"subtaskCount"`
	CompletedSubtaskCount int         `json:"completedSubtaskCount"`
	CategoryID            *string     `json:"categoryId,omitempty"`
	TemplateID            *string     `json:"templateId,omitempty"`
	TimerDurationSeconds  *int        `json:"timerDurationSeconds,omitempty"`
	AlarmTime             *string     `json:"alarmTime,omitempty"`
}

func IsValidTaskType(taskType string) bool {
	switch taskType {
	case TypeStandard, TypeTally, TypeSubtasks, TypeStopwatch, TypeTimer, TypeAlarm:
		return true
	}
	return false
}

func IsValidStatus(status string) bool {
	return status == StatusTodo || status == StatusStarted || status == StatusCompleted
}

func IsValidPriority(priority string) bool {
	return priority == PriorityLow || priority == PriorityMedium || priority == PriorityHigh
}
