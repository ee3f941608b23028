package model

import "time"

type Subtask struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	Name        string     `json:"name"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Order       int        `json:"order"`
}
