package model

// TaskCompletion is a historical record of one completion event. Rows are
// append-only: produced when a task completes, consumed by analytics, never
// mutated. Date is kept as the RFC3339 string the client recorded; analytics
// parses it leniently and skips anything unparseable.
type TaskCompletion struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	TaskID    string `json:"taskId"`
	SegmentID string `json:"segmentId"`
	TaskType  string `json:"taskType"`
}
