package model

// Segment is a named time-of-day partition of the day ("Morning", "Evening").
// StartTime and EndTime are "HH:MM" strings; a segment is active for
// instants in [StartTime, EndTime).
type Segment struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Color     string `json:"color"`
}
