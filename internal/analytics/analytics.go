// Package analytics turns raw completion history into chart-ready
// summaries. Every function is pure and total: malformed dates are
// skipped, unknown references are ignored, and nil input produces an
// empty result instead of an error, because the output feeds straight
// into dashboard rendering.
package analytics

import (
	"sort"
	"time"

	"daysegment/backend/internal/model"
)

type SegmentProductivity struct {
	SegmentID   string `json:"segmentId"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Completions int    `json:"completions"`
}

type TypeCompletion struct {
	Type        string `json:"type"`
	TotalTasks  int    `json:"totalTasks"`
	Completions int    `json:"completions"`
}

type HeatmapCell struct {
	Day   string `json:"day"`
	Hour  int    `json:"hour"`
	Value int    `json:"value"`
}

type TaskStreak struct {
	TaskName      string `json:"taskName"`
	CurrentStreak int    `json:"currentStreak"`
	MaxStreak     int    `json:"maxStreak"`
}

// ProductivityBySegment counts completions per segment, in the order the
// segments list gives them. Segments with no completions still appear with
// a zero count; completions referencing an unknown segment are dropped.
func ProductivityBySegment(completions []model.TaskCompletion, segments []model.Segment) []SegmentProductivity {
	results := make([]SegmentProductivity, 0, len(segments))
	index := make(map[string]int, len(segments))
	for _, segment := range segments {
		index[segment.ID] = len(results)
		results = append(results, SegmentProductivity{
			SegmentID: segment.ID,
			Name:      segment.Name,
			Color:     segment.Color,
		})
	}

	for _, completion := range completions {
		if position, ok := index[completion.SegmentID]; ok {
			results[position].Completions++
		}
	}
	return results
}

// completionTypes is the fixed bucket order for CompletionByTaskType.
// Stopwatch, timer and alarm tasks are excluded from the type breakdown.
var completionTypes = []string{model.TypeStandard, model.TypeTally, model.TypeSubtasks}

// CompletionByTaskType returns one bucket per tracked type. TotalTasks
// counts tasks of that type; Completions counts events whose referenced
// task has that type. Rate display (and its divide-by-zero) belongs to
// the caller.
func CompletionByTaskType(completions []model.TaskCompletion, tasks []model.Task) []TypeCompletion {
	results := make([]TypeCompletion, len(completionTypes))
	index := make(map[string]int, len(completionTypes))
	for i, taskType := range completionTypes {
		results[i] = TypeCompletion{Type: taskType}
		index[taskType] = i
	}

	taskTypes := make(map[string]string, len(tasks))
	for _, task := range tasks {
		taskTypes[task.ID] = task.Type
		if i, ok := index[task.Type]; ok {
			results[i].TotalTasks++
		}
	}

	for _, completion := range completions {
		taskType, ok := taskTypes[completion.TaskID]
		if !ok {
			// Completions can outlive their task; fall back to the type
			// recorded on the event itself.
			taskType = completion.TaskType
		}
		if i, ok := index[taskType]; ok {
			results[i].Completions++
		}
	}
	return results
}

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// HeatmapData returns a dense 7x24 grid, one cell per (weekday, hour),
// incremented once per completion falling in that cell. Unparseable dates
// are skipped.
func HeatmapData(completions []model.TaskCompletion) []HeatmapCell {
	cells := make([]HeatmapCell, 0, 7*24)
	for _, day := range weekdayNames {
		for hour := 0; hour < 24; hour++ {
			cells = append(cells, HeatmapCell{Day: day, Hour: hour})
		}
	}

	for _, completion := range completions {
		at, ok := parseCompletionDate(completion.Date)
		if !ok {
			continue
		}
		cells[int(at.Weekday())*24+at.Hour()].Value++
	}
	return cells
}

// StreakData computes, per task, the longest run of consecutive calendar
// days with at least one completion (max streak) and the run ending today
// or yesterday (current streak). A most recent completion two or more days
// ago means the current streak is 0. Time of day is ignored.
func StreakData(completions []model.TaskCompletion, tasks []model.Task, now time.Time) map[string]TaskStreak {
	results := make(map[string]TaskStreak, len(tasks))
	names := make(map[string]string, len(tasks))
	for _, task := range tasks {
		names[task.ID] = task.Name
	}

	// Distinct completion days per task, as day ordinals.
	daysByTask := make(map[string]map[int]struct{})
	for _, completion := range completions {
		at, ok := parseCompletionDate(completion.Date)
		if !ok {
			continue
		}
		days, ok := daysByTask[completion.TaskID]
		if !ok {
			days = make(map[int]struct{})
			daysByTask[completion.TaskID] = days
		}
		days[dayOrdinal(at)] = struct{}{}
	}

	today := dayOrdinal(now)
	for taskID, daySet := range daysByTask {
		ordered := sortedDays(daySet)

		maxStreak := 0
		run := 0
		previous := 0
		for i, day := range ordered {
			if i > 0 && day == previous+1 {
				run++
			} else {
				run = 1
			}
			if run > maxStreak {
				maxStreak = run
			}
			previous = day
		}

		currentStreak := 0
		last := ordered[len(ordered)-1]
		if today-last <= 1 {
			currentStreak = run
		}

		name := names[taskID]
		results[taskID] = TaskStreak{
			TaskName:      name,
			CurrentStreak: currentStreak,
			MaxStreak:     maxStreak,
		}
	}
	return results
}

// parseCompletionDate accepts the formats completion flows have written
// over time: RFC3339 (with or without sub-second precision) and the bare
// YYYY-MM-DD day form.
func parseCompletionDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if at, err := time.Parse(layout, raw); err == nil {
			return at, true
		}
	}
	return time.Time{}, false
}

// dayOrdinal maps an instant to its calendar day, counted from the epoch.
// The civil date is taken in the timestamp's own offset so day boundaries
// match what the user saw when completing the task.
func dayOrdinal(at time.Time) int {
	year, month, day := at.Date()
	return int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func sortedDays(daySet map[int]struct{}) []int {
	ordered := make([]int, 0, len(daySet))
	for day := range daySet {
		ordered = append(ordered, day)
	}
	sort.Ints(ordered)
	return ordered
}
