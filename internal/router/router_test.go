package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"daysegment/backend/internal/db"
	"daysegment/backend/internal/handler"
	"daysegment/backend/internal/repository"
	"daysegment/backend/internal/router"
	"daysegment/backend/internal/service"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type taskPayload struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Status                string  `json:"status"`
	Type                  string  `json:"type"`
	Priority              *string `json:"priority"`
	IsRecurring           bool    `json:"isRecurring"`
	HasSubtasks           bool    `json:"hasSubtasks"`
	SubtaskCount          int     `json:"subtaskCount"`
	CompletedSubtaskCount int     `json:"completedSubtaskCount"`
	TallyTimestamps       []any   `json:"tallyTimestamps"`
}

type taskEnvelope struct {
	Task taskPayload `json:"task"`
}

type tasksEnvelope struct {
	Tasks []taskPayload `json:"tasks"`
}

type subtaskEnvelope struct {
	Subtask struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		IsCompleted bool   `json:"isCompleted"`
	} `json:"subtask"`
}

type segmentsEnvelope struct {
	Segments []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	} `json:"segments"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestTaskLifecycleFeedsAnalytics(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "user1@example.com", "123456")

	// Registration seeds the default day segments.
	status, segmentsRaw := requestJSON(t, engine, http.MethodGet, "/api/segments", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list segments failed with %d", status)
	}
	var segments segmentsEnvelope
	if err := json.Unmarshal(segmentsRaw, &segments); err != nil {
		t.Fatalf("unmarshal segments: %v", err)
	}
	if len(segments.Segments) != 3 {
		t.Fatalf("expected 3 default segments, got %d", len(segments.Segments))
	}
	morning := segments.Segments[0].ID

	// Pin the task to a segment so the completion lands there regardless
	// of the wall clock.
	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name":               "Write standup notes",
		"preferredSegmentId": morning,
	})
	if status != http.StatusCreated {
		t.Fatalf("create task failed with %d: %s", status, string(taskRaw))
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if created.Task.Status != "todo" || created.Task.Type != "standard" {
		t.Fatalf("unexpected new task: %+v", created.Task)
	}

	status, taskRaw = requestJSON(t, engine, http.MethodPost, "/api/tasks/"+created.Task.ID+"/start", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("start task failed with %d", status)
	}
	var started taskEnvelope
	if err := json.Unmarshal(taskRaw, &started); err != nil {
		t.Fatalf("unmarshal started task: %v", err)
	}
	if started.Task.Status != "started" {
		t.Fatalf("expected started, got %s", started.Task.Status)
	}

	status, taskRaw = requestJSON(t, engine, http.MethodPost, "/api/tasks/"+created.Task.ID+"/complete", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("complete task failed with %d", status)
	}
	var completed taskEnvelope
	if err := json.Unmarshal(taskRaw, &completed); err != nil {
		t.Fatalf("unmarshal completed task: %v", err)
	}
	if completed.Task.Status != "completed" {
		t.Fatalf("expected completed, got %s", completed.Task.Status)
	}

	// The completion shows up in every aggregator.
	status, productivityRaw := requestJSON(t, engine, http.MethodGet, "/api/analytics/productivity", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("productivity failed with %d", status)
	}
	var productivity struct {
		Productivity []struct {
			SegmentID   string `json:"segmentId"`
			Completions int    `json:"completions"`
		} `json:"productivity"`
	}
	if err := json.Unmarshal(productivityRaw, &productivity); err != nil {
		t.Fatalf("unmarshal productivity: %v", err)
	}
	if len(productivity.Productivity) != 3 {
		t.Fatalf("expected 3 productivity buckets, got %d", len(productivity.Productivity))
	}
	morningCompletions := 0
	for _, bucket := range productivity.Productivity {
		if bucket.SegmentID == morning {
			morningCompletions = bucket.Completions
		}
	}
	if morningCompletions != 1 {
		t.Fatalf("expected 1 completion in the preferred segment, got %d", morningCompletions)
	}

	status, heatmapRaw := requestJSON(t, engine, http.MethodGet, "/api/analytics/heatmap", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("heatmap failed with %d", status)
	}
	var heatmap struct {
		Heatmap []struct {
			Value int `json:"value"`
		} `json:"heatmap"`
	}
	if err := json.Unmarshal(heatmapRaw, &heatmap); err != nil {
		t.Fatalf("unmarshal heatmap: %v", err)
	}
	if len(heatmap.Heatmap) != 7*24 {
		t.Fatalf("expected %d heatmap cells, got %d", 7*24, len(heatmap.Heatmap))
	}
	total := 0
	for _, cell := range heatmap.Heatmap {
		total += cell.Value
	}
	if total != 1 {
		t.Fatalf("expected 1 completion in the heatmap, got %d", total)
	}

	status, streaksRaw := requestJSON(t, engine, http.MethodGet, "/api/analytics/streaks", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("streaks failed with %d", status)
	}
	var streaks struct {
		Streaks map[string]struct {
			CurrentStreak int `json:"currentStreak"`
			MaxStreak     int `json:"maxStreak"`
		} `json:"streaks"`
	}
	if err := json.Unmarshal(streaksRaw, &streaks); err != nil {
		t.Fatalf("unmarshal streaks: %v", err)
	}
	streak, ok := streaks.Streaks[created.Task.ID]
	if !ok {
		t.Fatal("expected a streak entry for the completed task")
	}
	if streak.CurrentStreak != 1 || streak.MaxStreak != 1 {
		t.Fatalf("expected current=1 max=1, got %+v", streak)
	}

	// A second user sees none of it.
	other := registerUser(t, engine, "user2@example.com", "123456")
	status, otherTasksRaw := requestJSON(t, engine, http.MethodGet, "/api/tasks", other.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list tasks for user2 failed with %d", status)
	}
	var otherTasks tasksEnvelope
	if err := json.Unmarshal(otherTasksRaw, &otherTasks); err != nil {
		t.Fatalf("unmarshal user2 tasks: %v", err)
	}
	if len(otherTasks.Tasks) != 0 {
		t.Fatalf("expected no tasks for user2, got %d", len(otherTasks.Tasks))
	}
}

func TestRecurringTaskResetsOnComplete(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "recurring@example.com", "123456")

	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name":        "Water plants",
		"isRecurring": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("create task failed with %d", status)
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}

	status, taskRaw = requestJSON(t, engine, http.MethodPost, "/api/tasks/"+created.Task.ID+"/complete", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("complete failed with %d", status)
	}
	var completed taskEnvelope
	if err := json.Unmarshal(taskRaw, &completed); err != nil {
		t.Fatalf("unmarshal completed task: %v", err)
	}
	if completed.Task.Status != "todo" {
		t.Fatalf("expected recurring task back to todo, got %s", completed.Task.Status)
	}

	// The completion event was still recorded.
	status, streaksRaw := requestJSON(t, engine, http.MethodGet, "/api/analytics/streaks", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("streaks failed with %d", status)
	}
	var streaks struct {
		Streaks map[string]struct {
			MaxStreak int `json:"maxStreak"`
		} `json:"streaks"`
	}
	if err := json.Unmarshal(streaksRaw, &streaks); err != nil {
		t.Fatalf("unmarshal streaks: %v", err)
	}
	if streak := streaks.Streaks[created.Task.ID]; streak.MaxStreak != 1 {
		t.Fatalf("expected a recorded completion, got %+v", streak)
	}
}

func TestSubtaskCountersStayConsistent(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "subtasks@example.com", "123456")

	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name": "Pack for trip",
		"type": "subtasks",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task failed with %d", status)
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	taskID := created.Task.ID

	var subtaskIDs []string
	for _, name := range []string{"Passport", "Charger", "Shoes"} {
		status, subtaskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks/"+taskID+"/subtasks", user.Token, map[string]string{
			"name": name,
		})
		if status != http.StatusCreated {
			t.Fatalf("add subtask %s failed with %d", name, status)
		}
		var added subtaskEnvelope
		if err := json.Unmarshal(subtaskRaw, &added); err != nil {
			t.Fatalf("unmarshal subtask: %v", err)
		}
		subtaskIDs = append(subtaskIDs, added.Subtask.ID)
	}

	task := getTask(t, engine, user.Token, taskID)
	if !task.HasSubtasks || task.SubtaskCount != 3 || task.CompletedSubtaskCount != 0 {
		t.Fatalf("expected 3 pending subtasks, got %+v", task)
	}

	status, _ = requestJSON(t, engine, http.MethodPost, "/api/tasks/"+taskID+"/subtasks/"+subtaskIDs[1]+"/toggle", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("toggle failed with %d", status)
	}
	task = getTask(t, engine, user.Token, taskID)
	if task.SubtaskCount != 3 || task.CompletedSubtaskCount != 1 {
		t.Fatalf("expected 1 of 3 completed, got %+v", task)
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/tasks/"+taskID+"/subtasks/"+subtaskIDs[1], user.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete subtask failed with %d", status)
	}
	task = getTask(t, engine, user.Token, taskID)
	if !task.HasSubtasks || task.SubtaskCount != 2 || task.CompletedSubtaskCount != 0 {
		t.Fatalf("expected 2 pending subtasks after delete, got %+v", task)
	}

	status, _ = requestJSON(t, engine, http.MethodPut, "/api/tasks/"+taskID+"/subtasks/order", user.Token, map[string][]string{
		"subtaskIds": {subtaskIDs[2], subtaskIDs[0]},
	})
	if status != http.StatusNoContent {
		t.Fatalf("reorder failed with %d", status)
	}

	status, listRaw := requestJSON(t, engine, http.MethodGet, "/api/tasks/"+taskID+"/subtasks", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list subtasks failed with %d", status)
	}
	var list struct {
		Subtasks []struct {
			ID string `json:"id"`
		} `json:"subtasks"`
	}
	if err := json.Unmarshal(listRaw, &list); err != nil {
		t.Fatalf("unmarshal subtasks: %v", err)
	}
	if len(list.Subtasks) != 2 || list.Subtasks[0].ID != subtaskIDs[2] || list.Subtasks[1].ID != subtaskIDs[0] {
		t.Fatalf("unexpected subtask order: %+v", list.Subtasks)
	}
}

func TestPartialReorderKeepsOrdersUnique(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "reorder@example.com", "123456")

	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name": "Morning routine",
		"type": "subtasks",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task failed with %d", status)
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	taskID := created.Task.ID

	idsByName := map[string]string{}
	for _, name := range []string{"Stretch", "Shower", "Coffee"} {
		status, subtaskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks/"+taskID+"/subtasks", user.Token, map[string]string{
			"name": name,
		})
		if status != http.StatusCreated {
			t.Fatalf("add subtask %s failed with %d", name, status)
		}
		var added subtaskEnvelope
		if err := json.Unmarshal(subtaskRaw, &added); err != nil {
			t.Fatalf("unmarshal subtask: %v", err)
		}
		idsByName[name] = added.Subtask.ID
	}

	// Listing only two of the three ids: the unlisted one follows them.
	status, _ = requestJSON(t, engine, http.MethodPut, "/api/tasks/"+taskID+"/subtasks/order", user.Token, map[string][]string{
		"subtaskIds": {idsByName["Coffee"], idsByName["Stretch"]},
	})
	if status != http.StatusNoContent {
		t.Fatalf("reorder failed with %d", status)
	}

	status, listRaw := requestJSON(t, engine, http.MethodGet, "/api/tasks/"+taskID+"/subtasks", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list subtasks failed with %d", status)
	}
	var list struct {
		Subtasks []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"subtasks"`
	}
	if err := json.Unmarshal(listRaw, &list); err != nil {
		t.Fatalf("unmarshal subtasks: %v", err)
	}
	if len(list.Subtasks) != 3 {
		t.Fatalf("expected 3 subtasks, got %d", len(list.Subtasks))
	}
	for i, want := range []string{"Coffee", "Stretch", "Shower"} {
		if list.Subtasks[i].Name != want || list.Subtasks[i].Order != i {
			t.Fatalf("position %d: expected %s with order %d, got %+v", i, want, i, list.Subtasks[i])
		}
	}
}

func TestTaskPriorityValidation(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "priority@example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name":     "Ship release",
		"priority": "urgent",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown priority, got %d", status)
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(raw, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "invalid_priority" {
		t.Fatalf("expected invalid_priority, got %s", apiErr.Error.Code)
	}

	status, raw = requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name":     "Ship release",
		"priority": "high",
	})
	if status != http.StatusCreated {
		t.Fatalf("create with valid priority failed with %d: %s", status, string(raw))
	}
	var created taskEnvelope
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if created.Task.Priority == nil || *created.Task.Priority != "high" {
		t.Fatalf("expected priority high, got %+v", created.Task.Priority)
	}

	status, raw = requestJSON(t, engine, http.MethodPut, "/api/tasks/"+created.Task.ID, user.Token, map[string]any{
		"priority": "whenever",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown priority on update, got %d: %s", status, string(raw))
	}
}

func TestSettingsDeleteAndDefaults(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "prefs@example.com", "123456")

	type settingEnvelope struct {
		Setting struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"setting"`
	}

	// Known keys answer with their built-in defaults before any write.
	status, raw := requestJSON(t, engine, http.MethodGet, "/api/settings/welcomeModalSeen", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("get default setting failed with %d", status)
	}
	var welcome settingEnvelope
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("unmarshal setting: %v", err)
	}
	if welcome.Setting.Value != `false` {
		t.Fatalf("expected default false, got %s", welcome.Setting.Value)
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/settings/completionSound", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("get default sound failed with %d", status)
	}
	var sound settingEnvelope
	if err := json.Unmarshal(raw, &sound); err != nil {
		t.Fatalf("unmarshal setting: %v", err)
	}
	if sound.Setting.Value != `"complete"` {
		t.Fatalf("expected default sound, got %s", sound.Setting.Value)
	}

	status, _ = requestJSON(t, engine, http.MethodPut, "/api/settings/sidebarPinned", user.Token, map[string]string{
		"value": "true",
	})
	if status != http.StatusOK {
		t.Fatalf("set setting failed with %d", status)
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/settings/sidebarPinned", user.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete setting failed with %d", status)
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/settings/sidebarPinned", user.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(raw, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "setting_not_found" {
		t.Fatalf("expected setting_not_found, got %s", apiErr.Error.Code)
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/settings/sidebarPinned", user.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 deleting missing setting, got %d", status)
	}
}

func TestTallyMarks(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "tally@example.com", "123456")

	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name": "Glasses of water",
		"type": "tally",
	})
	if status != http.StatusCreated {
		t.Fatalf("create tally task failed with %d", status)
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}

	for i := 0; i < 2; i++ {
		status, taskRaw = requestJSON(t, engine, http.MethodPost, "/api/tasks/"+created.Task.ID+"/tally", user.Token, nil)
		if status != http.StatusOK {
			t.Fatalf("tally failed with %d", status)
		}
	}
	var tallied taskEnvelope
	if err := json.Unmarshal(taskRaw, &tallied); err != nil {
		t.Fatalf("unmarshal tallied task: %v", err)
	}
	if len(tallied.Task.TallyTimestamps) != 2 {
		t.Fatalf("expected 2 tally marks, got %d", len(tallied.Task.TallyTimestamps))
	}
	if tallied.Task.Status != "started" {
		t.Fatalf("expected first tally to start the task, got %s", tallied.Task.Status)
	}

	// Tally marks on a non-tally task are rejected.
	status, plainRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name": "Plain task",
	})
	if status != http.StatusCreated {
		t.Fatalf("create plain task failed with %d", status)
	}
	var plain taskEnvelope
	if err := json.Unmarshal(plainRaw, &plain); err != nil {
		t.Fatalf("unmarshal plain task: %v", err)
	}
	status, errRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks/"+plain.Task.ID+"/tally", user.Token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for tally on plain task, got %d", status)
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(errRaw, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "not_tally" {
		t.Fatalf("expected not_tally, got %s", apiErr.Error.Code)
	}
}

func TestDuplicateCategoryConflicts(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "categories@example.com", "123456")

	status, _ := requestJSON(t, engine, http.MethodPost, "/api/categories", user.Token, map[string]any{
		"name":  "Work",
		"color": "#0ea5e9",
	})
	if status != http.StatusCreated {
		t.Fatalf("create category failed with %d", status)
	}

	status, conflictRaw := requestJSON(t, engine, http.MethodPost, "/api/categories", user.Token, map[string]any{
		"name":  "work",
		"color": "#ef4444",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", status)
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(conflictRaw, &apiErr); err != nil {
		t.Fatalf("unmarshal conflict: %v", err)
	}
	if apiErr.Error.Code != "category_exists" {
		t.Fatalf("expected category_exists, got %s", apiErr.Error.Code)
	}
}

func TestSegmentValidation(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "segments@example.com", "123456")

	status, errRaw := requestJSON(t, engine, http.MethodPost, "/api/segments", user.Token, map[string]string{
		"name":      "Late night",
		"startTime": "25:00",
		"endTime":   "26:00",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad times, got %d", status)
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(errRaw, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "invalid_time" {
		t.Fatalf("expected invalid_time, got %s", apiErr.Error.Code)
	}
}

func TestCollectionsGroupTasks(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "collections@example.com", "123456")

	status, collectionRaw := requestJSON(t, engine, http.MethodPost, "/api/collections", user.Token, map[string]any{
		"name": "Morning routine",
	})
	if status != http.StatusCreated {
		t.Fatalf("create collection failed with %d", status)
	}
	var collection struct {
		Collection struct {
			ID string `json:"id"`
		} `json:"collection"`
	}
	if err := json.Unmarshal(collectionRaw, &collection); err != nil {
		t.Fatalf("unmarshal collection: %v", err)
	}

	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]any{
		"name": "Make coffee",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task failed with %d", status)
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}

	status, _ = requestJSON(t, engine, http.MethodPost, "/api/collections/"+collection.Collection.ID+"/tasks", user.Token, map[string]string{
		"taskId": created.Task.ID,
	})
	if status != http.StatusNoContent {
		t.Fatalf("add task to collection failed with %d", status)
	}

	status, tasksRaw := requestJSON(t, engine, http.MethodGet, "/api/collections/"+collection.Collection.ID+"/tasks", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list collection tasks failed with %d", status)
	}
	var tasks tasksEnvelope
	if err := json.Unmarshal(tasksRaw, &tasks); err != nil {
		t.Fatalf("unmarshal collection tasks: %v", err)
	}
	if len(tasks.Tasks) != 1 || tasks.Tasks[0].ID != created.Task.ID {
		t.Fatalf("unexpected collection tasks: %+v", tasks.Tasks)
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/collections/"+collection.Collection.ID+"/tasks/"+created.Task.ID, user.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("remove task from collection failed with %d", status)
	}
}

func TestTemplateInstantiation(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "templates@example.com", "123456")

	status, templateRaw := requestJSON(t, engine, http.MethodPost, "/api/templates", user.Token, map[string]any{
		"name":     "Weekly review",
		"type":     "subtasks",
		"subtasks": []string{"Review inbox", "Plan next week"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create template failed with %d", status)
	}
	var template struct {
		Template struct {
			ID         string `json:"id"`
			UsageCount int    `json:"usageCount"`
		} `json:"template"`
	}
	if err := json.Unmarshal(templateRaw, &template); err != nil {
		t.Fatalf("unmarshal template: %v", err)
	}
	if template.Template.UsageCount != 0 {
		t.Fatalf("expected fresh template unused, got %d", template.Template.UsageCount)
	}

	status, taskRaw := requestJSON(t, engine, http.MethodPost, "/api/templates/"+template.Template.ID+"/instantiate", user.Token, nil)
	if status != http.StatusCreated {
		t.Fatalf("instantiate failed with %d", status)
	}
	var created taskEnvelope
	if err := json.Unmarshal(taskRaw, &created); err != nil {
		t.Fatalf("unmarshal instantiated task: %v", err)
	}
	if created.Task.Name != "Weekly review" || created.Task.Type != "subtasks" {
		t.Fatalf("unexpected instantiated task: %+v", created.Task)
	}
	if !created.Task.HasSubtasks || created.Task.SubtaskCount != 2 {
		t.Fatalf("expected 2 subtasks from blueprints, got %+v", created.Task)
	}

	status, templateRaw = requestJSON(t, engine, http.MethodGet, "/api/templates/"+template.Template.ID, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("get template failed with %d", status)
	}
	if err := json.Unmarshal(templateRaw, &template); err != nil {
		t.Fatalf("unmarshal template after use: %v", err)
	}
	if template.Template.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", template.Template.UsageCount)
	}
}

func TestNotificationSettingsDefaultsAndMigration(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "settings@example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodGet, "/api/settings/notifications", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("get notification settings failed with %d", status)
	}
	var envelope struct {
		NotificationSettings struct {
			Version         int    `json:"version"`
			Enabled         bool   `json:"enabled"`
			QuietHoursStart string `json:"quietHoursStart"`
		} `json:"notificationSettings"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal notification settings: %v", err)
	}
	if envelope.NotificationSettings.Version != 2 || !envelope.NotificationSettings.Enabled {
		t.Fatalf("unexpected defaults: %+v", envelope.NotificationSettings)
	}

	// Overwrite the stored row with a v1-era record; the next read migrates
	// it forward and fills the fields v1 never had.
	status, _ = requestJSON(t, engine, http.MethodPut, "/api/settings/notificationSettings", user.Token, map[string]string{
		"value": `{"version":1,"enabled":false,"sound":"bell"}`,
	})
	if status != http.StatusOK {
		t.Fatalf("overwrite setting failed with %d", status)
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/settings/notifications", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("get migrated settings failed with %d", status)
	}
	var migrated struct {
		NotificationSettings struct {
			Version         int    `json:"version"`
			Enabled         bool   `json:"enabled"`
			Sound           string `json:"sound"`
			QuietHoursStart string `json:"quietHoursStart"`
			QuietHoursEnd   string `json:"quietHoursEnd"`
		} `json:"notificationSettings"`
	}
	if err := json.Unmarshal(raw, &migrated); err != nil {
		t.Fatalf("unmarshal migrated settings: %v", err)
	}
	if migrated.NotificationSettings.Version != 2 {
		t.Fatalf("expected migrated version 2, got %d", migrated.NotificationSettings.Version)
	}
	if migrated.NotificationSettings.Enabled {
		t.Fatal("expected the stored enabled=false to survive migration")
	}
	if migrated.NotificationSettings.Sound != "bell" {
		t.Fatalf("expected stored sound kept, got %s", migrated.NotificationSettings.Sound)
	}
	if migrated.NotificationSettings.QuietHoursStart != "22:00" || migrated.NotificationSettings.QuietHoursEnd != "07:00" {
		t.Fatalf("expected quiet hours backfilled, got %+v", migrated.NotificationSettings)
	}
}

func TestSettingsSearch(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "search@example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodGet, "/api/settings/search?q=dark", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("search failed with %d", status)
	}
	var results struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("unmarshal search results: %v", err)
	}
	if len(results.Results) != 1 || results.Results[0].ID != "theme-selector" {
		t.Fatalf("unexpected results for dark: %+v", results.Results)
	}

	status, raw = requestJSON(t, engine, http.MethodGet, "/api/settings/search?q=", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("blank search failed with %d", status)
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("unmarshal blank search: %v", err)
	}
	if len(results.Results) != 0 {
		t.Fatalf("expected no results for blank query, got %d", len(results.Results))
	}
}

func TestPushEndpoints(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "push@example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodPost, "/api/push", user.Token, map[string]string{
		"title": "Stand up",
	})
	if status != http.StatusOK {
		t.Fatalf("push failed with %d", status)
	}
	var notification struct {
		Notification struct {
			Title string `json:"title"`
			Body  string `json:"body"`
			URL   string `json:"url"`
		} `json:"notification"`
	}
	if err := json.Unmarshal(raw, &notification); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if notification.Notification.Title != "Stand up" {
		t.Fatalf("expected title kept, got %s", notification.Notification.Title)
	}
	if notification.Notification.Body == "" || notification.Notification.URL != "/" {
		t.Fatalf("expected defaults applied, got %+v", notification.Notification)
	}

	status, raw = requestJSON(t, engine, http.MethodPost, "/api/push/click?url=/tasks/42", user.Token, map[string]any{
		"openClients": []string{"/", "/tasks/42"},
	})
	if status != http.StatusOK {
		t.Fatalf("push click failed with %d", status)
	}
	var click struct {
		FocusIndex int    `json:"focusIndex"`
		OpenNew    bool   `json:"openNew"`
		URL        string `json:"url"`
	}
	if err := json.Unmarshal(raw, &click); err != nil {
		t.Fatalf("unmarshal click: %v", err)
	}
	if click.FocusIndex != 1 || click.OpenNew {
		t.Fatalf("expected focus on the open window, got %+v", click)
	}
}

func TestAuthRequired(t *testing.T) {
	engine := setupTestEngine(t)

	status, _ := requestJSON(t, engine, http.MethodGet, "/api/tasks", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := setupTestEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	engine.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

func setupTestEngine(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	subtaskRepo := repository.NewSubtaskRepository(database)
	segmentRepo := repository.NewSegmentRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	collectionRepo := repository.NewCollectionRepository(database)
	templateRepo := repository.NewTemplateRepository(database)
	completionRepo := repository.NewCompletionRepository(database)
	settingRepo := repository.NewSettingRepository(database)

	authService := service.NewAuthService(userRepo, segmentRepo, "test-secret", 24*time.Hour)

	return router.New(authService, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Task:       handler.NewTaskHandler(service.NewTaskService(taskRepo, segmentRepo, completionRepo)),
		Subtask:    handler.NewSubtaskHandler(service.NewSubtaskService(taskRepo, subtaskRepo)),
		Segment:    handler.NewSegmentHandler(service.NewSegmentService(segmentRepo)),
		Category:   handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Collection: handler.NewCollectionHandler(service.NewCollectionService(collectionRepo, taskRepo)),
		Template:   handler.NewTemplateHandler(service.NewTemplateService(templateRepo, taskRepo, subtaskRepo)),
		Settings:   handler.NewSettingsHandler(service.NewSettingsService(settingRepo)),
		Analytics:  handler.NewAnalyticsHandler(completionRepo, taskRepo, segmentRepo),
		Push:       handler.NewPushHandler(),
	}, []string{"http://localhost:5173"}, nil)
}

func getTask(t *testing.T, server http.Handler, token, id string) taskPayload {
	t.Helper()
	status, raw := requestJSON(t, server, http.MethodGet, "/api/tasks/"+id, token, nil)
	if status != http.StatusOK {
		t.Fatalf("get task failed with %d: %s", status, string(raw))
	}
	var envelope taskEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	return envelope.Task
}

func registerUser(t *testing.T, server http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
