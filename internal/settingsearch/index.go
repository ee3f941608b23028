// Package settingsearch holds the static catalog of user-facing settings
// and a substring filter over it, used by the settings screen's search box.
package settingsearch

import "strings"

type Entry struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Section     string   `json:"section"`
	Subsection  string   `json:"subsection"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Catalog is the full list of searchable settings. The slice is ordered
// the way the settings screen lays its sections out.
var Catalog = []Entry{
	{
		ID:          "theme-selector",
		Label:       "Theme",
		Section:     "Appearance",
		Subsection:  "Display",
		Description: "Switch between light and dark appearance",
		Keywords:    []string{"dark", "light", "color", "appearance"},
	},
	{
		ID:          "time-format",
		Label:       "Time format",
		Section:     "Appearance",
		Subsection:  "Display",
		Description: "Use a 12-hour or 24-hour clock",
		Keywords:    []string{"clock", "12h", "24h", "hours"},
	},
	{
		ID:          "segment-editor",
		Label:       "Day segments",
		Section:     "Day",
		Subsection:  "Segments",
		Description: "Rename, recolor and retime the segments of your day",
		Keywords:    []string{"morning", "afternoon", "evening", "schedule"},
	},
	{
		ID:          "notification-toggle",
		Label:       "Notifications",
		Section:     "Notifications",
		Subsection:  "General",
		Description: "Enable or disable reminders",
		Keywords:    []string{"push", "reminder", "alert"},
	},
	{
		ID:          "notification-quiet-hours",
		Label:       "Quiet hours",
		Section:     "Notifications",
		Subsection:  "General",
		Description: "Silence reminders during a nightly window",
		Keywords:    []string{"silence", "sleep", "night", "do not disturb"},
	},
	{
		ID:          "completion-sound",
		Label:       "Completion sound",
		Section:     "Notifications",
		Subsection:  "Sounds",
		Description: "Sound played when a task completes",
		Keywords:    []string{"chime", "audio", "sound effect"},
	},
	{
		ID:          "default-category",
		Label:       "Default category",
		Section:     "Tasks",
		Subsection:  "Defaults",
		Description: "Category assigned to new tasks",
		Keywords:    []string{"category", "label", "group"},
	},
	{
		ID:          "recurring-reset",
		Label:       "Recurring tasks",
		Section:     "Tasks",
		Subsection:  "Defaults",
		Description: "Whether completed recurring tasks return to the to-do list",
		Keywords:    []string{"repeat", "daily", "habit"},
	},
	{
		ID:          "streak-display",
		Label:       "Streaks",
		Section:     "Analytics",
		Subsection:  "Dashboard",
		Description: "Show per-task completion streaks on the dashboard",
		Keywords:    []string{"streak", "consecutive", "chain"},
	},
	{
		ID:          "heatmap-display",
		Label:       "Activity heatmap",
		Section:     "Analytics",
		Subsection:  "Dashboard",
		Description: "Show the hour-by-day completion heatmap",
		Keywords:    []string{"heatmap", "grid", "activity"},
	},
	{
		ID:          "offline-mode",
		Label:       "Offline mode",
		Section:     "Advanced",
		Subsection:  "Storage",
		Description: "Keep pages and sounds cached for use without a connection",
		Keywords:    []string{"cache", "offline", "pwa"},
	},
	{
		ID:          "welcome-reset",
		Label:       "Show welcome tour again",
		Section:     "Advanced",
		Subsection:  "Help",
		Description: "Replay the first-run walkthrough",
		Keywords:    []string{"tour", "onboarding", "intro"},
	},
}

// Search returns every catalog entry whose label, section, subsection,
// description or any keyword contains the query, case-insensitively.
// A blank query matches nothing.
func Search(query string) []Entry {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		return nil
	}

	matches := make([]Entry, 0)
	for _, entry := range Catalog {
		if entryMatches(entry, trimmed) {
			matches = append(matches, entry)
		}
	}
	return matches
}

func entryMatches(entry Entry, query string) bool {
	for _, field := range []string{entry.Label, entry.Section, entry.Subsection, entry.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	for _, keyword := range entry.Keywords {
		if strings.Contains(strings.ToLower(keyword), query) {
			return true
		}
	}
	return false
}
