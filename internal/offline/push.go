package offline

import "encoding/json"

const (
	DefaultPushTitle = "Day Segment Tracker"
	DefaultPushBody  = "You have a new reminder"
	DefaultPushURL   = "/"
)

// PushPayload is what a push message carries after defaults are applied.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// ParsePushPayload decodes a push message body. Absent fields, empty
// payloads and invalid JSON all fall back to the fixed defaults; a push
// must always produce a displayable notification.
func ParsePushPayload(raw []byte) PushPayload {
	payload := PushPayload{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}

	if payload.Title == "" {
		payload.Title = DefaultPushTitle
	}
	if payload.Body == "" {
		payload.Body = DefaultPushBody
	}
	if payload.URL == "" {
		payload.URL = DefaultPushURL
	}
	return payload
}

// ResolveClick decides what a notification click does given the URLs of
// already-open client windows: focus the first window showing the target,
// or open a new one.
func ResolveClick(openClients []string, target string) (focusIndex int, openNew bool) {
	for i, client := range openClients {
		if client == target {
			return i, false
		}
	}
	return -1, true
}
