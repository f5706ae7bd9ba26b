package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFileLoaded       EventType = "file_loaded"
	EventFileRejected     EventType = "file_rejected"
	EventSummaryGenerated EventType = "summary_generated"
)

// Event represents an engine lifecycle event emitted by the service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// FileLoadedPayload payload.
type FileLoadedPayload struct {
	Rows              int            `json:"rows"`
	DateParseFailures map[string]int `json:"date_parse_failures,omitempty"`
}

// FileRejectedPayload payload.
type FileRejectedPayload struct {
	Code           string   `json:"code"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// SummaryGeneratedPayload payload.
type SummaryGeneratedPayload struct {
	DateA string `json:"date_a"`
	DateB string `json:"date_b"`
	Bytes int    `json:"bytes"`
	HTML  bool   `json:"html"`
}
