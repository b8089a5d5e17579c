package storage

import "time"

// Event is one question/answer exchange with a user.
// A failed exchange carries the failure kind and the error text that was
// shown to the user as AssistantResponse.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	RequestID         string    `json:"request_id,omitempty"`
	UserID            int64     `json:"user_id"`
	Username          string    `json:"username,omitempty"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Topic             string    `json:"topic,omitempty"`
	Model             string    `json:"model,omitempty"`
	TotalTokens       int       `json:"total_tokens,omitempty"`
	Failure           string    `json:"failure,omitempty"`
}

// Recorder persists interaction events.
// LoadInteractions returns events in the order they were appended and
// LoadSince the subset stamped at or after the given time.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
	LoadSince(t time.Time) ([]Event, error)
}

// Nop discards everything. Used when the interaction log is disabled.
type Nop struct{}

func (Nop) AppendInteraction(Event) error        { return nil }
func (Nop) LoadInteractions() ([]Event, error)    { return nil, nil }
func (Nop) LoadSince(time.Time) ([]Event, error) { return nil, nil }
