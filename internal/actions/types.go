package actions

import (
	"context"
	"strings"
)

// Event is a state change the dialogue manager applies after an action runs.
type Event map[string]any

// Domain is the dialogue manager's static configuration, passed through untouched.
type Domain map[string]any

type Intent struct {
	Name       string  `json:"name,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type UserMessage struct {
	Text     *string          `json:"text"`
	Intent   Intent           `json:"intent"`
	Entities []map[string]any `json:"entities,omitempty"`
}

// Tracker is a read-only view of the conversation owned by the dialogue manager.
type Tracker struct {
	SenderID         string         `json:"sender_id"`
	Slots            map[string]any `json:"slots,omitempty"`
	LatestMessage    UserMessage    `json:"latest_message"`
	Events           []Event        `json:"events,omitempty"`
	LatestActionName string         `json:"latest_action_name,omitempty"`
}

// LatestText reports the latest user utterance and whether one was present.
func (t Tracker) LatestText() (string, bool) {
	if t.LatestMessage.Text == nil {
		return "", false
	}
	return *t.LatestMessage.Text, true
}

type Message struct {
	Text       string           `json:"text"`
	Buttons    []map[string]any `json:"buttons,omitempty"`
	Image      string           `json:"image,omitempty"`
	Attachment string           `json:"attachment,omitempty"`
	Response   string           `json:"response,omitempty"`
	Custom     map[string]any   `json:"custom,omitempty"`
}

type Dispatcher interface {
	UtterMessage(message Message)
}

type Action interface {
	Name() string
	Run(ctx context.Context, dispatcher Dispatcher, tracker Tracker, domain Domain) ([]Event, error)
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
