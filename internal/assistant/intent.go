package assistant

import (
	"fmt"

	"github.com/aetherhq/aether/internal/metadata"
)

// IntentKind classifies what the user wants done with their calendar.
type IntentKind string

// The fixed intent vocabulary the model is constrained to.
const (
	IntentCreateEvent  IntentKind = "CREATE_EVENT"
	IntentReadEvents   IntentKind = "READ_EVENTS"
	IntentUpdateEvent  IntentKind = "UPDATE_EVENT"
	IntentDeleteEvent  IntentKind = "DELETE_EVENT"
	IntentGeneralQuery IntentKind = "GENERAL_QUERY"
)

// Valid reports whether the kind is part of the vocabulary.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentCreateEvent, IntentReadEvents, IntentUpdateEvent, IntentDeleteEvent, IntentGeneralQuery:
		return true
	}
	return false
}

// Entities is the optional-field bag extracted alongside an intent.
// Every field may be absent; nothing here is trusted until validated.
type Entities struct {
	Title      string   `json:"title,omitempty"`
	Date       string   `json:"date,omitempty"`
	Time       string   `json:"time,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Location   string   `json:"location,omitempty"`
	Attendees  []string `json:"attendees,omitempty"`
	Importance string   `json:"importance,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Intent is a structured chat command. It is transient: produced per
// request, dispatched, never stored.
type Intent struct {
	Kind     IntentKind `json:"intent"`
	Entities Entities   `json:"entities"`
}

// validate rejects intents outside the fixed vocabulary or carrying
// wrong-valued entities. Missing fields are fine; malformed ones are not.
func (i *Intent) validate() error {
	if !i.Kind.Valid() {
		return fmt.Errorf("unknown intent %q", i.Kind)
	}
	if _, err := metadata.ParseImportance(i.Entities.Importance); err != nil {
		return err
	}
	return nil
}

// promptTemplate constrains the model to the intent vocabulary and entity
// bag above, JSON only. The user's literal text and a human-readable
// current date are embedded.
const promptTemplate = `You are Aether, an intelligent calendar assistant. Analyze the user's request and respond with a JSON object describing the action to be taken. Do not add any conversational text, only the JSON object.

The user's request is: %q
Current date is: %s.

Possible intents are: 'CREATE_EVENT', 'READ_EVENTS', 'UPDATE_EVENT', 'DELETE_EVENT', 'GENERAL_QUERY'.
Extract entities such as 'title', 'date', 'time', 'attendees', 'duration', 'location', 'importance', 'tags'.

Respond only with a JSON object in this format:
{
  "intent": "CREATE_EVENT",
  "entities": {
    "title": "Meeting with Jane",
    "date": "2025-07-21",
    "time": "14:00",
    "duration": "1 hour"
  }
}`

// BuildPrompt renders the extraction prompt for a chat turn.
func BuildPrompt(userText, currentDateLabel string) string {
	return fmt.Sprintf(promptTemplate, userText, currentDateLabel)
}
