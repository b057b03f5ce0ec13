package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Event is a provider-owned calendar event. It is created, updated and
// deleted exclusively through a Provider; this process never persists it.
type Event struct {
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Guests      []string
}

// EventInput represents the input for creating a calendar event.
type EventInput struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Guests      []string
}

// EventPatch carries a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Start       *time.Time
	End         *time.Time
	Description *string
	Location    *string
	Guests      []string // nil means unchanged
}

// untitledEvent is the title surfaced for provider events without a summary.
const untitledEvent = "Untitled Event"

// toEvent converts a Google Calendar event to an Event.
func toEvent(event *calendar.Event) Event {
	e := Event{
		ID:          event.Id,
		Title:       event.Summary,
		Description: event.Description,
		Location:    event.Location,
	}
	if e.Title == "" {
		e.Title = untitledEvent
	}

	// All-day events carry a Date instead of a DateTime.
	if event.Start != nil {
		if event.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
				e.Start = t
			}
		} else if event.Start.Date != "" {
			if t, err := time.Parse("2006-01-02", event.Start.Date); err == nil {
				e.Start = t
			}
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
				e.End = t
			}
		} else if event.End.Date != "" {
			if t, err := time.Parse("2006-01-02", event.End.Date); err == nil {
				e.End = t
			}
		}
	}

	for _, att := range event.Attendees {
		if att.Email != "" {
			e.Guests = append(e.Guests, att.Email)
		}
	}

	return e
}
