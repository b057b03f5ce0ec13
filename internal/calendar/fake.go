package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fake is an in-memory Provider implementation used for development mode
// and tests. It is selected once at wiring time; nothing branches on it
// per call.
type Fake struct {
	mu     sync.Mutex
	events map[string]Event // keyed by event id

	// FailWith, when set, is returned by every operation. It simulates an
	// unavailable provider.
	FailWith error
}

// NewFake creates an empty in-memory calendar provider.
func NewFake() *Fake {
	return &Fake{
		events: make(map[string]Event),
	}
}

// List returns events overlapping [timeMin, timeMax), ordered by start time
// ascending, matching the live provider's ordering guarantee.
func (f *Fake) List(ctx context.Context, credential string, timeMin, timeMax time.Time) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	var result []Event
	for _, event := range f.events {
		if event.Start.Before(timeMax) && event.End.After(timeMin) {
			result = append(result, event)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result, nil
}

// Create stores a new event and assigns it an id.
func (f *Fake) Create(ctx context.Context, credential string, input EventInput) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	event := Event{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Start:       input.Start,
		End:         input.End,
		Description: input.Description,
		Location:    input.Location,
		Guests:      append([]string(nil), input.Guests...),
	}
	if event.Title == "" {
		event.Title = untitledEvent
	}
	f.events[event.ID] = event
	return &event, nil
}

// Update applies a partial update to a stored event.
func (f *Fake) Update(ctx context.Context, credential string, eventID string, patch EventPatch) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	event, ok := f.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.Start != nil {
		event.Start = *patch.Start
	}
	if patch.End != nil {
		event.End = *patch.End
	}
	if patch.Guests != nil {
		event.Guests = append([]string(nil), patch.Guests...)
	}

	f.events[eventID] = event
	return &event, nil
}

// Delete removes a stored event.
func (f *Fake) Delete(ctx context.Context, credential string, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return f.FailWith
	}

	if _, ok := f.events[eventID]; !ok {
		return ErrNotFound
	}
	delete(f.events, eventID)
	return nil
}
