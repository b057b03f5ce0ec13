package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an event id does not exist for the caller.
var ErrNotFound = errors.New("calendar: event not found")

// Provider is the calendar capability consumed by the assistant core.
//
// The access credential is supplied per call; issuing and refreshing
// credentials is an external concern. List returns events ordered by start
// time ascending, with recurring events expanded to single occurrences.
// All methods may fail with an opaque provider error.
type Provider interface {
	List(ctx context.Context, credential string, timeMin, timeMax time.Time) ([]Event, error)
	Create(ctx context.Context, credential string, input EventInput) (*Event, error)
	Update(ctx context.Context, credential string, eventID string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, credential string, eventID string) error
}
