package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider against the Google Calendar API.
// A service is constructed per call from the supplied access credential,
// so a single provider instance can serve every owner of the process.
type GoogleProvider struct {
	calendarID string
	timeZone   string
}

// GoogleProviderOption configures a GoogleProvider.
type GoogleProviderOption func(*GoogleProvider)

// WithCalendarID sets the calendar to operate on (default: "primary").
func WithCalendarID(id string) GoogleProviderOption {
	return func(p *GoogleProvider) {
		p.calendarID = id
	}
}

// WithTimeZone sets the time zone attached to event times (default: "UTC").
func WithTimeZone(tz string) GoogleProviderOption {
	return func(p *GoogleProvider) {
		p.timeZone = tz
	}
}

// NewGoogleProvider creates a calendar provider backed by the Google
// Calendar API.
func NewGoogleProvider(opts ...GoogleProviderOption) *GoogleProvider {
	p := &GoogleProvider{
		calendarID: "primary",
		timeZone:   "UTC",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// service builds a Calendar service authenticated with the given credential.
func (p *GoogleProvider) service(ctx context.Context, credential string) (*calendar.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential})
	svc, err := calendar.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// List lists events within a time range, ordered by start time ascending.
func (p *GoogleProvider) List(ctx context.Context, credential string, timeMin, timeMax time.Time) ([]Event, error) {
	svc, err := p.service(ctx, credential)
	if err != nil {
		return nil, err
	}

	events, err := svc.Events.List(p.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var result []Event
	for _, event := range events.Items {
		result = append(result, toEvent(event))
	}
	return result, nil
}

// Create creates a new calendar event.
func (p *GoogleProvider) Create(ctx context.Context, credential string, input EventInput) (*Event, error) {
	svc, err := p.service(ctx, credential)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     input.Title,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: p.timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: p.timeZone,
		},
	}
	for _, email := range input.Guests {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert(p.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	result := toEvent(created)
	return &result, nil
}

// Update applies a partial update to an existing calendar event.
func (p *GoogleProvider) Update(ctx context.Context, credential string, eventID string, patch EventPatch) (*Event, error) {
	svc, err := p.service(ctx, credential)
	if err != nil {
		return nil, err
	}

	existing, err := svc.Events.Get(p.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", wrapNotFound(err))
	}

	if patch.Title != nil {
		existing.Summary = *patch.Title
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
	}
	if patch.Location != nil {
		existing.Location = *patch.Location
	}
	if patch.Start != nil {
		existing.Start = &calendar.EventDateTime{
			DateTime: patch.Start.Format(time.RFC3339),
			TimeZone: p.timeZone,
		}
	}
	if patch.End != nil {
		existing.End = &calendar.EventDateTime{
			DateTime: patch.End.Format(time.RFC3339),
			TimeZone: p.timeZone,
		}
	}
	if patch.Guests != nil {
		existing.Attendees = nil
		for _, email := range patch.Guests {
			existing.Attendees = append(existing.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	updated, err := svc.Events.Update(p.calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	result := toEvent(updated)
	return &result, nil
}

// Delete deletes a calendar event.
func (p *GoogleProvider) Delete(ctx context.Context, credential string, eventID string) error {
	svc, err := p.service(ctx, credential)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete(p.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", wrapNotFound(err))
	}
	return nil
}

// wrapNotFound maps a Google API 404 onto ErrNotFound so callers can treat
// missing events uniformly across provider implementations.
func wrapNotFound(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
		return ErrNotFound
	}
	return err
}
