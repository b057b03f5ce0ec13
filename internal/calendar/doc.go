// Package calendar provides the calendar capability consumed by the
// assistant core.
//
// The Provider interface abstracts the external calendar service. Two
// implementations exist: GoogleProvider, backed by the Google Calendar API
// with a per-call OAuth2 access credential, and Fake, an in-memory fixture
// used for development mode and tests. The implementation is chosen once at
// process wiring time.
//
// Events returned by List are ordered by start time ascending, with
// recurring events expanded to single occurrences.
package calendar
