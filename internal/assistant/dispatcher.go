package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aetherhq/aether/internal/calendar"
	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/logging"
	"github.com/aetherhq/aether/internal/metadata"
)

// Fixed chat replies. The chat path never surfaces raw error text.
const (
	replyUnparseable     = "I'm sorry, I couldn't understand your request. Could you please rephrase it?"
	replyUpstreamFailure = "I'm sorry, something went wrong while processing your request. Please try again."
	replyNeedTitle       = "I need more information to create the event. What should I call it?"
	replyCreateFailed    = "I couldn't create the event. Please check the details and try again."
	replyReadFailed      = "I couldn't retrieve your events. Please try again."
	replyNoEvents        = "You don't have any events scheduled for that time."
	replyEventsHeader    = "Here are your events:"
	replyGeneralQuery    = "I'm Aether, your calendar assistant. I can help you create, view, update, and delete calendar events. What would you like me to help you with?"
	replyDefault         = "I understand you want to work with your calendar, but I need more specific information. Could you tell me what you'd like me to do?"
)

// Dispatcher maps a structured intent onto calendar operations. Failures
// are caught at the case level so one failing branch cannot corrupt a
// sibling's reply; Dispatch itself never fails and always produces a
// reply string.
type Dispatcher struct {
	provider  calendar.Provider
	store     metadata.Store
	logger    *slog.Logger
	now       func() time.Time
	metrics   *instrumentation.Metrics
	storeName string
}

// NewDispatcher creates a dispatcher over the given capabilities.
func NewDispatcher(provider calendar.Provider, store metadata.Store, logger *slog.Logger, now func() time.Time) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		provider:  provider,
		store:     store,
		logger:    logger,
		now:       now,
		metrics:   &instrumentation.Metrics{},
		storeName: "memory",
	}
}

// Dispatch executes the intent for the owner and returns the chat reply.
//
// UPDATE_EVENT and DELETE_EVENT are part of the extraction vocabulary but
// intentionally have no chat action yet; they fall through to the default
// reply. The direct CRUD surface covers them.
func (d *Dispatcher) Dispatch(ctx context.Context, intent *Intent, ownerID, credential string) string {
	switch intent.Kind {
	case IntentCreateEvent:
		return d.createEvent(ctx, intent.Entities, ownerID, credential)
	case IntentReadEvents:
		return d.readEvents(ctx, intent.Entities, credential)
	case IntentGeneralQuery:
		return replyGeneralQuery
	default:
		return replyDefault
	}
}

func (d *Dispatcher) createEvent(ctx context.Context, ent Entities, ownerID, credential string) string {
	logger := logging.WithOperation(d.logger, "chat.create_event")

	// Never fabricate a title. No store is touched before this check.
	if ent.Title == "" {
		return replyNeedTitle
	}

	start, err := ResolveStart(d.now(), ent.Date, ent.Time)
	if err != nil {
		logger.Warn("rejected date/time tokens", logging.Err(err))
		return replyCreateFailed
	}
	end := ResolveEnd(start, ent.Duration)

	// Already validated during extraction.
	importance, _ := metadata.ParseImportance(ent.Importance)

	created, err := d.provider.Create(ctx, credential, calendar.EventInput{
		Title:    ent.Title,
		Start:    start,
		End:      end,
		Location: ent.Location,
		Guests:   ent.Attendees,
	})
	if err != nil {
		logger.Error("calendar create failed",
			logging.OwnerHash(ownerID),
			logging.Err(err))
		return replyCreateFailed
	}

	if importance != "" || len(ent.Tags) > 0 {
		_, err := d.store.Upsert(ctx, metadata.EventMetadata{
			EventID:    created.ID,
			OwnerID:    ownerID,
			Importance: importance,
			Tags:       ent.Tags,
		})
		d.recordStoreOp(ctx, "upsert", err)
		if err != nil {
			// The provider write is authoritative; the enrichment row is
			// not rolled back and the next read simply shows no metadata.
			logger.Warn("metadata write failed after provider write",
				logging.OwnerHash(ownerID),
				logging.EventID(created.ID),
				slog.String(logging.KeyStore, d.storeName),
				logging.Err(err))
		}
	}

	return fmt.Sprintf("I've created %q for %s at %s.",
		ent.Title, start.Format("January 2, 2006"), start.Format("3:04 PM"))
}

// recordStoreOp records one metadata store operation on the chat path.
func (d *Dispatcher) recordStoreOp(ctx context.Context, operation string, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	d.metrics.RecordMetadataOperation(ctx, d.storeName, operation, status)
}

func (d *Dispatcher) readEvents(ctx context.Context, ent Entities, credential string) string {
	logger := logging.WithOperation(d.logger, "chat.read_events")

	start, err := ResolveStart(d.now(), ent.Date, "")
	if err != nil {
		// Unresolvable date token: fall back to now rather than refuse.
		logger.Warn("unresolved date token, defaulting to now", logging.Err(err))
		start = d.now()
	}

	// The chat reader only ever looks at a single day.
	end := start.AddDate(0, 0, 1)

	events, err := d.provider.List(ctx, credential, start, end)
	if err != nil {
		logger.Error("calendar list failed", logging.Err(err))
		return replyReadFailed
	}

	if len(events) == 0 {
		return replyNoEvents
	}

	lines := make([]string, 0, len(events)+1)
	lines = append(lines, replyEventsHeader)
	for _, event := range events {
		lines = append(lines, fmt.Sprintf("• %s at %s", event.Title, event.Start.Format("3:04 PM")))
	}
	return strings.Join(lines, "\n")
}
