package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aetherhq/aether/internal/calendar"
	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/logging"
	"github.com/aetherhq/aether/internal/metadata"
)

// ErrInvalidRequest is returned by the CRUD entry points when a request
// fails validation before any capability is touched.
var ErrInvalidRequest = errors.New("invalid request")

// Service is the exposed surface of the assistant core: one chat entry
// point and four CRUD entry points returning merged views. Each inbound
// call is an independent sequence of awaited capability calls; the service
// holds no mutable state of its own.
type Service struct {
	provider   calendar.Provider
	store      metadata.Store
	extractor  *Extractor
	dispatcher *Dispatcher
	logger     *slog.Logger
	now        func() time.Time

	metrics   *instrumentation.Metrics
	storeName string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithStoreName labels the metadata backend in logs and metrics.
func WithStoreName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.storeName = name
		}
	}
}

// NewService wires the assistant core over its three capabilities. All
// dependencies are explicit; there are no ambient singletons.
func NewService(provider calendar.Provider, generator genai.Generator, store metadata.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		provider:  provider,
		store:     store,
		logger:    logger,
		now:       time.Now,
		metrics:   &instrumentation.Metrics{},
		storeName: "memory",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.extractor = NewExtractor(generator, logger)
	s.dispatcher = NewDispatcher(provider, store, logger, s.now)
	s.dispatcher.storeName = s.storeName
	return s
}

// SetInstrumentation attaches a metrics recorder after construction. The
// server wires instrumentation after the service exists, so this is a
// setter rather than an option. A nil recorder restores the no-op default.
func (s *Service) SetInstrumentation(m *instrumentation.Metrics) {
	if m == nil {
		m = &instrumentation.Metrics{}
	}
	s.metrics = m
	s.extractor.metrics = m
	s.dispatcher.metrics = m
}

// recordStoreOp records one metadata store operation.
func (s *Service) recordStoreOp(ctx context.Context, operation string, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordMetadataOperation(ctx, s.storeName, operation, status)
}

// HandleChatTurn interprets one chat message and executes it. It always
// returns a reply; raw errors never reach the user on this path.
func (s *Service) HandleChatTurn(ctx context.Context, ownerID, credential, text string) string {
	logger := logging.WithOperation(s.logger, "chat.turn")
	start := time.Now()

	intent, err := s.extractor.Extract(ctx, text, s.now())
	if err != nil {
		if errors.Is(err, ErrUnparseable) {
			s.metrics.RecordChatTurn(ctx, "unparseable", instrumentation.StatusError, time.Since(start))
			return replyUnparseable
		}
		logger.Error("intent extraction failed",
			logging.OwnerHash(ownerID),
			logging.Err(err))
		s.metrics.RecordChatTurn(ctx, "unknown", instrumentation.StatusError, time.Since(start))
		return replyUpstreamFailure
	}

	reply := s.dispatcher.Dispatch(ctx, intent, ownerID, credential)
	s.metrics.RecordChatTurn(ctx, string(intent.Kind), instrumentation.StatusSuccess, time.Since(start))

	logger.Info("chat turn handled",
		logging.OwnerHash(ownerID),
		logging.Intent(string(intent.Kind)),
		logging.Status(logging.StatusSuccess))
	return reply
}

// CreateEventRequest is the direct-create payload.
type CreateEventRequest struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Guests      []string
	Importance  metadata.Importance
	Tags        []string
	NagDate     *time.Time
}

// UpdateEventRequest is the direct-update payload. Nil fields are left
// unchanged on both the provider event and the metadata row.
type UpdateEventRequest struct {
	Title       *string
	Start       *time.Time
	End         *time.Time
	Description *string
	Location    *string
	Guests      []string // nil means unchanged
	Importance  *metadata.Importance
	Tags        []string // nil means unchanged
	NagDate     *time.Time
}

// carriesMetadata reports whether the update touches any enrichment field.
func (r UpdateEventRequest) carriesMetadata() bool {
	return r.Importance != nil || r.Tags != nil || r.NagDate != nil
}

// ListEvents returns the merged view of every provider event in the range.
// Orphaned metadata rows are pruned from the view by construction: only
// ids the provider returned are consulted.
func (s *Service) ListEvents(ctx context.Context, ownerID, credential string, start, end time.Time) ([]metadata.MergedEvent, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRequest)
	}

	events, err := s.provider.List(ctx, credential, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	eventIDs := make([]string, len(events))
	for i, event := range events {
		eventIDs[i] = event.ID
	}

	rows, err := s.store.FindMany(ctx, eventIDs, ownerID)
	s.recordStoreOp(ctx, "find_many", err)
	if err != nil {
		return nil, fmt.Errorf("failed to load event metadata: %w", err)
	}

	return metadata.Merge(events, rows), nil
}

// CreateEvent creates the provider event first and only then persists any
// metadata. A metadata-write failure is logged and accepted, never rolled
// back: the provider-side change is authoritative.
func (s *Service) CreateEvent(ctx context.Context, ownerID, credential string, req CreateEventRequest) (*metadata.MergedEvent, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidRequest)
	}
	if !req.End.After(req.Start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRequest)
	}

	created, err := s.provider.Create(ctx, credential, calendar.EventInput{
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
		Location:    req.Location,
		Guests:      req.Guests,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	row := metadata.EventMetadata{
		EventID:    created.ID,
		OwnerID:    ownerID,
		Importance: req.Importance,
		Tags:       req.Tags,
		NagDate:    req.NagDate,
	}
	if !row.IsZero() {
		_, err := s.store.Upsert(ctx, row)
		s.recordStoreOp(ctx, "upsert", err)
		if err != nil {
			s.logger.Warn("metadata write failed after provider write",
				logging.Operation("events.create"),
				logging.OwnerHash(ownerID),
				logging.EventID(created.ID),
				slog.String(logging.KeyStore, s.storeName),
				logging.Err(err))
		}
	}

	return &metadata.MergedEvent{
		Event:      *created,
		Importance: req.Importance,
		Tags:       req.Tags,
		NagDate:    req.NagDate,
	}, nil
}

// UpdateEvent updates the provider event first, then upserts the metadata
// row when the request carries enrichment fields or a row already exists.
// Clearing every enrichment field deletes the row.
func (s *Service) UpdateEvent(ctx context.Context, ownerID, credential, eventID string, req UpdateEventRequest) (*metadata.MergedEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidRequest)
	}

	updated, err := s.provider.Update(ctx, credential, eventID, calendar.EventPatch{
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
		Location:    req.Location,
		Guests:      req.Guests,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	row := metadata.EventMetadata{EventID: eventID, OwnerID: ownerID}
	existing, err := s.store.Find(ctx, eventID, ownerID)
	s.recordStoreOp(ctx, "find", err)
	if err != nil {
		s.logger.Warn("metadata read failed after provider write",
			logging.Operation("events.update"),
			logging.OwnerHash(ownerID),
			logging.EventID(eventID),
			slog.String(logging.KeyStore, s.storeName),
			logging.Err(err))
		existing = nil
	}
	if existing != nil {
		row = *existing
	}

	if req.carriesMetadata() || existing != nil {
		if req.Importance != nil {
			row.Importance = *req.Importance
		}
		if req.Tags != nil {
			row.Tags = req.Tags
		}
		if req.NagDate != nil {
			row.NagDate = req.NagDate
		}

		_, err := s.store.Upsert(ctx, row)
		s.recordStoreOp(ctx, "upsert", err)
		if err != nil {
			s.logger.Warn("metadata write failed after provider write",
				logging.Operation("events.update"),
				logging.OwnerHash(ownerID),
				logging.EventID(eventID),
				slog.String(logging.KeyStore, s.storeName),
				logging.Err(err))
		}
	}

	return &metadata.MergedEvent{
		Event:      *updated,
		Importance: row.Importance,
		Tags:       row.Tags,
		NagDate:    row.NagDate,
	}, nil
}

// DeleteEvent deletes the provider event first, then cascades the metadata
// row. A failed cascade leaves at-most-eventually-consistent garbage that
// the read path prunes lazily, so it is logged, not surfaced.
func (s *Service) DeleteEvent(ctx context.Context, ownerID, credential, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidRequest)
	}

	if err := s.provider.Delete(ctx, credential, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	err := s.store.Delete(ctx, eventID, ownerID)
	s.recordStoreOp(ctx, "delete", err)
	if err != nil {
		s.logger.Warn("metadata cascade failed after provider delete",
			logging.Operation("events.delete"),
			logging.OwnerHash(ownerID),
			logging.EventID(eventID),
			slog.String(logging.KeyStore, s.storeName),
			logging.Err(err))
	}
	return nil
}
