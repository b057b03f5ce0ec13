package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/logging"
)

// ErrUnparseable is returned when the model call succeeded but its output
// is not a single usable intent JSON object. It is distinct from an
// upstream model failure.
var ErrUnparseable = errors.New("unparseable model output")

// currentDateLayout is the human-readable date label embedded in the prompt.
const currentDateLayout = "Monday, January 2, 2006"

// Extractor turns free-form user text into a structured Intent by
// delegating to a language-model capability and strictly validating the
// result. The model is a trust boundary: the parse is all-or-nothing, with
// no partial recovery and no trimming of conversational wrapper text.
type Extractor struct {
	generator genai.Generator
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// modelNamer is implemented by generators that know their model name.
type modelNamer interface {
	Model() string
}

// NewExtractor creates an intent extractor on top of a generator.
func NewExtractor(generator genai.Generator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		generator: generator,
		logger:    logger,
		metrics:   &instrumentation.Metrics{},
	}
}

// model returns the label for the language-model metric. Generators that
// cannot name their model are labeled "unknown".
func (e *Extractor) model() string {
	if m, ok := e.generator.(modelNamer); ok {
		return m.Model()
	}
	return "unknown"
}

// Extract interprets a chat message as of the given instant. It returns
// ErrUnparseable when the model output is unusable; any other error is an
// upstream capability failure.
func (e *Extractor) Extract(ctx context.Context, userText string, now time.Time) (*Intent, error) {
	prompt := BuildPrompt(userText, now.Format(currentDateLayout))

	start := time.Now()
	raw, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.metrics.RecordLLMRequest(ctx, e.model(), instrumentation.StatusError, time.Since(start))
		return nil, fmt.Errorf("language model call failed: %w", err)
	}
	e.metrics.RecordLLMRequest(ctx, e.model(), instrumentation.StatusSuccess, time.Since(start))

	intent, err := parseIntent(raw)
	if err != nil {
		e.logger.Warn("rejected model output",
			logging.Operation("intent.extract"),
			logging.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	e.logger.Debug("extracted intent",
		logging.Operation("intent.extract"),
		logging.Intent(string(intent.Kind)))
	return intent, nil
}

// parseIntent decodes raw model output as exactly one JSON intent object.
func parseIntent(raw string) (*Intent, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	var intent Intent
	if err := dec.Decode(&intent); err != nil {
		return nil, err
	}

	// A single object, nothing trailing. Conversational wrapper text
	// before or after the JSON fails the parse on purpose.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing content after intent object")
	}

	if err := intent.validate(); err != nil {
		return nil, err
	}
	return &intent, nil
}
