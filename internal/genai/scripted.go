package genai

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Scripted is a fixture Generator for development mode and tests. It
// produces well-formed intent JSON from simple keyword heuristics, so the
// whole pipeline can run without a model backend.
//
// It is selected once at wiring time; nothing branches on it per call.
type Scripted struct {
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time

	// Responses, when non-empty, are returned verbatim in order, cycling.
	// This overrides the keyword heuristics and lets tests script exact
	// model output, including garbage.
	Responses []string

	// Err, when set, is returned by every call.
	Err error

	calls int
}

// Model returns the fixture model name.
func (s *Scripted) Model() string {
	return "scripted"
}

// Generate returns a scripted response for the prompt.
func (s *Scripted) Generate(ctx context.Context, prompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}

	if len(s.Responses) > 0 {
		resp := s.Responses[s.calls%len(s.Responses)]
		s.calls++
		return resp, nil
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now().Format("2006-01-02")

	// Keyword-match the embedded user request, not the whole prompt: the
	// prompt template itself names every intent.
	lower := strings.ToLower(userRequestFromPrompt(prompt))
	var intent map[string]any
	switch {
	case strings.Contains(lower, "create") || strings.Contains(lower, "schedule"):
		intent = map[string]any{
			"intent": "CREATE_EVENT",
			"entities": map[string]any{
				"title":    "Mock Meeting",
				"date":     today,
				"time":     "14:00",
				"duration": "1 hour",
			},
		}
	case strings.Contains(lower, "view") || strings.Contains(lower, "show"):
		intent = map[string]any{
			"intent": "READ_EVENTS",
			"entities": map[string]any{
				"date": today,
			},
		}
	default:
		intent = map[string]any{
			"intent":   "GENERAL_QUERY",
			"entities": map[string]any{},
		}
	}

	out, err := json.Marshal(intent)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// userRequestFromPrompt extracts the quoted user request embedded in an
// extraction prompt. Falls back to the whole prompt when the marker is
// absent, which only happens when callers bypass the prompt template.
func userRequestFromPrompt(prompt string) string {
	const marker = "The user's request is: "

	idx := strings.Index(prompt, marker)
	if idx < 0 {
		return prompt
	}

	rest := prompt[idx+len(marker):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
