package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhq/aether/internal/genai"
)

var refNow = time.Date(2025, time.July, 21, 8, 0, 0, 0, time.UTC)

func TestExtractValidIntent(t *testing.T) {
	gen := &genai.Scripted{Responses: []string{
		`{"intent": "CREATE_EVENT", "entities": {"title": "Meeting with Jane", "date": "2025-07-22", "time": "14:00", "duration": "2 hours"}}`,
	}}
	ex := NewExtractor(gen, nil)

	intent, err := ex.Extract(context.Background(), "schedule a meeting with Jane tomorrow at 2pm", refNow)
	require.NoError(t, err)
	assert.Equal(t, IntentCreateEvent, intent.Kind)
	assert.Equal(t, "Meeting with Jane", intent.Entities.Title)
	assert.Equal(t, "2025-07-22", intent.Entities.Date)
	assert.Equal(t, "14:00", intent.Entities.Time)
}

func TestExtractRejectsUnusableOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json at all", "not json at all"},
		{"leading wrapper text", `Sure, here you go: {"intent": "READ_EVENTS", "entities": {}}`},
		{"trailing wrapper text", `{"intent": "READ_EVENTS", "entities": {}} Hope that helps!`},
		{"unknown intent", `{"intent": "LAUNCH_MISSILES", "entities": {}}`},
		{"invalid importance", `{"intent": "CREATE_EVENT", "entities": {"title": "x", "importance": "critical"}}`},
		{"empty output", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &genai.Scripted{Responses: []string{tt.raw}}
			ex := NewExtractor(gen, nil)

			intent, err := ex.Extract(context.Background(), "whatever", refNow)
			assert.Nil(t, intent)
			assert.ErrorIs(t, err, ErrUnparseable)
		})
	}
}

func TestExtractUpstreamFailureIsNotUnparseable(t *testing.T) {
	boom := errors.New("model unavailable")
	ex := NewExtractor(&genai.Scripted{Err: boom}, nil)

	_, err := ex.Extract(context.Background(), "hello", refNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnparseable)
}

func TestBuildPromptEmbedsTextAndDate(t *testing.T) {
	prompt := BuildPrompt(`book "sync" tomorrow`, refNow.Format(currentDateLayout))

	assert.Contains(t, prompt, `book \"sync\" tomorrow`)
	assert.Contains(t, prompt, "Monday, July 21, 2025")
	assert.Contains(t, prompt, "'CREATE_EVENT', 'READ_EVENTS', 'UPDATE_EVENT', 'DELETE_EVENT', 'GENERAL_QUERY'")
	assert.True(t, strings.HasPrefix(prompt, "You are Aether"))
}
