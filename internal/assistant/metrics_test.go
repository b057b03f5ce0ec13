package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/metadata"
)

func newRecordingMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	m, err := instrumentation.NewMetrics(meter, false)
	require.NoError(t, err)
	return m, reader
}

// counterValue sums every data point of the named int64 counter.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is not an int64 sum", name)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestHandleChatTurnRecordsMetrics(t *testing.T) {
	gen := &genai.Scripted{Responses: []string{
		`{"intent": "CREATE_EVENT", "entities": {"title": "Standup", "date": "2025-07-22", "time": "09:00"}}`,
		"not json at all",
	}}
	svc, _, _ := newTestService(t, gen)
	m, reader := newRecordingMetrics(t)
	svc.SetInstrumentation(m)
	ctx := context.Background()

	svc.HandleChatTurn(ctx, "owner-1", "cred", "schedule standup")
	assert.EqualValues(t, 1, counterValue(t, reader, "chat_turns_total"))
	assert.EqualValues(t, 1, counterValue(t, reader, "llm_requests_total"))

	// The unparseable path is a chat turn too
	svc.HandleChatTurn(ctx, "owner-1", "cred", "gibberish")
	assert.EqualValues(t, 2, counterValue(t, reader, "chat_turns_total"))
	assert.EqualValues(t, 2, counterValue(t, reader, "llm_requests_total"))
}

func TestCRUDRecordsMetadataOperationMetrics(t *testing.T) {
	svc, _, _ := newTestService(t, &genai.Scripted{})
	m, reader := newRecordingMetrics(t)
	svc.SetInstrumentation(m)
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, "owner-1", "cred", CreateEventRequest{
		Title:      "Sync",
		Start:      refNow.Add(time.Hour),
		End:        refNow.Add(2 * time.Hour),
		Importance: metadata.ImportanceHigh,
	})
	require.NoError(t, err)

	_, err = svc.ListEvents(ctx, "owner-1", "cred", refNow, refNow.AddDate(0, 0, 1))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, "owner-1", "cred", created.ID))

	// upsert on create, find_many on list, delete on delete
	assert.EqualValues(t, 3, counterValue(t, reader, "metadata_operations_total"))
}

func TestChatCreateWithMetadataRecordsStoreMetric(t *testing.T) {
	gen := &genai.Scripted{Responses: []string{
		`{"intent": "CREATE_EVENT", "entities": {"title": "Review", "date": "2025-07-22", "time": "10:00", "importance": "high"}}`,
	}}
	svc, _, _ := newTestService(t, gen)
	m, reader := newRecordingMetrics(t)
	svc.SetInstrumentation(m)

	svc.HandleChatTurn(context.Background(), "owner-1", "cred", "schedule an important review")

	assert.EqualValues(t, 1, counterValue(t, reader, "metadata_operations_total"))
}
