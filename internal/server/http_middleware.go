package server

import (
	"net/http"
	"time"

	"github.com/aetherhq/aether/internal/instrumentation"
)

// InstrumentHTTPHandler wraps an HTTP handler and records request count and
// duration per method, path, and response status. Path labels stay
// low-cardinality because the server only mounts fixed routes.
func InstrumentHTTPHandler(next http.Handler, metrics *instrumentation.Metrics) http.Handler {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

// statusRecorder captures the response status code. Handlers that never
// call WriteHeader implicitly respond 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
