package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "expenses/internal/log"
)

type observed struct {
	route  string
	status int
}

type fakeObserver struct {
	calls []observed
}

func (f *fakeObserver) ObserveRequest(route string, status int, elapsed time.Duration) {
	f.calls = append(f.calls, observed{route: route, status: status})
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Output: &buf})
	obs := &fakeObserver{}

	var seenID string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /expenses/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		applog.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusInternalServerError)
	})

	h := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" }, obs).Middleware(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses/abc/edit", nil))

	requestID := rec.Header().Get(RequestIDHeader)
	assert.Regexp(t, regexp.MustCompile(`^req_[0-9a-f]{16}$`), requestID)
	assert.Equal(t, requestID, seenID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, obs.calls, 2)
	assert.Equal(t, observed{route: "GET /expenses/{id}/edit", status: http.StatusTeapot}, obs.calls[0])
	assert.Equal(t, observed{route: UnmatchedRoute, status: http.StatusNotFound}, obs.calls[1])

	out := buf.String()
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, "request_id="+requestID)
	assert.Contains(t, out, "client_ip=198.51.100.1")
	assert.Contains(t, out, "status_code=418")
}

func TestGetRequestIDMissing(t *testing.T) {
	assert.Empty(t, GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
