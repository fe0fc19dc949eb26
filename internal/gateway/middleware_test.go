package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdesk/internal/logging"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "debug")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := requestIDMiddleware(loggingMiddleware(inner, log))

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["message"])
	assert.Equal(t, "req-42", entry["requestId"])
	assert.Equal(t, "/agents", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})
	handler := requestIDMiddleware(inner)

	t.Run("generates id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		assert.Equal(t, rr.Header().Get("X-Request-ID"), seen)
	})

	t.Run("preserves caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "custom-id-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, "custom-id-123", rr.Header().Get("X-Request-ID"))
		assert.Equal(t, "custom-id-123", seen)
	})
}

func TestRequestID_EmptyContext(t *testing.T) {
	assert.Empty(t, RequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		origin    string
		wantAllow string
	}{
		{"deny when unconfigured", nil, "http://localhost:3000", ""},
		{"wildcard echoes origin", []string{"*"}, "http://localhost:3000", "http://localhost:3000"},
		{"listed origin", []string{"http://desk.example"}, "http://desk.example", "http://desk.example"},
		{"unlisted origin", []string{"http://desk.example"}, "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/agents", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			corsMiddleware(okHandler, tt.allowed).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "DELETE")
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	corsMiddleware(okHandler, nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestWithMiddleware(t *testing.T) {
	log := logging.New(nil, "silent")

	t.Run("no origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://test.example")
		rr := httptest.NewRecorder()
		withMiddleware(okHandler, log, nil).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("with origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://test.example")
		rr := httptest.NewRecorder()
		withMiddleware(okHandler, log, []string{"http://test.example"}).ServeHTTP(rr, req)

		assert.Equal(t, "ok", rr.Body.String())
		assert.Equal(t, "http://test.example", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSMiddleware_VaryOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	req.Header.Set("Origin", "http://desk.example")
	rr := httptest.NewRecorder()
	corsMiddleware(okHandler, []string{"*"}).ServeHTTP(rr, req)

	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), headerRequestID)
}
