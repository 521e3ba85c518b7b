package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// mockServer is an analysis service stand-in with per-path handlers.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []map[string]any
}

// newMockServer creates a mock server answering /analyze with a fixed
// result and /health with a healthy status.
func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)

	m.handle("/analyze", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errorResponse(w, http.StatusBadRequest, "EB-ARG-4000", "bad body")
			return
		}
		m.mu.Lock()
		m.requests = append(m.requests, body)
		m.mu.Unlock()
		jsonResponse(w, http.StatusOK, map[string]any{
			"evaluation": 0.35,
			"is_mate":    false,
			"mate_in":    0,
			"best_move":  "e2e4",
			"comment":    "Position is approximately equal",
		})
	})
	m.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"engine_running": true,
		})
	})
	return m
}

// handle registers or replaces the handler for path.
func (m *mockServer) handle(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

func (m *mockServer) analyzeRequests() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]any(nil), m.requests...)
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse writes an error response.
func errorResponse(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// runApp runs the CLI with args and stdin, isolated from the user's home
// directory, and returns what it wrote to stdout and stderr.
func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut

	err := app.Run(append([]string{"evalboard"}, args...))
	return out.String(), errOut.String(), err
}
