// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
)

// RecordingServer serves fixed responses keyed by request path and records
// every request it receives. Unknown paths get 404.
type RecordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string][]byte
	requests []string
}

// NewRecordingServer starts a server that is closed when the test ends.
func NewRecordingServer(t testing.TB) *RecordingServer {
	t.Helper()
	s := &RecordingServer{routes: make(map[string][]byte)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers body for path.
func (s *RecordingServer) Handle(path string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = body
}

// Requests returns the request paths seen so far, in arrival order.
func (s *RecordingServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Count returns the number of requests seen so far.
func (s *RecordingServer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Reset forgets recorded requests.
func (s *RecordingServer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *RecordingServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	body, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(body)
}
