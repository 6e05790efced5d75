package hrvtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	// PlainPath is the route for whole-recording calculations.
	PlainPath = "/calculate"
	// SegmentedPath is the route for windowed calculations.
	SegmentedPath = "/calculate_segments"

	// DefaultBody is returned until Respond is called.
	DefaultBody = `{"rmssd": 42.0, "sdnn": 51.3}`

	maxMemory = 32 << 20
)

// Request is a single upload received by the server.
type Request struct {
	Path        string
	Header      http.Header
	Fields      map[string]string
	FileName    string
	FileContent []byte
}

// Server is an httptest.Server that behaves like the HRV web service.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	requests    []Request
	status      int
	body        string
	contentType string
}

// New starts a server and closes it when the test finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := NewServer()
	t.Cleanup(s.Close)
	return s
}

// NewServer starts a server; the caller must Close it.
func NewServer() *Server {
	s := &Server{
		status:      http.StatusOK,
		body:        DefaultBody,
		contentType: "application/json",
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Post(PlainPath, s.handleCalculate)
	r.Post(SegmentedPath, s.handleCalculate)
	return r
}

// Respond sets the status and body returned for subsequent requests.
func (s *Server) Respond(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Requests returns a copy of every request recorded so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	rec := Request{
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Fields: make(map[string]string, len(r.MultipartForm.Value)),
	}
	for name, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			rec.Fields[name] = values[0]
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", "No file part in the request")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_file", err.Error())
		return
	}
	rec.FileName = header.Filename
	rec.FileContent = content

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	status, body, contentType := s.status, s.body, s.contentType
	s.mu.Unlock()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
