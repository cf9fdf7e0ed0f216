// Package pgrsttest provides an in-process stand-in for a PostgREST server.
// It records every request, decodes its query with rest.ParseQuery and answers
// with a canned JSON response.
package pgrsttest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/edgeflare/pgrest/pkg/httputil"
	"github.com/edgeflare/pgrest/pkg/rest"
)

// Recorded is one request received by the server.
type Recorded struct {
	Method string
	Path   string
	Schema string // Accept-Profile or Content-Profile
	Header http.Header
	Params []rest.Param
	Query  rest.QueryParams
	Prefer *rest.Prefer
	Body   string
}

// Server is a fake PostgREST endpoint.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	schemas  map[string]bool
	reply    any
	status   int
}

// New starts a server that accepts the given schemas ("public" when none are
// given) and closes it when the test ends.
func New(t testing.TB, schemas ...string) *Server {
	t.Helper()
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}

	s := &Server{schemas: make(map[string]bool), reply: []any{}}
	for _, schema := range schemas {
		s.schemas[schema] = true
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Reply sets the status code and JSON body of later responses.
func (s *Server) Reply(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.reply = status, body
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Server) Last(t testing.TB) Recorded {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("pgrsttest: no request received")
	}
	return reqs[len(reqs)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "PGRST102", "failed to read body")
		return
	}

	params, err := rest.ParseRawQuery(r.URL.RawQuery)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "PGRST100", err.Error())
		return
	}
	query, err := rest.ParseQuery(params)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "PGRST100", err.Error())
		return
	}

	schema := r.Header.Get(rest.HeaderAcceptProfile)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		schema = r.Header.Get(rest.HeaderContentProfile)
	}

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Schema: schema,
		Header: r.Header.Clone(),
		Params: params,
		Query:  query,
		Prefer: rest.ParsePrefer(r.Header.Get(rest.HeaderPrefer)),
		Body:   string(body),
	})
	status, reply := s.status, s.reply
	s.mu.Unlock()

	if schema != "" && !s.schemas[schema] {
		httputil.Error(w, http.StatusNotAcceptable, "PGRST106",
			"The schema must be one of the following: "+strings.Join(s.schemaList(), ", "))
		return
	}

	if status == 0 {
		status = http.StatusOK
		if r.Method == http.MethodPost && !strings.HasPrefix(r.URL.Path, "/rpc/") {
			status = http.StatusCreated
		}
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	httputil.JSON(w, status, reply)
}

func (s *Server) schemaList() []string {
	list := make([]string, 0, len(s.schemas))
	for schema := range s.schemas {
		list = append(list, schema)
	}
	slices.Sort(list)
	return list
}
