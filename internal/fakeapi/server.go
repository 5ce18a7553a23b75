// Package fakeapi is an in-memory implementation of the knowledge base REST
// API for tests. It serves the same routes, pagination headers and error
// statuses as the real backend, records every request it receives and can
// inject failures on chosen routes.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/model"
)

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

// FailureRule makes matching requests fail. Path matches exactly; an empty
// Method matches any method. Times limits how often the rule fires; zero
// means every time.
type FailureRule struct {
	Method  string
	Path    string
	Status  int
	Message string
	Delay   time.Duration
	Times   int
}

type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]T{}}
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// Server is the fake backend. It implements http.Handler.
type Server struct {
	mu sync.Mutex

	persons *table[model.Person]
	entries *table[model.Entry]
	tags    *table[model.Tag]
	media   *table[model.Media]

	personTags    []model.PersonTag
	personEntries []model.PersonEntry
	entryTags     []model.EntryTag
	mediaEntries  []model.MediaEntry
	relations     *table[model.PersonRelation]

	requests []Request
	failures []*FailureRule

	router *mux.Router
	logger zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every handled request.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates an empty backend.
func New(opts ...Option) *Server {
	s := &Server{
		persons:   newTable[model.Person](),
		entries:   newTable[model.Entry](),
		tags:      newTable[model.Tag](),
		media:     newTable[model.Media](),
		relations: newTable[model.PersonRelation](),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	for _, kind := range model.Kinds() {
		kind := kind
		res := "/" + kind.Resource()
		api.HandleFunc(res, s.handleList(kind)).Methods(http.MethodGet)
		api.HandleFunc(res, s.handleCreate(kind)).Methods(http.MethodPost)
		api.HandleFunc(res+"/{id}", s.handleGet(kind)).Methods(http.MethodGet)
		api.HandleFunc(res+"/{id}", s.handleUpdate(kind)).Methods(http.MethodPut)
		api.HandleFunc(res+"/{id}", s.handleDelete(kind)).Methods(http.MethodDelete)
	}

	api.HandleFunc("/personread/{id}", s.handlePersonRead).Methods(http.MethodGet)
	api.HandleFunc("/entryread/{id}", s.handleEntryRead).Methods(http.MethodGet)

	api.HandleFunc("/personstags/person/{id}/tags", s.handleCollection(model.PersonTags)).Methods(http.MethodGet)
	api.HandleFunc("/personstags/tag/{id}/persons", s.handleCollection(model.TagPersons)).Methods(http.MethodGet)
	api.HandleFunc("/personstags/person/{pid}/tag/{tid}", s.handlePersonTag).Methods(http.MethodPost, http.MethodDelete)

	api.HandleFunc("/personentry/person/{id}/entries", s.handleCollection(model.PersonEntries)).Methods(http.MethodGet)
	api.HandleFunc("/personentry/entry/{id}/persons", s.handleCollection(model.EntryPersons)).Methods(http.MethodGet)
	api.HandleFunc("/personentry/person/{pid}/entries/{eid}", s.handlePersonEntry).Methods(http.MethodPost, http.MethodDelete)
	api.HandleFunc("/personentry/person/{pid}/entries/{eid}", s.handleChangeRole).Methods(http.MethodPut)

	api.HandleFunc("/entriestags/entry/{id}/tags", s.handleCollection(model.EntryTags)).Methods(http.MethodGet)
	api.HandleFunc("/entriestags/tag/{id}/entries", s.handleCollection(model.TagEntries)).Methods(http.MethodGet)
	api.HandleFunc("/entriestags/entry/{eid}/tag/{tid}", s.handleEntryTag).Methods(http.MethodPost, http.MethodDelete)

	api.HandleFunc("/mediaentry/entry/{id}/media", s.handleCollection(model.EntryMedia)).Methods(http.MethodGet)
	api.HandleFunc("/mediaentry/media/{id}/entries", s.handleCollection(model.MediaEntries)).Methods(http.MethodGet)
	api.HandleFunc("/mediaentry/entry/{eid}/media/{mid}", s.handleMediaEntry).Methods(http.MethodPost, http.MethodPut, http.MethodDelete)

	api.HandleFunc("/personrelation/from/{id}", s.handleCollection(model.RelationsFrom)).Methods(http.MethodGet)
	api.HandleFunc("/personrelation/to/{id}", s.handleCollection(model.RelationsTo)).Methods(http.MethodGet)
	api.HandleFunc("/personrelation", s.handleCreateRelation).Methods(http.MethodPost)
	api.HandleFunc("/personrelation/{id}", s.handleUpdateRelation).Methods(http.MethodPut)
	api.HandleFunc("/personrelation/{id}", s.handleDeleteRelation).Methods(http.MethodDelete)

	s.router = router
}

// ServeHTTP records the request, applies failure rules and dispatches it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()})
	rule := s.matchFailure(r)
	s.mu.Unlock()

	s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("fakeapi request")

	if rule != nil {
		if rule.Delay > 0 {
			select {
			case <-time.After(rule.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if rule.Status != 0 {
			respondError(w, rule.Status, rule.Message)
			return
		}
	}

	s.router.ServeHTTP(w, r)
}

// Fail installs a failure rule.
func (s *Server) Fail(rule FailureRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := rule
	s.failures = append(s.failures, &r)
}

// ClearFailures removes every failure rule.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

func (s *Server) matchFailure(r *http.Request) *FailureRule {
	for i, rule := range s.failures {
		if rule.Path != r.URL.Path || (rule.Method != "" && rule.Method != r.Method) {
			continue
		}
		matched := *rule
		if rule.Times > 0 {
			rule.Times--
			if rule.Times == 0 {
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
			}
		}
		return &matched
	}
	return nil
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests with the method hit paths starting with
// pathPrefix. An empty method matches any.
func (s *Server) Count(method, pathPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	respondJSON(w, status, map[string]string{"message": message})
}

// paginate writes one page of items with X-Total-Count and Link headers. A
// request without page or size gets every item.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("size") == "" {
		respondJSON(w, http.StatusOK, items)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	total := len(items)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	if link := linkHeader(r.URL, page, size, total); link != "" {
		w.Header().Set("Link", link)
	}
	respondJSON(w, http.StatusOK, items[start:end])
}

func linkHeader(u *url.URL, page, size, total int) string {
	last := 0
	if total > 0 {
		last = (total - 1) / size
	}
	ref := func(p int, rel string) string {
		q := u.Query()
		q.Set("page", strconv.Itoa(p))
		q.Set("size", strconv.Itoa(size))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, u.Path, q.Encode(), rel)
	}

	parts := []string{}
	if page < last {
		parts = append(parts, ref(page+1, "next"))
	}
	if page > 0 {
		parts = append(parts, ref(page-1, "prev"))
	}
	parts = append(parts, ref(0, "first"), ref(last, "last"))
	return strings.Join(parts, ", ")
}

func newID() string {
	return uuid.NewString()
}

func decode(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
