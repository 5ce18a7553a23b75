package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestList_DecodesPageHeaders(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/persons", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set(HeaderTotalCount, "45")
		w.Header().Set(HeaderLink, `</api/persons?page=3&size=20>; rel="next", </api/persons?page=1&size=20>; rel="prev"`)
		_ = json.NewEncoder(w).Encode([]model.Person{{ID: "1", FirstName: "Jan"}})
	})

	page, err := List[model.Person](context.Background(), c, model.KindPerson, PageRequest{Q: " nov ", Page: 2})
	require.NoError(t, err)

	assert.Equal(t, "page=2&q=nov&size=20", gotQuery)
	assert.Equal(t, 45, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.Size)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "/api/persons?page=3&size=20", page.Links["next"])
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext(), "page 2 of 45 items at size 20 is the last page")
}

func TestList_MissingTotalFallsBackToItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"t1","name":"a"},{"id":"t2","name":"b"}]`))
	})

	page, err := List[model.Tag](context.Background(), c, model.KindTag, PageRequest{Page: 1, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Empty(t, page.Links)
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		conflict    bool
	}{
		{name: "message field", status: http.StatusBadRequest, body: `{"message":"firstName is required"}`, wantMessage: "firstName is required"},
		{name: "error field", status: http.StatusNotFound, body: `{"error":"person not found"}`, wantMessage: "person not found"},
		{name: "conflict verbatim", status: http.StatusConflict, body: `{"detail":"Link already exists"}`, wantMessage: "Link already exists", conflict: true},
		{name: "plain text", status: http.StatusInternalServerError, body: `boom`, wantMessage: "GET"},
		{name: "empty", status: http.StatusBadGateway, body: ``, wantMessage: "502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := Get[model.Person](context.Background(), c, model.KindPerson, "1")
			require.Error(t, err)

			assert.True(t, failure.IsTransport(err))
			assert.Equal(t, tt.status, failure.Status(err))
			assert.Equal(t, tt.conflict, failure.IsConflict(err))
			assert.Contains(t, err.Error(), tt.wantMessage)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL)
	err := c.Delete(context.Background(), model.KindTag, "t1")
	require.Error(t, err)
	assert.True(t, failure.IsTransport(err))
	assert.Equal(t, 0, failure.Status(err))
}

func TestClient_LinkRoutes(t *testing.T) {
	caption := "Portrait"
	order := 2

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   string
	}{
		{
			name:       "add person tag",
			call:       func(c *Client) error { _, err := c.AddLink(context.Background(), model.PersonTag{PersonID: "p1", TagID: "t1"}); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/personstags/person/p1/tag/t1",
		},
		{
			name:       "add person entry defaults role",
			call:       func(c *Client) error { _, err := c.AddLink(context.Background(), model.PersonEntry{PersonID: "p1", EntryID: "e1"}); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/personentry/person/p1/entries/e1",
			wantQuery:  "role=autor",
		},
		{
			name:       "remove person entry with role",
			call:       func(c *Client) error { return c.RemoveLink(context.Background(), model.PersonEntry{PersonID: "p1", EntryID: "e1", Role: "Svědek"}) },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/personentry/person/p1/entries/e1",
			wantQuery:  "role=sv%C4%9Bdek",
		},
		{
			name:       "change role",
			call:       func(c *Client) error { return c.ChangeEntryRole(context.Background(), "p1", "e1", "autor", "editor") },
			wantMethod: http.MethodPut,
			wantPath:   "/api/personentry/person/p1/entries/e1",
			wantQuery:  "newRole=editor&oldRole=autor",
		},
		{
			name:       "remove entry tag",
			call:       func(c *Client) error { return c.RemoveLink(context.Background(), model.EntryTag{EntryID: "e1", TagID: "t1"}) },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/entriestags/entry/e1/tag/t1",
		},
		{
			name: "update media entry",
			call: func(c *Client) error {
				_, err := c.UpdateLink(context.Background(), model.MediaEntry{MediaID: "m1", EntryID: "e1", Caption: &caption, SortOrder: &order})
				return err
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/mediaentry/entry/e1/media/m1",
			wantBody:   `{"caption":"Portrait","sortOrder":2}`,
		},
		{
			name:       "remove relation",
			call:       func(c *Client) error { return c.RemoveLink(context.Background(), model.PersonRelation{ID: "r1"}) },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/personrelation/r1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method, path, query, body string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				method, path, query = r.Method, r.URL.Path, r.URL.RawQuery
				if r.Body != nil {
					var raw json.RawMessage
					if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
						body = string(raw)
					}
				}
				w.WriteHeader(http.StatusNoContent)
			})

			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.wantMethod, method)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantQuery, query)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, body)
			}
		})
	}
}

func TestClient_AmbiguousRemoveSendsNothing(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	err := c.RemoveLink(context.Background(), model.PersonEntry{PersonID: "p1", EntryID: "e1", Role: "  "})
	assert.True(t, failure.IsAmbiguity(err))

	err = c.RemoveLink(context.Background(), model.PersonRelation{FromPersonID: "a", ToPersonID: "b", Type: "friend"})
	assert.True(t, failure.IsAmbiguity(err))

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_UpdateExistenceOnlyLink(t *testing.T) {
	c := New("http://127.0.0.1:0")
	_, err := c.UpdateLink(context.Background(), model.PersonTag{PersonID: "p", TagID: "t"})
	assert.True(t, failure.HasCode(err, failure.CodeNotEditable))
}

func TestClient_AddRelationReturnsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var rel model.PersonRelation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rel))
		rel.ID = "r-42"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rel)
	})

	got, err := c.AddLink(context.Background(), model.PersonRelation{FromPersonID: "a", ToPersonID: "b", Type: "friend"})
	require.NoError(t, err)

	rel, ok := got.(model.PersonRelation)
	require.True(t, ok)
	assert.Equal(t, "r-42", rel.ID)
	assert.Equal(t, "friend", rel.Type)
}

func TestListCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/personentry/person/p1/entries", r.URL.Path)
		if r.URL.Query().Get("page") == "" {
			_, _ = w.Write([]byte(`[{"id":"e1","type":"note","role":"autor"},{"id":"e1","type":"note","role":"editor"}]`))
			return
		}
		w.Header().Set(HeaderTotalCount, "2")
		_, _ = w.Write([]byte(`[{"id":"e1","type":"note","role":"autor"}]`))
	})

	page, err := ListCollection[model.LinkedEntry](context.Background(), c, model.PersonEntries, "p1", PageRequest{Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.HasNext())

	all, err := ListCollectionAll[model.LinkedEntry](context.Background(), c, model.PersonEntries, "p1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "editor", all[1].Role)
}

func TestWithTimeout_LeavesCallerClientAlone(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}

	c := New("http://localhost", WithHTTPClient(hc), WithTimeout(5*time.Second))

	assert.Equal(t, time.Minute, hc.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, hc, c.httpClient)
}

func TestWithTimeout_DefaultClient(t *testing.T) {
	c := New("http://localhost", WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)

	c = New("http://localhost")
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
