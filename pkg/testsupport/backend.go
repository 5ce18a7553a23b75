package testsupport

import (
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-lide-client/internal/fakeapi"
)

// Backend is a running fake REST backend.
type Backend struct {
	*fakeapi.Server
	URL string
}

// StartBackend starts an empty fake backend that is shut down when the test
// ends.
func StartBackend(t testing.TB, opts ...fakeapi.Option) *Backend {
	t.Helper()

	server := fakeapi.New(opts...)
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	return &Backend{Server: server, URL: srv.URL}
}

// StartSeededBackend starts a fake backend holding the default dataset.
func StartSeededBackend(t testing.TB, opts ...fakeapi.Option) (*Backend, Dataset) {
	t.Helper()

	b := StartBackend(t, opts...)
	d := DefaultDataset(t)
	Seed(b.Server, d)
	return b, d
}

// Seed loads every record and link of d into the server.
func Seed(server *fakeapi.Server, d Dataset) {
	for _, p := range d.Persons {
		server.AddPerson(p)
	}
	for _, e := range d.Entries {
		server.AddEntry(e)
	}
	for _, t := range d.Tags {
		server.AddTag(t)
	}
	for _, m := range d.Media {
		server.AddMedia(m)
	}
	for _, l := range d.Links() {
		server.Link(l)
	}
	server.ResetRequests()
}
