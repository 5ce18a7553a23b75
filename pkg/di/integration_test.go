package di

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/internal/fakeapi"
	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/mutation"
	"github.com/goliatone/go-lide-client/pkg/testsupport"
	"github.com/goliatone/go-lide-client/transport"
)

func newTestContainer(t testing.TB) (*Container, *testsupport.Backend) {
	t.Helper()

	backend, _ := testsupport.StartSeededBackend(t)

	cfg := DefaultConfig()
	cfg.BaseURL = backend.URL
	cfg.DebounceDelay = 10 * time.Millisecond

	container, err := NewContainer(cfg, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return container, backend
}

func TestEndToEndPersonLifecycle(t *testing.T) {
	c, backend := newTestContainer(t)
	ctx := context.Background()
	reader := c.Reader()

	persons, err := reader.Persons(ctx, transport.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, persons.Total)

	created, err := mutation.Run[model.Person](ctx, c.Executor(),
		mutation.CreatePerson(model.PersonInput{FirstName: "Marie", LastName: "Nová"}))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	persons, err = reader.Persons(ctx, transport.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, persons.Total, "list refetched after create")

	read, err := reader.PersonRead(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marie", read.FirstName)

	_, err = mutation.Run[model.Person](ctx, c.Executor(),
		mutation.UpdatePerson(created.ID, model.PersonInput{FirstName: "Marie", Nickname: "Mája"}))
	require.NoError(t, err)

	read, err = reader.PersonRead(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mája", read.DisplayName())

	_, err = c.Executor().Execute(ctx, mutation.Delete(model.KindPerson, created.ID))
	require.NoError(t, err)

	_, err = reader.Person(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, failure.Status(err))
	assert.Equal(t, 2, backend.Count(http.MethodGet, "/api/personread/"))
}

func TestEndToEndLinkCoherency(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()
	reader := c.Reader()

	before, err := reader.PersonRead(ctx, "p-petr")
	require.NoError(t, err)
	assert.Empty(t, before.Tags)

	tagPersons, err := reader.TagPersons(ctx, "t-travel", transport.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, tagPersons.Total)

	_, err = c.Links().Add(ctx, model.PersonTag{PersonID: "p-petr", TagID: "t-travel"})
	require.NoError(t, err)

	after, err := reader.PersonRead(ctx, "p-petr")
	require.NoError(t, err)
	assert.Equal(t, []model.Tag{{ID: "t-travel", Name: "cestování"}}, after.Tags)

	tagPersons, err = reader.TagPersons(ctx, "t-travel", transport.PageRequest{})
	require.NoError(t, err)
	require.Len(t, tagPersons.Items, 1)
	assert.Equal(t, "p-petr", tagPersons.Items[0].ID)

	err = c.Links().Remove(ctx, model.PersonTag{PersonID: "p-petr", TagID: "t-travel"})
	require.NoError(t, err)

	after, err = reader.PersonRead(ctx, "p-petr")
	require.NoError(t, err)
	assert.Empty(t, after.Tags)
}

func TestEndToEndRelationBothDirections(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()
	reader := c.Reader()

	in, err := reader.RelationsTo(ctx, "p-petr", transport.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, in.Items)

	link, err := c.Links().Add(ctx, model.PersonRelation{FromPersonID: "p-jan", ToPersonID: "p-petr", Type: "bratr"})
	require.NoError(t, err)
	rel := link.(model.PersonRelation)

	in, err = reader.RelationsTo(ctx, "p-petr", transport.PageRequest{})
	require.NoError(t, err)
	require.Len(t, in.Items, 1)
	assert.Equal(t, rel.ID, in.Items[0].ID)

	petr, err := reader.PersonRead(ctx, "p-petr")
	require.NoError(t, err)
	require.Len(t, petr.RelationsIn, 1)
	assert.Equal(t, "Honza", petr.RelationsIn[0].OtherPersonDisplayName)

	require.NoError(t, c.Links().Remove(ctx, rel))

	in, err = reader.RelationsTo(ctx, "p-petr", transport.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, in.Items)
}

func TestSearchControllerFollowsMutations(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	ctrl, detach := TagSearch(ctx, c)
	defer detach()

	require.NoError(t, ctrl.Refresh(ctx))
	assert.Equal(t, 2, ctrl.State().Total)
	assert.Equal(t, transport.DefaultPageSize, ctrl.State().Size)

	_, err := mutation.Run[model.Tag](ctx, c.Executor(), mutation.CreateTag(model.TagInput{Name: "  práce "}))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return ctrl.State().Total == 3
	}, time.Second, 5*time.Millisecond)

	ctrl.Type(ctx, "prá")
	assert.Eventually(t, func() bool {
		s := ctrl.State()
		return s.Filter == "prá" && !s.Loading && s.Total == 1
	}, time.Second, 5*time.Millisecond)
}

func TestErrorPropagation(t *testing.T) {
	c, backend := newTestContainer(t)
	ctx := context.Background()
	keys := c.Store().Keys()

	_, err := c.Reader().Tags(ctx, transport.PageRequest{})
	require.NoError(t, err)
	listKey := keys.List(model.KindTag, "", 0, transport.DefaultPageSize)

	t.Run("server failure leaves cache untouched", func(t *testing.T) {
		backend.Fail(fakeapi.FailureRule{Method: http.MethodPost, Path: "/api/tags", Status: http.StatusInternalServerError, Message: "database down", Times: 1})

		_, err := c.Executor().Execute(ctx, mutation.CreateTag(model.TagInput{Name: "práce"}))
		require.Error(t, err)
		assert.True(t, failure.IsTransport(err))
		assert.Contains(t, err.Error(), "database down")

		_, ok := c.Store().Get(ctx, listKey)
		assert.True(t, ok)
	})

	t.Run("server conflict keeps message", func(t *testing.T) {
		_, err := c.Executor().Execute(ctx, mutation.CreateTag(model.TagInput{Name: "Rodina"}))
		require.Error(t, err)
		assert.True(t, failure.IsConflict(err))
		assert.Contains(t, err.Error(), "Tag with this name already exists")
	})

	t.Run("validation never reaches the server", func(t *testing.T) {
		backend.ResetRequests()
		_, err := c.Executor().Execute(ctx, mutation.CreateEntry(model.EntryInput{Type: "note"}))
		require.Error(t, err)
		assert.True(t, failure.IsValidation(err))
		assert.Contains(t, failure.Fields(err), "content")
		assert.Empty(t, backend.Requests())
	})
}
