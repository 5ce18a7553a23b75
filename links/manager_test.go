package links

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-lide-client/cache"
	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/internal/fakeapi"
	"github.com/goliatone/go-lide-client/invalidation"
	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/mutation"
	"github.com/goliatone/go-lide-client/pkg/testsupport"
	"github.com/goliatone/go-lide-client/querycache"
	"github.com/goliatone/go-lide-client/transport"
	"github.com/goliatone/go-lide-client/views"
)

const personEntryPath = "/api/personentry/person/"

func newManager(t *testing.T) (*Manager, *testsupport.Backend) {
	t.Helper()

	backend, _ := testsupport.StartSeededBackend(t)

	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)

	store := querycache.New(svc)
	api := transport.New(backend.URL)
	exec := mutation.New(api, store, invalidation.New(store.Keys()))

	return New(exec, views.New(api, store)), backend
}

func TestAdd_RejectsDuplicateRoleBeforeWriting(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	_, err := m.Add(ctx, model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "  Autor "})
	require.Error(t, err)
	assert.True(t, failure.IsConflict(err))
	assert.True(t, failure.HasCode(err, failure.CodeDuplicateLink))
	assert.Zero(t, backend.Count(http.MethodPost, personEntryPath))
}

func TestAdd_SecondRoleForSamePair(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	link, err := m.Add(ctx, model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "svědek"})
	require.NoError(t, err)
	assert.Equal(t, model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "svědek"}, link)
	assert.Equal(t, 1, backend.Count(http.MethodPost, personEntryPath))

	// the owner collection was invalidated, so the new role is now known
	_, err = m.Add(ctx, model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "Svědek"})
	assert.True(t, failure.HasCode(err, failure.CodeDuplicateLink))
	assert.Equal(t, 1, backend.Count(http.MethodPost, personEntryPath))

	known, err := m.Known(ctx, model.PersonEntries, "p-jan")
	require.NoError(t, err)
	assert.Len(t, known, 2)
}

func TestAdd_DefaultRole(t *testing.T) {
	m, backend := newManager(t)

	link, err := m.Add(context.Background(), model.PersonEntry{PersonID: "p-petr", EntryID: "e-wedding"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRole, link.(model.PersonEntry).Role)

	reqs := backend.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "autor", last.Query.Get("role"))
}

func TestAdd_InvalidLinkSendsNothing(t *testing.T) {
	m, backend := newManager(t)

	_, err := m.Add(context.Background(), model.PersonRelation{FromPersonID: "p-jan", ToPersonID: "p-jan", Type: "bratr"})
	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
	assert.Contains(t, failure.Fields(err), "toPersonId")
	assert.Empty(t, backend.Requests())
}

func TestAdd_RelationGetsServerID(t *testing.T) {
	m, _ := newManager(t)

	link, err := m.Add(context.Background(), model.PersonRelation{FromPersonID: "p-petr", ToPersonID: "p-jan", Type: "Kolega"})
	require.NoError(t, err)

	rel := link.(model.PersonRelation)
	assert.NotEmpty(t, rel.ID)
	assert.Equal(t, "kolega", rel.Type)
}

func TestRemove_AmbiguousSendsNothing(t *testing.T) {
	tests := []struct {
		name string
		link model.Link
	}{
		{"person entry without role", model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding"}},
		{"person entry with blank role", model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "   "}},
		{"relation without id", model.PersonRelation{FromPersonID: "p-jan", ToPersonID: "p-eva", Type: "manžel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, backend := newManager(t)

			err := m.Remove(context.Background(), tt.link)
			require.Error(t, err)
			assert.True(t, failure.IsAmbiguity(err))
			assert.Empty(t, backend.Requests())
		})
	}
}

func TestRemove_ExactLink(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	err := m.Remove(ctx, model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "svědek"})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Count(http.MethodDelete, personEntryPath))

	known, err := m.Known(ctx, model.EntryPersons, "e-wedding")
	require.NoError(t, err)
	assert.Equal(t, []model.Link{model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "autor"}}, known)
}

func TestEdit_ChangesRole(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	current := model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "svědek"}
	updated, err := m.Edit(ctx, current, model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "Editor"})
	require.NoError(t, err)
	assert.Equal(t, model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "editor"}, updated)
	assert.Equal(t, 1, backend.Count(http.MethodPut, personEntryPath))

	known, err := m.Known(ctx, model.PersonEntries, "p-eva")
	require.NoError(t, err)
	assert.Equal(t, []model.Link{updated}, known)
}

func TestEdit_UnchangedRoleSendsNothing(t *testing.T) {
	m, backend := newManager(t)

	current := model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "svědek"}
	got, err := m.Edit(context.Background(), current, model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: " SVĚDEK"})
	require.NoError(t, err)
	assert.Equal(t, current, got)
	assert.Empty(t, backend.Requests())
}

func TestEdit_RoleAlreadyTaken(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	_, err := m.Add(ctx, model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "svědek"})
	require.NoError(t, err)
	backend.ResetRequests()

	_, err = m.Edit(ctx,
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "autor"},
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "svědek"})
	require.Error(t, err)
	assert.True(t, failure.HasCode(err, failure.CodeDuplicateLink))
	assert.Zero(t, backend.Count(http.MethodPut, personEntryPath))
}

func TestEdit_ServerConflictLeavesBothRoles(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	// cache the owner's links, then add a role behind the client's back
	_, err := m.Known(ctx, model.PersonEntries, "p-jan")
	require.NoError(t, err)
	backend.Link(model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "editor"})

	_, err = m.Edit(ctx,
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "autor"},
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "editor"})
	require.Error(t, err)
	assert.True(t, failure.IsConflict(err))
	assert.Equal(t, http.StatusConflict, failure.Status(err))

	api := transport.New(backend.URL)
	entries, err := transport.ListCollectionAll[model.LinkedEntry](ctx, api, model.PersonEntries, "p-jan")
	require.NoError(t, err)

	roles := []string{}
	for _, e := range entries {
		roles = append(roles, e.Role)
	}
	assert.ElementsMatch(t, []string{"autor", "editor"}, roles)
}

func TestEdit_MediaCaption(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	caption, order := "Novomanželé", 2
	current := model.MediaEntry{MediaID: "m-ceremony", EntryID: "e-wedding"}
	_, err := m.Edit(ctx, current, model.MediaEntry{MediaID: "m-ceremony", EntryID: "e-wedding", Caption: &caption, SortOrder: &order})
	require.NoError(t, err)

	known, err := m.Known(ctx, model.EntryMedia, "e-wedding")
	require.NoError(t, err)
	require.Len(t, known, 1)

	got := known[0].(model.MediaEntry)
	require.NotNil(t, got.Caption)
	assert.Equal(t, caption, *got.Caption)
	assert.Equal(t, order, *got.SortOrder)
}

func TestEdit_Relation(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	current := model.PersonRelation{ID: "r-marriage", FromPersonID: "p-jan", ToPersonID: "p-eva", Type: "manžel"}

	t.Run("note only", func(t *testing.T) {
		updated := current
		updated.Note = "civilní obřad"
		got, err := m.Edit(ctx, current, updated)
		require.NoError(t, err)
		assert.Equal(t, "r-marriage", got.(model.PersonRelation).ID)
	})

	t.Run("onto an existing relation", func(t *testing.T) {
		backend.Link(model.PersonRelation{ID: "r-friend", FromPersonID: "p-jan", ToPersonID: "p-eva", Type: "přítel"})

		updated := current
		updated.Type = "Přítel"
		_, err := m.Edit(ctx, current, updated)
		assert.True(t, failure.HasCode(err, failure.CodeDuplicateLink))
	})

	t.Run("without id", func(t *testing.T) {
		noID := current
		noID.ID = ""
		_, err := m.Edit(ctx, noID, noID)
		assert.True(t, failure.IsAmbiguity(err))
	})
}

func TestEdit_Rejections(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.Edit(ctx, model.PersonTag{PersonID: "p-jan", TagID: "t-family"}, model.PersonTag{PersonID: "p-jan", TagID: "t-family"})
	assert.True(t, failure.HasCode(err, failure.CodeNotEditable))

	_, err = m.Edit(ctx,
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "autor"},
		model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "autor"})
	assert.True(t, failure.IsValidation(err))

	_, err = m.Edit(ctx,
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding"},
		model.PersonEntry{PersonID: "p-jan", EntryID: "e-wedding", Role: "editor"})
	assert.True(t, failure.IsAmbiguity(err))
}

func TestDialog_AddLifecycle(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	d := m.NewDialog()

	assert.Equal(t, DialogClosed, d.State())
	require.NoError(t, d.OpenAdd(model.PersonTag{PersonID: "p-jan", TagID: "t-family"}))
	assert.Equal(t, DialogOpen, d.State())
	assert.True(t, failure.HasCode(d.OpenAdd(nil), failure.CodeDialogState))

	_, err := d.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, DialogOpen, d.State())
	assert.True(t, failure.IsConflict(d.Err()))

	require.NoError(t, d.SetDraft(model.PersonTag{PersonID: "p-jan", TagID: "t-travel"}))
	link, err := d.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PersonTag{PersonID: "p-jan", TagID: "t-travel"}, link)
	assert.Equal(t, DialogClosed, d.State())
	assert.Nil(t, d.Draft())

	_, err = d.Submit(ctx)
	assert.True(t, failure.HasCode(err, failure.CodeDialogState))
}

func TestDialog_SubmitWhileSubmitting(t *testing.T) {
	m, backend := newManager(t)
	ctx := context.Background()

	backend.Fail(fakeapi.FailureRule{
		Method: http.MethodPost,
		Path:   "/api/personstags/person/p-petr/tag/t-travel",
		Delay:  200 * time.Millisecond,
		Times:  1,
	})

	d := m.NewDialog()
	require.NoError(t, d.OpenAdd(model.PersonTag{PersonID: "p-petr", TagID: "t-travel"}))

	done := make(chan error, 1)
	go func() {
		_, err := d.Submit(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return d.State() == DialogSubmitting }, time.Second, 5*time.Millisecond)

	_, err := d.Submit(ctx)
	assert.True(t, failure.HasCode(err, failure.CodeDialogState))
	assert.True(t, failure.HasCode(d.Cancel(), failure.CodeDialogState))

	require.NoError(t, <-done)
	assert.Equal(t, DialogClosed, d.State())
	assert.Equal(t, 1, backend.Count(http.MethodPost, "/api/personstags/"))
}

func TestDialog_EditAndCancel(t *testing.T) {
	m, _ := newManager(t)
	d := m.NewDialog()

	current := model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "svědek"}
	require.NoError(t, d.OpenEdit(current))
	assert.Equal(t, ModeEdit, d.Mode())
	assert.Equal(t, current, d.Draft())

	require.NoError(t, d.Cancel())
	assert.Equal(t, DialogClosed, d.State())
	assert.True(t, failure.HasCode(d.SetDraft(current), failure.CodeDialogState))

	require.NoError(t, d.OpenEdit(current))
	require.NoError(t, d.SetDraft(model.PersonEntry{PersonID: "p-eva", EntryID: "e-wedding", Role: "host"}))
	link, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "host", link.(model.PersonEntry).Role)
}
