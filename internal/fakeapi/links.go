package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-lide-client/model"
)

// Link stores a link directly, bypassing HTTP. Relations get an id when they
// have none. Duplicates are ignored.
func (s *Server) Link(link model.Link) model.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch l := model.Normalize(link).(type) {
	case model.PersonTag:
		if !s.hasPersonTag(l) {
			s.personTags = append(s.personTags, l)
		}
		return l
	case model.PersonEntry:
		if s.personEntryIndex(l) < 0 {
			s.personEntries = append(s.personEntries, l)
		}
		return l
	case model.EntryTag:
		if !s.hasEntryTag(l) {
			s.entryTags = append(s.entryTags, l)
		}
		return l
	case model.MediaEntry:
		s.upsertMediaEntry(l)
		return l
	case model.PersonRelation:
		if l.ID == "" {
			l.ID = newID()
		}
		s.relations.put(l.ID, l)
		return l
	}
	return link
}

func (s *Server) hasPersonTag(l model.PersonTag) bool {
	for _, x := range s.personTags {
		if x == l {
			return true
		}
	}
	return false
}

func (s *Server) personEntryIndex(l model.PersonEntry) int {
	for i, x := range s.personEntries {
		if x.NaturalKey() == l.NaturalKey() {
			return i
		}
	}
	return -1
}

func (s *Server) hasEntryTag(l model.EntryTag) bool {
	for _, x := range s.entryTags {
		if x == l {
			return true
		}
	}
	return false
}

func (s *Server) mediaEntryIndex(entryID, mediaID string) int {
	for i, x := range s.mediaEntries {
		if x.EntryID == entryID && x.MediaID == mediaID {
			return i
		}
	}
	return -1
}

func (s *Server) upsertMediaEntry(l model.MediaEntry) {
	if i := s.mediaEntryIndex(l.EntryID, l.MediaID); i >= 0 {
		s.mediaEntries[i] = l
		return
	}
	s.mediaEntries = append(s.mediaEntries, l)
}

func (s *Server) handlePersonTag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l := model.PersonTag{PersonID: vars["pid"], TagID: vars["tid"]}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodDelete {
		before := len(s.personTags)
		s.personTags = dropWhere(s.personTags, func(x model.PersonTag) bool { return x == l })
		if len(s.personTags) == before {
			respondError(w, http.StatusNotFound, "Link not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !s.exists(model.KindPerson, l.PersonID) || !s.exists(model.KindTag, l.TagID) {
		respondError(w, http.StatusNotFound, "Person or tag not found")
		return
	}
	if s.hasPersonTag(l) {
		respondError(w, http.StatusConflict, "Link already exists")
		return
	}
	s.personTags = append(s.personTags, l)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handlePersonEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	role := r.URL.Query().Get("role")

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodDelete {
		if strings.TrimSpace(role) == "" {
			respondError(w, http.StatusBadRequest, "role is required")
			return
		}
		l := model.PersonEntry{PersonID: vars["pid"], EntryID: vars["eid"], Role: model.NormalizeRole(role)}
		i := s.personEntryIndex(l)
		if i < 0 {
			respondError(w, http.StatusNotFound, "Link not found")
			return
		}
		s.personEntries = append(s.personEntries[:i], s.personEntries[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	l := model.PersonEntry{PersonID: vars["pid"], EntryID: vars["eid"], Role: model.RoleOrDefault(role)}
	if !s.exists(model.KindPerson, l.PersonID) || !s.exists(model.KindEntry, l.EntryID) {
		respondError(w, http.StatusNotFound, "Person or entry not found")
		return
	}
	if s.personEntryIndex(l) >= 0 {
		respondError(w, http.StatusConflict, "Link already exists")
		return
	}
	s.personEntries = append(s.personEntries, l)
	w.WriteHeader(http.StatusCreated)
}

// handleChangeRole replaces oldRole with newRole in one step; nothing changes
// when the new role is already taken.
func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("oldRole")) == "" {
		respondError(w, http.StatusBadRequest, "oldRole is required")
		return
	}

	from := model.PersonEntry{PersonID: vars["pid"], EntryID: vars["eid"], Role: model.NormalizeRole(q.Get("oldRole"))}
	to := model.PersonEntry{PersonID: from.PersonID, EntryID: from.EntryID, Role: model.RoleOrDefault(q.Get("newRole"))}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.personEntryIndex(from)
	if i < 0 {
		respondError(w, http.StatusNotFound, "Link not found")
		return
	}
	if from.Role != to.Role && s.personEntryIndex(to) >= 0 {
		respondError(w, http.StatusConflict, "Link with role "+to.Role+" already exists")
		return
	}
	s.personEntries[i] = to
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntryTag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l := model.EntryTag{EntryID: vars["eid"], TagID: vars["tid"]}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodDelete {
		before := len(s.entryTags)
		s.entryTags = dropWhere(s.entryTags, func(x model.EntryTag) bool { return x == l })
		if len(s.entryTags) == before {
			respondError(w, http.StatusNotFound, "Link not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !s.exists(model.KindEntry, l.EntryID) || !s.exists(model.KindTag, l.TagID) {
		respondError(w, http.StatusNotFound, "Entry or tag not found")
		return
	}
	if s.hasEntryTag(l) {
		respondError(w, http.StatusConflict, "Link already exists")
		return
	}
	s.entryTags = append(s.entryTags, l)
	w.WriteHeader(http.StatusCreated)
}

// handleMediaEntry creates or updates the link on POST and PUT; the body
// carries caption and sortOrder.
func (s *Server) handleMediaEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, mediaID := vars["eid"], vars["mid"]

	var attrs model.MediaEntryAttributes
	if r.Method != http.MethodDelete {
		if err := decode(r, &attrs); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.mediaEntryIndex(entryID, mediaID)
	switch r.Method {
	case http.MethodDelete:
		if i < 0 {
			respondError(w, http.StatusNotFound, "Link not found")
			return
		}
		s.mediaEntries = append(s.mediaEntries[:i], s.mediaEntries[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPut:
		if i < 0 {
			respondError(w, http.StatusNotFound, "Link not found")
			return
		}
	}

	if !s.exists(model.KindEntry, entryID) || !s.exists(model.KindMedia, mediaID) {
		respondError(w, http.StatusNotFound, "Entry or media not found")
		return
	}
	l := model.MediaEntry{EntryID: entryID, MediaID: mediaID, Caption: attrs.Caption, SortOrder: attrs.SortOrder}
	s.upsertMediaEntry(l)
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleCreateRelation(w http.ResponseWriter, r *http.Request) {
	var rel model.PersonRelation
	if err := decode(r, &rel); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	rel = model.Normalize(rel).(model.PersonRelation)
	rel.ID = ""
	if err := rel.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(model.KindPerson, rel.FromPersonID) || !s.exists(model.KindPerson, rel.ToPersonID) {
		respondError(w, http.StatusNotFound, "Person not found")
		return
	}
	if s.relationTaken(rel) {
		respondError(w, http.StatusConflict, "Relation already exists")
		return
	}
	rel.ID = newID()
	s.relations.put(rel.ID, rel)
	respondJSON(w, http.StatusCreated, rel)
}

func (s *Server) handleUpdateRelation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var rel model.PersonRelation
	if err := decode(r, &rel); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	rel = model.Normalize(rel).(model.PersonRelation)
	rel.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.relations.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Relation not found")
		return
	}
	if rel.FromPersonID == "" {
		rel.FromPersonID = current.FromPersonID
	}
	if rel.ToPersonID == "" {
		rel.ToPersonID = current.ToPersonID
	}
	if err := rel.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.relationTaken(rel) {
		respondError(w, http.StatusConflict, "Relation already exists")
		return
	}
	s.relations.put(id, rel)
	respondJSON(w, http.StatusOK, rel)
}

func (s *Server) handleDeleteRelation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.relations.remove(id) {
		respondError(w, http.StatusNotFound, "Relation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) relationTaken(rel model.PersonRelation) bool {
	for _, x := range s.relations.all() {
		if x.ID != rel.ID && x.NaturalKey() == rel.NaturalKey() {
			return true
		}
	}
	return false
}
