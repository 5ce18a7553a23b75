package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-lide-client/model"
)

// AddPerson stores a person, assigning an id when it has none.
func (s *Server) AddPerson(p model.Person) model.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	s.persons.put(p.ID, p)
	return p
}

// AddEntry stores an entry, assigning an id when it has none.
func (s *Server) AddEntry(e model.Entry) model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	s.entries.put(e.ID, e)
	return e
}

// AddTag stores a tag, assigning an id when it has none.
func (s *Server) AddTag(t model.Tag) model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = newID()
	}
	s.tags.put(t.ID, t)
	return t
}

// AddMedia stores a media record, assigning an id when it has none.
func (s *Server) AddMedia(m model.Media) model.Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = newID()
	}
	s.media.put(m.ID, m)
	return m
}

func (s *Server) handleList(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

		s.mu.Lock()
		defer s.mu.Unlock()

		switch kind {
		case model.KindPerson:
			paginate(w, r, filter(s.persons.all(), q, func(p model.Person) string {
				return p.FirstName + " " + p.LastName + " " + p.Nickname + " " + p.Email
			}))
		case model.KindEntry:
			paginate(w, r, filter(s.entries.all(), q, func(e model.Entry) string {
				return e.Type + " " + e.Title + " " + e.Content
			}))
		case model.KindTag:
			paginate(w, r, filter(s.tags.all(), q, func(t model.Tag) string { return t.Name }))
		case model.KindMedia:
			paginate(w, r, filter(s.media.all(), q, func(m model.Media) string {
				return m.Title + " " + m.URI + " " + m.Note
			}))
		}
	}
}

func filter[T any](items []T, q string, text func(T) string) []T {
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if contains(text(it), q) {
			out = append(out, it)
		}
	}
	return out
}

func (s *Server) handleGet(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		s.mu.Lock()
		defer s.mu.Unlock()

		var (
			v  any
			ok bool
		)
		switch kind {
		case model.KindPerson:
			v, ok = s.persons.get(id)
		case model.KindEntry:
			v, ok = s.entries.get(id)
		case model.KindTag:
			v, ok = s.tags.get(id)
		case model.KindMedia:
			v, ok = s.media.get(id)
		}
		if !ok {
			respondError(w, http.StatusNotFound, string(kind)+" not found")
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

func (s *Server) handleCreate(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.write(w, r, kind, newID(), http.StatusCreated)
	}
}

func (s *Server) handleUpdate(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		s.mu.Lock()
		exists := s.exists(kind, id)
		s.mu.Unlock()

		if !exists {
			respondError(w, http.StatusNotFound, string(kind)+" not found")
			return
		}
		s.write(w, r, kind, id, http.StatusOK)
	}
}

// write decodes an input of the kind and stores it under id.
func (s *Server) write(w http.ResponseWriter, r *http.Request, kind model.Kind, id string, status int) {
	var (
		stored any
		err    error
	)

	switch kind {
	case model.KindPerson:
		var in model.PersonInput
		if err = decode(r, &in); err == nil && strings.TrimSpace(in.FirstName) == "" && status == http.StatusCreated {
			respondError(w, http.StatusBadRequest, "firstName is required")
			return
		}
		stored = model.Person{ID: id, FirstName: in.FirstName, LastName: in.LastName, Nickname: in.Nickname,
			BirthDate: in.BirthDate, Phone: in.Phone, Email: in.Email, Note: in.Note}
	case model.KindEntry:
		var in model.EntryInput
		err = decode(r, &in)
		stored = model.Entry{ID: id, Type: in.Type, Title: in.Title, Content: in.Content, OccurredAt: in.OccurredAt}
	case model.KindTag:
		var in model.TagInput
		err = decode(r, &in)
		name := strings.TrimSpace(in.Name)
		if err == nil && name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		s.mu.Lock()
		taken := s.tagNameTaken(name, id)
		s.mu.Unlock()
		if taken {
			respondError(w, http.StatusConflict, "Tag with this name already exists")
			return
		}
		stored = model.Tag{ID: id, Name: name}
	case model.KindMedia:
		var in model.MediaInput
		err = decode(r, &in)
		stored = model.Media{ID: id, MediaType: in.MediaType, URI: in.URI, MimeType: in.MimeType,
			Title: in.Title, Note: in.Note, TakenAt: in.TakenAt}
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	switch v := stored.(type) {
	case model.Person:
		s.persons.put(id, v)
	case model.Entry:
		s.entries.put(id, v)
	case model.Tag:
		s.tags.put(id, v)
	case model.Media:
		s.media.put(id, v)
	}
	s.mu.Unlock()

	respondJSON(w, status, stored)
}

func (s *Server) tagNameTaken(name, exceptID string) bool {
	for _, t := range s.tags.all() {
		if t.ID != exceptID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func (s *Server) exists(kind model.Kind, id string) bool {
	var ok bool
	switch kind {
	case model.KindPerson:
		_, ok = s.persons.get(id)
	case model.KindEntry:
		_, ok = s.entries.get(id)
	case model.KindTag:
		_, ok = s.tags.get(id)
	case model.KindMedia:
		_, ok = s.media.get(id)
	}
	return ok
}

// handleDelete removes an entity together with every link that references it.
func (s *Server) handleDelete(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		s.mu.Lock()
		defer s.mu.Unlock()

		var removed bool
		switch kind {
		case model.KindPerson:
			removed = s.persons.remove(id)
		case model.KindEntry:
			removed = s.entries.remove(id)
		case model.KindTag:
			removed = s.tags.remove(id)
		case model.KindMedia:
			removed = s.media.remove(id)
		}
		if !removed {
			respondError(w, http.StatusNotFound, string(kind)+" not found")
			return
		}

		s.cascade(kind, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) cascade(kind model.Kind, id string) {
	touches := func(l model.Link) bool {
		owner, target := l.Endpoints()
		return (owner.Kind == kind && owner.ID == id) || (target.Kind == kind && target.ID == id)
	}

	s.personTags = dropWhere(s.personTags, func(l model.PersonTag) bool { return touches(l) })
	s.personEntries = dropWhere(s.personEntries, func(l model.PersonEntry) bool { return touches(l) })
	s.entryTags = dropWhere(s.entryTags, func(l model.EntryTag) bool { return touches(l) })
	s.mediaEntries = dropWhere(s.mediaEntries, func(l model.MediaEntry) bool { return touches(l) })
	for _, rel := range s.relations.all() {
		if touches(rel) {
			s.relations.remove(rel.ID)
		}
	}
}

func dropWhere[T any](items []T, drop func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}
