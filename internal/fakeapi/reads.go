package fakeapi

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-lide-client/model"
)

func (s *Server) handleCollection(col model.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := mux.Vars(r)["id"]

		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.exists(col.OwnerKind, owner) {
			respondError(w, http.StatusNotFound, string(col.OwnerKind)+" not found")
			return
		}

		switch col {
		case model.PersonTags:
			paginate(w, r, s.tagsOfPerson(owner))
		case model.TagPersons:
			var out []model.Person
			for _, l := range s.personTags {
				if p, ok := s.persons.get(l.PersonID); ok && l.TagID == owner {
					out = append(out, p)
				}
			}
			paginate(w, r, nonNil(out))
		case model.PersonEntries:
			paginate(w, r, s.entriesOfPerson(owner))
		case model.EntryPersons:
			paginate(w, r, s.personsOfEntry(owner))
		case model.EntryTags:
			paginate(w, r, s.tagsOfEntry(owner))
		case model.TagEntries:
			var out []model.Entry
			for _, l := range s.entryTags {
				if e, ok := s.entries.get(l.EntryID); ok && l.TagID == owner {
					out = append(out, e)
				}
			}
			paginate(w, r, nonNil(out))
		case model.EntryMedia:
			paginate(w, r, s.mediaOfEntry(owner))
		case model.MediaEntries:
			var out []model.MediaLinkedEntry
			for _, l := range s.mediaEntries {
				e, ok := s.entries.get(l.EntryID)
				if !ok || l.MediaID != owner {
					continue
				}
				out = append(out, model.MediaLinkedEntry{
					EntryID: e.ID, MediaID: l.MediaID, Type: e.Type, Title: e.Title, Content: e.Content,
					OccurredAt: e.OccurredAt, Caption: l.Caption, SortOrder: l.SortOrder,
				})
			}
			paginate(w, r, nonNil(out))
		case model.RelationsFrom:
			paginate(w, r, s.relationsWhere(func(rel model.PersonRelation) bool { return rel.FromPersonID == owner }))
		case model.RelationsTo:
			paginate(w, r, s.relationsWhere(func(rel model.PersonRelation) bool { return rel.ToPersonID == owner }))
		}
	}
}

func (s *Server) tagsOfPerson(personID string) []model.Tag {
	var out []model.Tag
	for _, l := range s.personTags {
		if t, ok := s.tags.get(l.TagID); ok && l.PersonID == personID {
			out = append(out, t)
		}
	}
	return nonNil(out)
}

func (s *Server) entriesOfPerson(personID string) []model.LinkedEntry {
	var out []model.LinkedEntry
	for _, l := range s.personEntries {
		if e, ok := s.entries.get(l.EntryID); ok && l.PersonID == personID {
			out = append(out, model.LinkedEntry{Entry: e, Role: l.Role})
		}
	}
	return nonNil(out)
}

func (s *Server) personsOfEntry(entryID string) []model.LinkedPerson {
	var out []model.LinkedPerson
	for _, l := range s.personEntries {
		p, ok := s.persons.get(l.PersonID)
		if !ok || l.EntryID != entryID {
			continue
		}
		out = append(out, model.LinkedPerson{
			PersonID: p.ID, EntryID: entryID, FirstName: p.FirstName, LastName: p.LastName,
			Nickname: p.Nickname, BirthDate: p.BirthDate, Phone: p.Phone, Email: p.Email,
			Note: p.Note, Role: l.Role,
		})
	}
	return nonNil(out)
}

func (s *Server) tagsOfEntry(entryID string) []model.Tag {
	var out []model.Tag
	for _, l := range s.entryTags {
		if t, ok := s.tags.get(l.TagID); ok && l.EntryID == entryID {
			out = append(out, t)
		}
	}
	return nonNil(out)
}

// mediaOfEntry lists linked media by sort order; unordered media go last.
func (s *Server) mediaOfEntry(entryID string) []model.LinkedMedia {
	var out []model.LinkedMedia
	for _, l := range s.mediaEntries {
		m, ok := s.media.get(l.MediaID)
		if !ok || l.EntryID != entryID {
			continue
		}
		out = append(out, model.LinkedMedia{
			MediaID: m.ID, EntryID: entryID, MediaType: m.MediaType, MimeType: m.MimeType,
			URI: m.URI, Title: m.Title, Note: m.Note, TakenAt: m.TakenAt,
			Caption: l.Caption, SortOrder: l.SortOrder,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SortOrder, out[j].SortOrder
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})
	return nonNil(out)
}

func (s *Server) relationsWhere(keep func(model.PersonRelation) bool) []model.PersonRelation {
	var out []model.PersonRelation
	for _, rel := range s.relations.all() {
		if keep(rel) {
			out = append(out, rel)
		}
	}
	return nonNil(out)
}

func (s *Server) handlePersonRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "person not found")
		return
	}

	view := func(rel model.PersonRelation, otherID string) model.RelationView {
		v := model.RelationView{PersonRelation: rel}
		if other, ok := s.persons.get(otherID); ok {
			v.OtherPersonDisplayName = other.DisplayName()
		}
		return v
	}

	read := model.PersonRead{
		Person:       p,
		Tags:         s.tagsOfPerson(id),
		Entries:      s.entriesOfPerson(id),
		RelationsOut: []model.RelationView{},
		RelationsIn:  []model.RelationView{},
	}
	for _, rel := range s.relations.all() {
		if rel.FromPersonID == id {
			read.RelationsOut = append(read.RelationsOut, view(rel, rel.ToPersonID))
		}
		if rel.ToPersonID == id {
			read.RelationsIn = append(read.RelationsIn, view(rel, rel.FromPersonID))
		}
	}
	respondJSON(w, http.StatusOK, read)
}

func (s *Server) handleEntryRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "entry not found")
		return
	}

	respondJSON(w, http.StatusOK, model.EntryRead{
		Entry:   e,
		Tags:    s.tagsOfEntry(id),
		Persons: s.personsOfEntry(id),
		Media:   s.mediaOfEntry(id),
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
