package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Person is a person as returned by the API.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	BirthDate *Date  `json:"birthDate,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Note      string `json:"note,omitempty"`
}

func (p Person) EntityKind() Kind { return KindPerson }
func (p Person) EntityID() string { return p.ID }

// DisplayName prefers the nickname, then the full name, then the id.
func (p Person) DisplayName() string {
	if nick := strings.TrimSpace(p.Nickname); nick != "" {
		return nick
	}
	if full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName)); full != "" {
		return full
	}
	return p.ID
}

// PersonInput is the create/update payload for a person.
type PersonInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	BirthDate *Date  `json:"birthDate,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Validate checks the input for creation; firstName is required.
func (in PersonInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, notBlank),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.BirthDate, validation.By(notInFuture)),
	)
}

// ValidateUpdate checks the input for an update, where every field is optional.
func (in PersonInput) ValidateUpdate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.BirthDate, validation.By(notInFuture)),
	)
}

// Entry is a dated piece of text attached to persons, tags and media.
type Entry struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content,omitempty"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

func (e Entry) EntityKind() Kind { return KindEntry }
func (e Entry) EntityID() string { return e.ID }

// EntryInput is the create/update payload for an entry.
type EntryInput struct {
	Type       string     `json:"type"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

// Validate checks required type and content.
func (in EntryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, notBlank, validation.Length(1, 64)),
		validation.Field(&in.Title, validation.Length(0, 255)),
		validation.Field(&in.Content, validation.Required, notBlank),
	)
}

// Tag is a label; its name is used as a de-facto unique key.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (t Tag) EntityKind() Kind { return KindTag }
func (t Tag) EntityID() string { return t.ID }

// TagInput is the create/update payload for a tag.
type TagInput struct {
	Name string `json:"name"`
}

// Validate checks the tag name.
func (in TagInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, notBlank, validation.Length(1, 100)),
	)
}

// Trimmed returns the input with surrounding whitespace removed from the name.
func (in TagInput) Trimmed() TagInput {
	return TagInput{Name: strings.TrimSpace(in.Name)}
}

// Media is a photo, document or other resource referenced by uri.
type Media struct {
	ID        string     `json:"id"`
	MediaType string     `json:"mediaType"`
	URI       string     `json:"uri"`
	MimeType  string     `json:"mimeType,omitempty"`
	Title     string     `json:"title,omitempty"`
	Note      string     `json:"note,omitempty"`
	TakenAt   *time.Time `json:"takenAt,omitempty"`
}

func (m Media) EntityKind() Kind { return KindMedia }
func (m Media) EntityID() string { return m.ID }

// MediaInput is the create/update payload for media.
type MediaInput struct {
	MediaType string     `json:"mediaType"`
	URI       string     `json:"uri"`
	MimeType  string     `json:"mimeType,omitempty"`
	Title     string     `json:"title,omitempty"`
	Note      string     `json:"note,omitempty"`
	TakenAt   *time.Time `json:"takenAt,omitempty"`
}

// Validate checks required media type and uri.
func (in MediaInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.MediaType, validation.Required, notBlank),
		validation.Field(&in.URI, validation.Required, notBlank),
		validation.Field(&in.MimeType, validation.Match(mimePattern)),
	)
}

var notBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

func notInFuture(value any) error {
	d, _ := value.(*Date)
	if d == nil || d.IsZero() {
		return nil
	}
	if d.After(time.Now()) {
		return errors.New("must not be in the future")
	}
	return nil
}

var mimePattern = regexp.MustCompile(`^[\w.+-]+/[\w.+-]+$`)
