package testsupport

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-lide-client/model"
)

//go:embed testdata/knowledgebase.json
var knowledgeBase []byte

// Dataset is a knowledge base snapshot used to seed the fake backend.
type Dataset struct {
	Persons       []model.Person         `json:"persons"`
	Entries       []model.Entry          `json:"entries"`
	Tags          []model.Tag            `json:"tags"`
	Media         []model.Media          `json:"media"`
	PersonTags    []model.PersonTag      `json:"personTags"`
	PersonEntries []model.PersonEntry    `json:"personEntries"`
	EntryTags     []model.EntryTag       `json:"entryTags"`
	MediaEntries  []model.MediaEntry     `json:"mediaEntries"`
	Relations     []model.PersonRelation `json:"relations"`
}

// Links returns every link of the dataset.
func (d Dataset) Links() []model.Link {
	var out []model.Link
	for _, l := range d.PersonTags {
		out = append(out, l)
	}
	for _, l := range d.PersonEntries {
		out = append(out, l)
	}
	for _, l := range d.EntryTags {
		out = append(out, l)
	}
	for _, l := range d.MediaEntries {
		out = append(out, l)
	}
	for _, l := range d.Relations {
		out = append(out, l)
	}
	return out
}

// DefaultDataset returns the bundled knowledge base: three persons, two
// entries, two tags, one photo and links of every kind.
func DefaultDataset(t testing.TB) Dataset {
	t.Helper()

	var d Dataset
	if err := json.Unmarshal(knowledgeBase, &d); err != nil {
		t.Fatalf("failed to decode bundled dataset: %v", err)
	}
	return d
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadDataset loads a Dataset from a JSON fixture file.
func LoadDataset(t testing.TB, path string) Dataset {
	t.Helper()

	var d Dataset
	LoadFixtureJSON(t, path, &d)
	return d
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
