// Package fixture reads seed data for the catalogue: JSON fixtures of
// {"model", "pk", "fields"} records and spreadsheet exports of stories.
package fixture

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ikkim/storybook-backend/internal/app/model"
)

// Model labels understood in the "model" key of a fixture record.
const (
	ModelAgeGroup = "stories.agegroup"
	ModelTheme    = "stories.theme"
	ModelStory    = "stories.story"
)

//go:embed initial_data.json
var initialData []byte

type record struct {
	Model  string          `json:"model"`
	PK     uint            `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

// Fixture is a decoded seed dataset. Records keep the primary keys given in
// the file; zero means "let the store assign one".
type Fixture struct {
	AgeGroups []model.AgeGroup
	Themes    []model.Theme
	Stories   []model.Story
}

// Len is the total number of records.
func (f *Fixture) Len() int {
	return len(f.AgeGroups) + len(f.Themes) + len(f.Stories)
}

// Default returns the dataset bundled with the binary.
func Default() (*Fixture, error) {
	return Parse(bytes.NewReader(initialData))
}

// LoadFile reads a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a JSON array of {"model", "pk", "fields"} records.
func Parse(r io.Reader) (*Fixture, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	fx := &Fixture{}
	for i, rec := range records {
		switch rec.Model {
		case ModelAgeGroup:
			var ag model.AgeGroup
			if err := json.Unmarshal(rec.Fields, &ag); err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, rec.Model, err)
			}
			ag.ID = rec.PK
			fx.AgeGroups = append(fx.AgeGroups, ag)
		case ModelTheme:
			var th model.Theme
			if err := json.Unmarshal(rec.Fields, &th); err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, rec.Model, err)
			}
			th.ID = rec.PK
			fx.Themes = append(fx.Themes, th)
		case ModelStory:
			var st model.Story
			if err := json.Unmarshal(rec.Fields, &st); err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, rec.Model, err)
			}
			st.ID = rec.PK
			fx.Stories = append(fx.Stories, st)
		default:
			return nil, fmt.Errorf("record %d: unknown fixture model %q", i, rec.Model)
		}
	}
	return fx, nil
}
