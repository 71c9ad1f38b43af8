// Package admin declares how each catalogue entity appears in the
// administrative surface: which columns are listed, searched, filtered and
// edited in place.
package admin

import "github.com/ikkim/storybook-backend/internal/app/model"

type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindMarkup   FieldKind = "markup" // raw SVG, rendered unescaped on public pages
	KindInt      FieldKind = "int"
	KindBool     FieldKind = "bool"
	KindURL      FieldKind = "url"
)

// Field describes one editable column. MaxLength counts characters, zero
// means unbounded.
type Field struct {
	Name      string
	Label     string
	Kind      FieldKind
	MaxLength int
	Required  bool
}

// Entity is the admin configuration of one model.
type Entity struct {
	Slug         string
	Name         string
	PluralName   string
	Fields       []Field
	ListDisplay  []string
	SearchFields []string
	ListFilter   []string
	ListEditable []string
}

const (
	AgeGroupSlug = "agegroup"
	ThemeSlug    = "theme"
	StorySlug    = "story"
)

var registry = []Entity{
	{
		Slug:       AgeGroupSlug,
		Name:       "Age group",
		PluralName: "Age groups",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, MaxLength: model.AgeGroupNameMaxLength, Required: true},
			{Name: "range", Label: "Range", Kind: KindText, MaxLength: model.AgeGroupRangeMaxLength, Required: true},
			{Name: "color", Label: "Color", Kind: KindText, MaxLength: model.AgeGroupColorMaxLength, Required: true},
		},
		ListDisplay:  []string{"name", "range", "color"},
		SearchFields: []string{"name", "range"},
	},
	{
		Slug:       ThemeSlug,
		Name:       "Theme",
		PluralName: "Themes",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, MaxLength: model.ThemeNameMaxLength, Required: true},
			{Name: "icon", Label: "Icon", Kind: KindMarkup, Required: true},
		},
		ListDisplay:  []string{"name"},
		SearchFields: []string{"name"},
	},
	{
		Slug:       StorySlug,
		Name:       "Story",
		PluralName: "Stories",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, MaxLength: model.StoryTitleMaxLength, Required: true},
			{Name: "summary", Label: "Summary", Kind: KindTextArea, Required: true},
			{Name: "content", Label: "Content", Kind: KindTextArea, Required: true},
			{Name: "image_url", Label: "Image URL", Kind: KindURL, MaxLength: model.StoryImageURLMaxLength, Required: true},
			{Name: "age_group", Label: "Age group", Kind: KindText, MaxLength: model.StoryAgeGroupMaxLength, Required: true},
			{Name: "reading_time", Label: "Reading time", Kind: KindInt, Required: true},
			{Name: "theme", Label: "Theme", Kind: KindText, MaxLength: model.StoryThemeMaxLength, Required: true},
			{Name: "is_featured", Label: "Is featured", Kind: KindBool},
			{Name: "rating", Label: "Rating", Kind: KindInt, Required: true},
		},
		ListDisplay:  []string{"title", "age_group", "theme", "reading_time", "is_featured", "rating"},
		SearchFields: []string{"title", "content", "summary"},
		ListFilter:   []string{"age_group", "theme", "is_featured"},
		ListEditable: []string{"is_featured", "rating"},
	},
}

// Entities returns every registered entity in menu order.
func Entities() []Entity {
	out := make([]Entity, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds an entity by its URL slug.
func Lookup(slug string) (Entity, bool) {
	for _, e := range registry {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entity{}, false
}

func (e Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (e Entity) IsEditable(name string) bool {
	return contains(e.ListEditable, name)
}

func (e Entity) IsFilter(name string) bool {
	return contains(e.ListFilter, name)
}

// Label returns the display label of a column, falling back to its name.
func (e Entity) Label(name string) string {
	if f, ok := e.Field(name); ok {
		return f.Label
	}
	return name
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
