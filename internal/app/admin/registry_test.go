package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_StoryConfiguration(t *testing.T) {
	story, ok := Lookup(StorySlug)
	require.True(t, ok)

	assert.Equal(t, []string{"title", "age_group", "theme", "reading_time", "is_featured", "rating"}, story.ListDisplay)
	assert.Equal(t, []string{"title", "content", "summary"}, story.SearchFields)
	assert.Equal(t, []string{"age_group", "theme", "is_featured"}, story.ListFilter)
	assert.True(t, story.IsEditable("rating"))
	assert.True(t, story.IsEditable("is_featured"))
	assert.False(t, story.IsEditable("title"))
	assert.True(t, story.IsFilter("theme"))

	title, ok := story.Field("title")
	require.True(t, ok)
	assert.Equal(t, 100, title.MaxLength)
}

func TestRegistry_AgeGroupAndTheme(t *testing.T) {
	ageGroup, ok := Lookup(AgeGroupSlug)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "range", "color"}, ageGroup.ListDisplay)
	assert.Equal(t, []string{"name", "range"}, ageGroup.SearchFields)
	assert.Empty(t, ageGroup.ListEditable)

	theme, ok := Lookup(ThemeSlug)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, theme.ListDisplay)
	assert.Equal(t, []string{"name"}, theme.SearchFields)
}

func TestRegistry_EveryListedColumnIsAField(t *testing.T) {
	for _, e := range Entities() {
		for _, group := range [][]string{e.ListDisplay, e.SearchFields, e.ListFilter, e.ListEditable} {
			for _, name := range group {
				_, ok := e.Field(name)
				assert.True(t, ok, "%s: %q is not a field", e.Slug, name)
			}
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup("user")
	assert.False(t, ok)
}

func TestEntities_ReturnsCopy(t *testing.T) {
	entities := Entities()
	entities[0].Slug = "changed"

	_, ok := Lookup(AgeGroupSlug)
	assert.True(t, ok)
}
