package controller

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageController_Home(t *testing.T) {
	f := setupControllerTest(t)
	f.seedCatalog(t)
	f.addStory(t, "featured-fox", "3-5", "حيوانات", true, seedTime)
	for i := 0; i < 5; i++ {
		f.addStory(t, "recent-"+string(rune('a'+i)), "6-8", "مغامرات", false, seedTime.Add(time.Duration(i+1)*time.Hour))
	}

	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "featured-fox")
	assert.Contains(t, body, "recent-e")
	assert.Contains(t, body, "recent-b")
	assert.NotContains(t, body, "recent-a", "only the four newest stories are listed as recent")
	assert.Contains(t, body, "/age-group/3-5/")
	assert.Contains(t, body, `<path d="M12 6v6"/>`)
}

func TestPageController_StoryDetail(t *testing.T) {
	f := setupControllerTest(t)
	f.seedCatalog(t)
	story := f.addStory(t, "fox", "3-5", "حيوانات", false, seedTime)

	w := f.get("/story/1/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, story.Title)
	assert.Contains(t, body, "<p>first line</p>")
	assert.Contains(t, body, "7 دقائق للقراءة")
	assert.Contains(t, body, "#FF6B6B")
}

func TestPageController_StoryDetail_NotFound(t *testing.T) {
	f := setupControllerTest(t)

	for _, path := range []string{"/story/42/", "/story/nope/"} {
		w := f.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "404", path)
	}
}

func TestPageController_StoriesByAgeGroup(t *testing.T) {
	f := setupControllerTest(t)
	f.seedCatalog(t)
	f.addStory(t, "small-fox", "3-5", "حيوانات", false, seedTime)
	f.addStory(t, "big-ship", "6-8", "مغامرات", false, seedTime)

	w := f.get("/age-group/3-5/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "small-fox")
	assert.NotContains(t, w.Body.String(), "big-ship")
	assert.Contains(t, w.Body.String(), "قصص لعمر 3-5 سنوات")

	w = f.get("/age-group/99/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "small-fox")
}

func TestPageController_StoriesByTheme(t *testing.T) {
	f := setupControllerTest(t)
	f.seedCatalog(t)
	f.addStory(t, "small-fox", "3-5", "حيوانات", false, seedTime)
	f.addStory(t, "big-ship", "6-8", "مغامرات", false, seedTime)

	w := f.get("/theme/" + url.PathEscape("مغامرات") + "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "big-ship")
	assert.NotContains(t, w.Body.String(), "small-fox")
}
