package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/db"
	"github.com/ikkim/storybook-backend/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type controllerFixture struct {
	db      *gorm.DB
	router  *gin.Engine
	catalog service.CatalogService
}

var seedTime = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func setupControllerTest(t *testing.T) *controllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	catalog := service.NewCatalogService(
		repository.NewAgeGroupRepository(testDB),
		repository.NewThemeRepository(testDB),
		repository.NewStoryRepository(testDB),
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	templates, err := web.Templates()
	require.NoError(t, err)
	router.SetHTMLTemplate(templates)

	pages := NewPageController(catalog)
	router.GET("/", pages.Home)
	router.GET("/story/:id/", pages.StoryDetail)
	router.GET("/age-group/:code/", pages.StoriesByAgeGroup)
	router.GET("/theme/:name/", pages.StoriesByTheme)

	api := NewAPIController(catalog)
	router.GET("/api/age-groups/", api.AgeGroups)
	router.GET("/api/themes/", api.Themes)
	router.GET("/api/stories/", api.Stories)
	router.GET("/api/stories/featured/", api.FeaturedStories)
	router.GET("/api/stories/recent/:count/", api.RecentStories)
	router.GET("/api/stories/:id/", api.StoryDetail)

	return &controllerFixture{db: testDB, router: router, catalog: catalog}
}

func (f *controllerFixture) seedCatalog(t *testing.T) {
	t.Helper()
	require.NoError(t, f.db.Create(&[]model.AgeGroup{
		{Name: "الصغار", Range: "3-5", Color: "#FF6B6B"},
		{Name: "المبتدئين", Range: "6-8", Color: "#4ECDC4"},
	}).Error)
	require.NoError(t, f.db.Create(&[]model.Theme{
		{Name: "حيوانات", Icon: `<path d="M20 7l-8-4"/>`},
		{Name: "مغامرات", Icon: `<path d="M12 6v6"/>`},
	}).Error)
}

func (f *controllerFixture) addStory(t *testing.T, title, ageGroup, theme string, featured bool, createdAt time.Time) *model.Story {
	t.Helper()
	story := &model.Story{
		Title:       title,
		Content:     "first line\nsecond line",
		Summary:     "summary of " + title,
		ImageURL:    "https://images.example.com/" + title + ".jpg",
		AgeGroup:    ageGroup,
		Theme:       theme,
		ReadingTime: 7,
		IsFeatured:  featured,
		Rating:      4,
		CreatedAt:   createdAt,
	}
	require.NoError(t, f.db.Create(story).Error)
	return story
}

func (f *controllerFixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAPIController_EmptyListsAreArrays(t *testing.T) {
	f := setupControllerTest(t)

	for _, path := range []string{
		"/api/age-groups/", "/api/themes/", "/api/stories/",
		"/api/stories/featured/", "/api/stories/recent/3/",
	} {
		w := f.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "[]", w.Body.String(), path)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json", path)
	}
}

func TestAPIController_AgeGroupsAndThemes(t *testing.T) {
	f := setupControllerTest(t)
	f.seedCatalog(t)

	ageGroups := decodeList(t, f.get("/api/age-groups/"))
	require.Len(t, ageGroups, 2)
	assert.Equal(t, map[string]interface{}{
		"id": float64(1), "name": "الصغار", "range": "3-5", "color": "#FF6B6B",
	}, ageGroups[0])

	themes := decodeList(t, f.get("/api/themes/"))
	require.Len(t, themes, 2)
	assert.Equal(t, "حيوانات", themes[0]["name"])
	assert.Equal(t, `<path d="M20 7l-8-4"/>`, themes[0]["icon"])
	assert.Len(t, themes[0], 3)
}

func TestAPIController_StoriesNewestFirst(t *testing.T) {
	f := setupControllerTest(t)
	older := f.addStory(t, "older", "3-5", "حيوانات", false, seedTime)
	newer := f.addStory(t, "newer", "6-8", "مغامرات", true, seedTime.Add(time.Hour))

	stories := decodeList(t, f.get("/api/stories/"))
	require.Len(t, stories, 2)
	assert.Equal(t, float64(newer.ID), stories[0]["id"])
	assert.Equal(t, float64(older.ID), stories[1]["id"])

	first := stories[0]
	assert.Len(t, first, 11)
	assert.Equal(t, true, first["is_featured"])
	assert.Equal(t, float64(7), first["reading_time"])
	assert.Equal(t, float64(4), first["rating"])
	assert.Equal(t, "2024-05-01T09:00:00Z", first["created_at"])
}

func TestAPIController_FeaturedStories(t *testing.T) {
	f := setupControllerTest(t)
	f.addStory(t, "plain", "3-5", "حيوانات", false, seedTime)
	featured := f.addStory(t, "shiny", "3-5", "حيوانات", true, seedTime)

	stories := decodeList(t, f.get("/api/stories/featured/"))
	require.Len(t, stories, 1)
	assert.Equal(t, float64(featured.ID), stories[0]["id"])
}

func TestAPIController_RecentStories(t *testing.T) {
	f := setupControllerTest(t)
	for i := 0; i < 5; i++ {
		f.addStory(t, string(rune('a'+i)), "3-5", "حيوانات", false, seedTime.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		path     string
		wantCode int
		wantLen  int
	}{
		{path: "/api/stories/recent/0/", wantCode: http.StatusOK, wantLen: 0},
		{path: "/api/stories/recent/2/", wantCode: http.StatusOK, wantLen: 2},
		{path: "/api/stories/recent/50/", wantCode: http.StatusOK, wantLen: 5},
		{path: "/api/stories/recent/2147483647/", wantCode: http.StatusOK, wantLen: 5},
		{path: "/api/stories/recent/2147483648/", wantCode: http.StatusOK, wantLen: 5},
		{path: "/api/stories/recent/99999999999/", wantCode: http.StatusOK, wantLen: 5},
		{path: "/api/stories/recent/123456789012345678901234567890/", wantCode: http.StatusOK, wantLen: 5},
		{path: "/api/stories/recent/-1/", wantCode: http.StatusNotFound},
		{path: "/api/stories/recent/two/", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := f.get(tt.path)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				stories := decodeList(t, w)
				assert.Len(t, stories, tt.wantLen)
				if tt.wantLen > 0 {
					assert.Equal(t, "e", stories[0]["title"])
				}
			}
		})
	}
}

func TestAPIController_StoryDetail(t *testing.T) {
	f := setupControllerTest(t)
	story := f.addStory(t, "fox", "3-5", "حيوانات", false, seedTime)

	w := f.get("/api/stories/1/")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 10)
	assert.NotContains(t, body, "created_at")
	assert.Equal(t, float64(story.ID), body["id"])
	assert.Equal(t, "fox", body["title"])
	assert.Equal(t, "3-5", body["age_group"])
	assert.Equal(t, false, body["is_featured"])
}

func TestAPIController_StoryDetail_NotFound(t *testing.T) {
	f := setupControllerTest(t)
	f.addStory(t, "fox", "3-5", "حيوانات", false, seedTime)

	for _, path := range []string{"/api/stories/99/", "/api/stories/abc/", "/api/stories/-3/", "/api/stories/99999999999/"} {
		w := f.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "STORY_NOT_FOUND", body["error"], path)
	}
}
