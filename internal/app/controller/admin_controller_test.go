package controller

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-admin-controller"

type adminFixture struct {
	*controllerFixture
	auth service.AdminAuthService
}

func setupAdminControllerTest(t *testing.T) *adminFixture {
	f := setupControllerTest(t)

	ageGroupRepo := repository.NewAgeGroupRepository(f.db)
	themeRepo := repository.NewThemeRepository(f.db)
	storyRepo := repository.NewStoryRepository(f.db)
	reports := service.NewReportService(ageGroupRepo, themeRepo, storyRepo)
	adminService := service.NewAdminService(ageGroupRepo, themeRepo, storyRepo, reports)
	authService := service.NewAdminAuthService(repository.NewAdminUserRepository(f.db), nil, testJWTSecret, time.Hour)

	_, err := authService.EnsureAdmin("admin", "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	ctrl := NewAdminController(adminService, authService, false)
	auth := middleware.NewAuthMiddleware(authService)

	f.router.GET("/admin/login/", ctrl.LoginPage)
	f.router.POST("/admin/login/", ctrl.Login)
	f.router.POST("/admin/logout/", ctrl.Logout)
	group := f.router.Group("/admin", auth.RequireAdmin())
	group.GET("/", ctrl.Dashboard)
	group.GET("/:entity/", ctrl.List)
	group.POST("/:entity/", ctrl.SaveList)
	group.GET("/:entity/add/", ctrl.AddPage)
	group.POST("/:entity/add/", ctrl.Create)
	group.GET("/:entity/:id/change/", ctrl.ChangePage)
	group.POST("/:entity/:id/change/", ctrl.Update)
	group.GET("/:entity/:id/delete/", ctrl.DeletePage)
	group.POST("/:entity/:id/delete/", ctrl.Delete)

	return &adminFixture{controllerFixture: f, auth: authService}
}

func (f *adminFixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	session, err := f.auth.Login("admin", "s3cret-pass")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: session.Token}
}

func (f *adminFixture) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Accept", "text/html")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func storyValues(title string) url.Values {
	return url.Values{
		"title":        {title},
		"summary":      {"A short summary"},
		"content":      {"Once upon a time"},
		"image_url":    {"https://images.example.com/a.jpg"},
		"age_group":    {"3-5"},
		"reading_time": {"6"},
		"theme":        {"حيوانات"},
		"rating":       {"5"},
	}
}

func TestAdminController_RequiresLogin(t *testing.T) {
	f := setupAdminControllerTest(t)

	w := f.do(http.MethodGet, "/admin/story/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login/?next=%2Fadmin%2Fstory%2F", w.Header().Get("Location"))
}

func TestAdminController_Login(t *testing.T) {
	f := setupAdminControllerTest(t)

	w := f.do(http.MethodPost, "/admin/login/", url.Values{
		"username": {"admin"}, "password": {"wrong"}, "next": {"/admin/story/"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter the correct username and password")
	assert.Empty(t, w.Result().Cookies())

	w = f.do(http.MethodPost, "/admin/login/", url.Values{
		"username": {"admin"}, "password": {"s3cret-pass"}, "next": {"https://evil.example/"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	w = f.do(http.MethodGet, "/admin/", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome, admin.")
}

func TestAdminController_Logout(t *testing.T) {
	f := setupAdminControllerTest(t)

	w := f.do(http.MethodPost, "/admin/logout/", url.Values{}, f.sessionCookie(t))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, middleware.AdminLoginPath, w.Header().Get("Location"))
	require.NotEmpty(t, w.Result().Cookies())
	assert.True(t, w.Result().Cookies()[0].MaxAge < 0)
}

func TestAdminController_Dashboard_ShowsOrphans(t *testing.T) {
	f := setupAdminControllerTest(t)
	f.seedCatalog(t)
	f.addStory(t, "lost-story", "42", "حيوانات", false, seedTime)

	w := f.do(http.MethodGet, "/admin/", nil, f.sessionCookie(t))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Age groups")
	assert.Contains(t, body, "lost-story")
	assert.Contains(t, body, "<code>42</code>")
}

func TestAdminController_CreateStory(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)

	w := f.do(http.MethodGet, "/admin/story/add/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="reading_time"`)

	w = f.do(http.MethodPost, "/admin/story/add/", storyValues("The Brave Fox"), cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/story/", w.Header().Get("Location"))

	stories, err := f.catalog.ListStories()
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "The Brave Fox", stories[0].Title)
	assert.False(t, stories[0].IsFeatured)
	assert.False(t, stories[0].CreatedAt.IsZero())
}

func TestAdminController_CreateStory_ValidationErrors(t *testing.T) {
	f := setupAdminControllerTest(t)

	form := storyValues(strings.Repeat("x", 101))
	form.Set("rating", "five")
	w := f.do(http.MethodPost, "/admin/story/add/", form, f.sessionCookie(t))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Ensure this value has at most 100 characters (it has 101).")
	assert.Contains(t, body, "Enter a whole number.")

	stories, err := f.catalog.ListStories()
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestAdminController_ChangeStory_KeepsCreatedAt(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)
	story := f.addStory(t, "draft", "3-5", "حيوانات", false, seedTime)

	w := f.do(http.MethodGet, "/admin/story/1/change/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="draft"`)

	form := storyValues("final")
	form.Set("is_featured", "on")
	w = f.do(http.MethodPost, "/admin/story/1/change/", form, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	updated, err := f.catalog.GetStoryByID(story.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.True(t, updated.IsFeatured)
	assert.True(t, updated.CreatedAt.Equal(seedTime))
}

func TestAdminController_UnknownRecords(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)

	for _, path := range []string{"/admin/widget/", "/admin/story/9/change/", "/admin/story/x/delete/", "/admin/widget/add/"} {
		w := f.do(http.MethodGet, path, nil, cookie)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestAdminController_ListSearchAndFilter(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)
	f.addStory(t, "Moon Rabbit", "3-5", "حيوانات", true, seedTime)
	f.addStory(t, "Sea Pirates", "6-8", "مغامرات", false, seedTime)

	w := f.do(http.MethodGet, "/admin/story/?q=moon", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Moon Rabbit")
	assert.NotContains(t, w.Body.String(), "Sea Pirates")

	w = f.do(http.MethodGet, "/admin/story/?is_featured=0", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Moon Rabbit")
	assert.Contains(t, w.Body.String(), "Sea Pirates")
}

func TestAdminController_SaveList(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)
	a := f.addStory(t, "a", "3-5", "حيوانات", true, seedTime)
	b := f.addStory(t, "b", "3-5", "حيوانات", false, seedTime)

	// unchecked box for a means not featured
	form := url.Values{
		"ids":           {"1", "2"},
		"1.rating":      {"2"},
		"2.is_featured": {"1"},
		"2.rating":      {"5"},
	}
	w := f.do(http.MethodPost, "/admin/story/", form, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/story/?saved=2", w.Header().Get("Location"))

	gotA, err := f.catalog.GetStoryByID(a.ID)
	require.NoError(t, err)
	gotB, err := f.catalog.GetStoryByID(b.ID)
	require.NoError(t, err)
	assert.False(t, gotA.IsFeatured)
	assert.Equal(t, 2, gotA.Rating)
	assert.True(t, gotB.IsFeatured)
	assert.Equal(t, 5, gotB.Rating)
}

func TestAdminController_SaveList_InvalidRowChangesNothing(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)
	f.addStory(t, "a", "3-5", "حيوانات", false, seedTime)
	f.addStory(t, "b", "3-5", "حيوانات", false, seedTime)

	form := url.Values{
		"ids":      {"1", "2"},
		"1.rating": {"3"},
		"2.rating": {"lots"},
	}
	w := f.do(http.MethodPost, "/admin/story/", form, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Enter a whole number.")

	got, err := f.catalog.GetStoryByID(1)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
}

func TestAdminController_SaveList_NotEditable(t *testing.T) {
	f := setupAdminControllerTest(t)

	w := f.do(http.MethodPost, "/admin/theme/", url.Values{"ids": {"1"}}, f.sessionCookie(t))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAdminController_DeleteThemeKeepsStories(t *testing.T) {
	f := setupAdminControllerTest(t)
	cookie := f.sessionCookie(t)
	f.seedCatalog(t)
	f.addStory(t, "fox", "3-5", "حيوانات", false, seedTime)

	w := f.do(http.MethodGet, "/admin/theme/1/delete/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "keep their value")

	w = f.do(http.MethodPost, "/admin/theme/1/delete/", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/theme/", w.Header().Get("Location"))

	var themes []model.Theme
	require.NoError(t, f.db.Find(&themes).Error)
	assert.Len(t, themes, 1)

	stories, err := f.catalog.ListStoriesByTheme("حيوانات")
	require.NoError(t, err)
	assert.Len(t, stories, 1)
}

func TestAdminController_LoginPageRedirectsLiveSession(t *testing.T) {
	f := setupAdminControllerTest(t)

	w := f.do(http.MethodGet, "/admin/login/?next=/admin/theme/", nil, f.sessionCookie(t))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/theme/", w.Header().Get("Location"))
}
