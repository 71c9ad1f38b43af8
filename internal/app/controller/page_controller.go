package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/presenter"
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/middleware"
	"github.com/ikkim/storybook-backend/internal/web"
)

// PageController renders the public HTML pages.
type PageController struct {
	catalog service.CatalogService
}

func NewPageController(catalog service.CatalogService) *PageController {
	return &PageController{catalog: catalog}
}

// index loads the lookup tables every story card needs for colors and icons.
func (ctrl *PageController) index() (*presenter.Index, error) {
	ageGroups, err := ctrl.catalog.ListAgeGroups()
	if err != nil {
		return nil, err
	}
	themes, err := ctrl.catalog.ListThemes()
	if err != nil {
		return nil, err
	}
	return presenter.NewIndex(ageGroups, themes), nil
}

// Home renders the landing page
// GET /
func (ctrl *PageController) Home(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	home, err := ctrl.catalog.HomePage()
	if err != nil {
		log.Error("Failed to load home page", err, nil)
		RenderServerError(c)
		return
	}

	idx := presenter.NewIndex(home.AgeGroups, home.Themes)
	c.HTML(http.StatusOK, web.HomePage, presenter.HomeView{
		Featured:  idx.Cards(home.FeaturedStories),
		Recent:    idx.Cards(home.RecentStories),
		AgeGroups: presenter.AgeGroupLinks(home.AgeGroups),
		Themes:    presenter.ThemeLinks(home.Themes),
	})
}

// StoryDetail renders one story
// GET /story/:id/
func (ctrl *PageController) StoryDetail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUintParam(c, "id")
	if !ok {
		RenderNotFound(c)
		return
	}

	story, err := ctrl.catalog.GetStoryByID(id)
	if err != nil {
		if errors.Is(err, service.ErrStoryNotFound) {
			RenderNotFound(c)
			return
		}
		log.Error("Failed to load story", err, map[string]interface{}{
			"story_id": id,
		})
		RenderServerError(c)
		return
	}

	idx, err := ctrl.index()
	if err != nil {
		log.Error("Failed to load catalogue index", err, nil)
		RenderServerError(c)
		return
	}

	c.HTML(http.StatusOK, web.StoryDetailPage, presenter.StoryView{Story: idx.Card(*story)})
}

// StoriesByAgeGroup renders the stories for one age group code
// GET /age-group/:code/
func (ctrl *PageController) StoriesByAgeGroup(c *gin.Context) {
	code := c.Param("code")
	ctrl.renderFiltered(c, presenter.FilterAgeGroup, code, ctrl.catalog.ListStoriesByAgeGroup)
}

// StoriesByTheme renders the stories for one theme name
// GET /theme/:name/
func (ctrl *PageController) StoriesByTheme(c *gin.Context) {
	name := c.Param("name")
	ctrl.renderFiltered(c, presenter.FilterTheme, name, ctrl.catalog.ListStoriesByTheme)
}

func (ctrl *PageController) renderFiltered(
	c *gin.Context,
	kind presenter.FilterKind,
	value string,
	list func(string) ([]model.Story, error),
) {
	log := middleware.GetLoggerFromContext(c)

	stories, err := list(value)
	if err != nil {
		log.Error("Failed to load filtered stories", err, map[string]interface{}{
			"filter_type":  kind,
			"filter_value": value,
		})
		RenderServerError(c)
		return
	}

	idx, err := ctrl.index()
	if err != nil {
		log.Error("Failed to load catalogue index", err, nil)
		RenderServerError(c)
		return
	}

	c.HTML(http.StatusOK, web.FilteredStoriesPage, presenter.FilteredView{
		FilterType:  kind,
		FilterValue: value,
		Heading:     presenter.FilteredHeading(kind, value),
		Stories:     idx.Cards(stories),
	})
}

// RenderNotFound answers 404 with the HTML error page.
func RenderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, web.NotFoundPage, nil)
}

func RenderServerError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, web.ServerErrorPage, nil)
}
