package controller

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/internal/app/presenter"
	"github.com/ikkim/storybook-backend/internal/app/service"
	apperrors "github.com/ikkim/storybook-backend/internal/errors"
	"github.com/ikkim/storybook-backend/internal/middleware"
)

// APIController serves the read-only JSON catalogue.
type APIController struct {
	catalog service.CatalogService
}

func NewAPIController(catalog service.CatalogService) *APIController {
	return &APIController{catalog: catalog}
}

// parseUintParam reads an id path parameter. Values past int32 cannot name a
// row and are rejected like any other malformed id.
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 31)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// parseCountParam reads a non-negative count. Counts too large for an int32
// mean "no limit" rather than an error.
func parseCountParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return service.NoLimit, true
		}
		return 0, false
	}
	if n > math.MaxInt32 {
		return service.NoLimit, true
	}
	return int(n), true
}

// AgeGroups returns every age group
// GET /api/age-groups/
func (ctrl *APIController) AgeGroups(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ageGroups, err := ctrl.catalog.ListAgeGroups()
	if err != nil {
		log.Error("Failed to fetch age groups", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presenter.AgeGroups(ageGroups))
}

// Themes returns every theme
// GET /api/themes/
func (ctrl *APIController) Themes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	themes, err := ctrl.catalog.ListThemes()
	if err != nil {
		log.Error("Failed to fetch themes", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presenter.Themes(themes))
}

// Stories returns every story, newest first
// GET /api/stories/
func (ctrl *APIController) Stories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stories, err := ctrl.catalog.ListStories()
	if err != nil {
		log.Error("Failed to fetch stories", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presenter.Stories(stories))
}

// FeaturedStories returns the featured stories
// GET /api/stories/featured/
func (ctrl *APIController) FeaturedStories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stories, err := ctrl.catalog.ListFeaturedStories()
	if err != nil {
		log.Error("Failed to fetch featured stories", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presenter.Stories(stories))
}

// RecentStories returns at most count stories, newest first
// GET /api/stories/recent/:count/
func (ctrl *APIController) RecentStories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	count, ok := parseCountParam(c, "count")
	if !ok {
		log.Warn("Invalid recent story count", map[string]interface{}{
			"count": c.Param("count"),
		})
		apperrors.NotFound(c, apperrors.ResourceNotFound, "")
		return
	}

	stories, err := ctrl.catalog.ListRecentStories(count)
	if err != nil {
		log.Error("Failed to fetch recent stories", err, map[string]interface{}{
			"count": count,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presenter.Stories(stories))
}

// StoryDetail returns one story
// GET /api/stories/:id/
func (ctrl *APIController) StoryDetail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUintParam(c, "id")
	if !ok {
		log.Warn("Invalid story ID format", map[string]interface{}{
			"story_id": c.Param("id"),
		})
		apperrors.NotFound(c, apperrors.StoryNotFound, "")
		return
	}

	story, err := ctrl.catalog.GetStoryByID(id)
	if err != nil {
		if errors.Is(err, service.ErrStoryNotFound) {
			apperrors.NotFound(c, apperrors.StoryNotFound, "")
			return
		}
		log.Error("Failed to fetch story", err, map[string]interface{}{
			"story_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presenter.StoryDetail(*story))
}
