package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/config"
	"github.com/ikkim/storybook-backend/internal/app/controller"
	apperrors "github.com/ikkim/storybook-backend/internal/errors"
	"github.com/ikkim/storybook-backend/internal/metrics"
	"github.com/ikkim/storybook-backend/internal/middleware"
	"github.com/ikkim/storybook-backend/internal/web"
)

type Router struct {
	pageController   *controller.PageController
	apiController    *controller.APIController
	adminController  *controller.AdminController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	pageController *controller.PageController,
	apiController *controller.APIController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		pageController:   pageController,
		apiController:    apiController,
		adminController:  adminController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.RedirectTrailingSlash = true

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Story catalogue is running",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", metrics.Handler())

	// pages
	router.GET("/", r.pageController.Home)
	router.GET("/story/:id/", r.pageController.StoryDetail)
	router.GET("/age-group/:code/", r.pageController.StoriesByAgeGroup)
	router.GET("/theme/:name/", r.pageController.StoriesByTheme)

	// read-only JSON API
	api := router.Group("/api")
	{
		api.GET("/age-groups/", r.apiController.AgeGroups)
		api.GET("/themes/", r.apiController.Themes)
		api.GET("/stories/", r.apiController.Stories)
		api.GET("/stories/featured/", r.apiController.FeaturedStories)
		api.GET("/stories/recent/:count/", r.apiController.RecentStories)
		api.GET("/stories/:id/", r.apiController.StoryDetail)
	}

	router.GET("/admin/login/", r.adminController.LoginPage)
	router.POST("/admin/login/", r.adminController.Login)
	router.POST("/admin/logout/", r.adminController.Logout)

	adminGroup := router.Group("/admin")
	adminGroup.Use(r.authMiddleware.RequireAdmin())
	{
		adminGroup.GET("/", r.adminController.Dashboard)
		adminGroup.POST("/uploads/presign/", r.uploadController.GeneratePresignedURL)

		adminGroup.GET("/:entity/", r.adminController.List)
		adminGroup.POST("/:entity/", r.adminController.SaveList)
		adminGroup.GET("/:entity/add/", r.adminController.AddPage)
		adminGroup.POST("/:entity/add/", r.adminController.Create)
		adminGroup.GET("/:entity/:id/change/", r.adminController.ChangePage)
		adminGroup.POST("/:entity/:id/change/", r.adminController.Update)
		adminGroup.GET("/:entity/:id/delete/", r.adminController.DeletePage)
		adminGroup.POST("/:entity/:id/delete/", r.adminController.Delete)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "")
			return
		}
		controller.RenderNotFound(c)
	})

	return router, nil
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
