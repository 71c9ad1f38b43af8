package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storybook-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLoggingTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware(), MetricsMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		if GetLoggerFromContext(c) == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, GetRequestID(c))
	})
	return router
}

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	router := setupLoggingTest()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestLoggingMiddleware_HonoursIncomingRequestID(t *testing.T) {
	router := setupLoggingTest()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "trace-123", w.Body.String())
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	router := setupLoggingTest()
	counter := metrics.HTTPRequestsTotal.WithLabelValues(unmatchedRoute, http.MethodGet, "404")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/nowhere/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_RouteTemplateLabel(t *testing.T) {
	router := setupLoggingTest()
	counter := metrics.HTTPRequestsTotal.WithLabelValues("/ping", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
