package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication credentials were not provided."
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "Not found."
	}
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func ServiceUnavailable(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "A server error occurred. Please try again later."
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError is the body for rejected input, with per-field messages.
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: "Please correct the errors below.",
		Fields:  fields,
	})
}
