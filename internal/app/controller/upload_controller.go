package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/storybook-backend/internal/errors"
	"github.com/ikkim/storybook-backend/internal/middleware"
	"github.com/ikkim/storybook-backend/internal/storage"
)

// ImagePresigner signs direct browser uploads of story images.
type ImagePresigner interface {
	PresignImageUpload(ctx context.Context, filename, contentType string) (*storage.PresignedUpload, error)
}

type UploadController struct {
	storage ImagePresigner
}

// NewUploadController takes a nil presigner when uploads are not configured.
func NewUploadController(presigner ImagePresigner) *UploadController {
	return &UploadController{
		storage: presigner,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GeneratePresignedURL returns a presigned PUT for a story image
// POST /admin/uploads/presign/
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.storage == nil {
		apperrors.ServiceUnavailable(c, apperrors.UploadNotConfigured, "Image uploads are not configured.")
		return
	}

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required.")
		return
	}

	upload, err := ctrl.storage.PresignImageUpload(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			log.Warn("Invalid content type", map[string]interface{}{
				"content_type": req.ContentType,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP).")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate presigned URL.")
		return
	}

	adminID, _ := middleware.GetAdminID(c)
	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"admin_id": adminID,
		"key":      upload.Key,
	})

	c.JSON(http.StatusOK, upload)
}
