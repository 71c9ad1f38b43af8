package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	err error
}

func (p *fakePresigner) PresignImageUpload(_ context.Context, filename, contentType string) (*storage.PresignedUpload, error) {
	if p.err != nil {
		return nil, p.err
	}
	if err := storage.ValidateImageContentType(contentType); err != nil {
		return nil, err
	}
	key := storage.StoryImageFolder + "/fixed.png"
	return &storage.PresignedUpload{
		UploadURL: "https://bucket.example/" + key + "?X-Amz-Signature=abc",
		FileURL:   "https://cdn.example/" + key,
		Key:       key,
		ExpiresAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func postPresign(t *testing.T, ctrl *UploadController, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin/uploads/presign/", ctrl.GeneratePresignedURL)

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads/presign/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadController_NotConfigured(t *testing.T) {
	w := postPresign(t, NewUploadController(nil), `{"filename":"a.png","content_type":"image/png"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "UPLOAD_NOT_CONFIGURED")
}

func TestUploadController_GeneratePresignedURL(t *testing.T) {
	w := postPresign(t, NewUploadController(&fakePresigner{}), `{"filename":"a.png","content_type":"image/png"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "stories/fixed.png", body["key"])
	assert.Equal(t, "https://cdn.example/stories/fixed.png", body["file_url"])
	assert.Contains(t, body["upload_url"], "X-Amz-Signature")
}

func TestUploadController_Errors(t *testing.T) {
	tests := []struct {
		name      string
		presigner *fakePresigner
		body      string
		wantCode  int
		wantError string
	}{
		{name: "missing fields", presigner: &fakePresigner{}, body: `{"filename":"a.png"}`, wantCode: http.StatusBadRequest, wantError: "VALIDATION_INVALID_INPUT"},
		{name: "not an image", presigner: &fakePresigner{}, body: `{"filename":"a.pdf","content_type":"application/pdf"}`, wantCode: http.StatusBadRequest, wantError: "UPLOAD_INVALID_FILE_TYPE"},
		{name: "signing fails", presigner: &fakePresigner{err: errors.New("no credentials")}, body: `{"filename":"a.png","content_type":"image/png"}`, wantCode: http.StatusInternalServerError, wantError: "UPLOAD_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postPresign(t, NewUploadController(tt.presigner), tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf("%q", tt.wantError))
		})
	}
}
