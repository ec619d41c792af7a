package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/storage"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

// 20 MB per report artifact.
const maxUploadSize = 20 << 20

// UploadHandler stores report artifacts in the blob store and hands out
// short-lived download URLs. The stored reference goes into the report's
// blob_ref field at submit time.
type UploadHandler struct {
	BaseHandler
	blobStore storage.BlobStore
}

func NewUploadHandler(blobStore storage.BlobStore, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler: NewBaseHandler(logger),
		blobStore:   blobStore,
	}
}

// UploadArtifact stores a report artifact
// @Summary Upload report artifact
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Artifact file"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) UploadArtifact(c *gin.Context) {
	if h.blobStore == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Blob storage not configured"})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file in multipart form",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File exceeds the 20 MB limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to read upload"})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Uploading report artifact", "filename", fileHeader.Filename, "size", fileHeader.Size)

	contentType := fileHeader.Header.Get("Content-Type")
	ref, err := h.blobStore.Upload(c.Request.Context(), "reports/"+userID, fileHeader.Filename, contentType, file)
	if err != nil {
		h.LogError(c, err, "Failed to store artifact")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to store artifact"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"blob_ref": ref})
}

// ResolveArtifact returns a short-lived download URL for a blob reference
// @Summary Resolve artifact URL
// @Tags uploads
// @Produce json
// @Param ref query string true "Blob reference"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /uploads/resolve [get]
func (h *UploadHandler) ResolveArtifact(c *gin.Context) {
	if h.blobStore == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Blob storage not configured"})
		return
	}

	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Query parameter 'ref' is required",
		})
		return
	}

	url, err := h.blobStore.ResolveURL(c.Request.Context(), ref, 15*time.Minute)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Artifact not found"})
			return
		}
		h.LogError(c, err, "Failed to resolve artifact URL")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to resolve artifact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
