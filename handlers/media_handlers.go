package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/media"
)

type ImageHost interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*media.Uploaded, error)
	Destroy(ctx context.Context, publicID string) (string, error)
}

type MediaHandlers struct {
	host ImageHost
	log  *zap.Logger
}

func NewMediaHandlers(host ImageHost, log *zap.Logger) *MediaHandlers {
	return &MediaHandlers{host: host, log: log}
}

// mediaError keeps the {success:false, error} shape the admin UI reads.
func (h *MediaHandlers) mediaError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		h.log.Error("Media request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": apperr.Message(err)})
}

func (h *MediaHandlers) Upload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		h.mediaError(c, apperr.Validation("No file uploaded"))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.mediaError(c, apperr.Internal("Failed to read upload", err))
		return
	}
	defer file.Close()

	uploaded, err := h.host.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.mediaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": uploaded.URL, "public_id": uploaded.PublicID})
}

type deleteImageRequest struct {
	PublicID string `json:"public_id" binding:"required"`
}

func (h *MediaHandlers) Delete(c *gin.Context) {
	var req deleteImageRequest
	if err := bindRequired(c, &req, "public_id is required"); err != nil {
		h.mediaError(c, err)
		return
	}

	result, err := h.host.Destroy(c.Request.Context(), req.PublicID)
	if err != nil {
		h.mediaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"result": result}})
}
