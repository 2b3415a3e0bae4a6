package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/pkg/capture"
)

type GalleryHandler struct {
	Gallery *capture.Gallery
}

func (h *GalleryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"photos": h.Gallery.List()})
}

func (h *GalleryHandler) LatestThumbnail(c *gin.Context) {
	photo, ok := h.Gallery.Latest()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/jpeg", photo.Thumbnail)
}

// Photo serves a stored photo, or its thumbnail with ?thumbnail=1.
func (h *GalleryHandler) Photo(c *gin.Context) {
	photo, ok := h.Gallery.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	data := photo.JPEG
	if c.Query("thumbnail") != "" {
		data = photo.Thumbnail
	}
	c.Header("Content-Disposition", `inline; filename="`+photo.ID+`.jpg"`)
	c.Data(http.StatusOK, "image/jpeg", data)
}
