package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/cmd/viewfinder/middleware"
	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

// DefaultFrameInterval paces the MJPEG stream at about 30 fps.
const DefaultFrameInterval = 33 * time.Millisecond

type CameraHandler struct {
	VF            *viewfinder.Viewfinder
	FrameInterval time.Duration
}

type startRequest struct {
	DeviceID string `json:"deviceId"`
}

type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type modeRequest struct {
	Mode viewfinder.Mode `json:"mode"`
}

func (h *CameraHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.VF.State())
}

func (h *CameraHandler) Devices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"devices": h.VF.Devices()})
}

func (h *CameraHandler) Start(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	res, err := h.VF.Start(c.Request.Context(), middleware.OriginOf(c), req.DeviceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "state": h.VF.State()})
}

func (h *CameraHandler) Stop(c *gin.Context) {
	h.VF.Stop()
	c.JSON(http.StatusOK, h.VF.State())
}

func (h *CameraHandler) Switch(c *gin.Context) {
	res, err := h.VF.Switch(c.Request.Context(), middleware.OriginOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "state": h.VF.State()})
}

func (h *CameraHandler) Zoom(c *gin.Context) {
	var req zoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	applied, err := h.VF.Zoom(req.Zoom)
	switch {
	case errors.Is(err, camera.ErrZoomUnsupported):
		// Tracks without zoom keep the selection and carry on.
		c.JSON(http.StatusOK, gin.H{"zoom": req.Zoom, "applied": false})
	case err != nil:
		respondError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"zoom": req.Zoom, "applied": true, "value": applied})
	}
}

func (h *CameraHandler) Flash(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": h.VF.ToggleFlash()})
}

func (h *CameraHandler) Mode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.VF.SetMode(req.Mode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
}

func (h *CameraHandler) Capture(c *gin.Context) {
	photo, err := h.VF.Capture(c.Request.Context())
	if err != nil {
		slog.Error("Failed to capture photo", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *CameraHandler) Lifecycle(c *gin.Context) {
	event := c.Param("event")
	if err := h.VF.Lifecycle(c.Request.Context(), middleware.OriginOf(c), event); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream writes the live feed as MJPEG. It follows camera switches and
// keeps the connection open while the camera is restarting.
func (h *CameraHandler) Stream(c *gin.Context) {
	if !h.VF.Negotiator().Active() {
		c.String(http.StatusServiceUnavailable, "Camera not available")
		return
	}

	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "Streaming not supported")
		return
	}

	interval := h.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			track, ok := h.VF.Negotiator().VideoTrack()
			if !ok {
				continue
			}
			reader, ok := track.(camera.FrameReader)
			if !ok {
				continue
			}
			img, err := reader.ReadFrame(ctx)
			if err != nil {
				slog.Debug("Frame read failed", "error", err)
				continue
			}
			buf.Reset()
			if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
				slog.Debug("Frame encode failed", "error", err)
				continue
			}

			// Write MJPEG frame
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
			if _, err := w.Write(buf.Bytes()); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")
			flusher.Flush()
		}
	}
}
