package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

// respondError maps viewfinder and camera failures onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var cerr *camera.Error
	switch {
	case errors.As(err, &cerr):
		c.JSON(statusOf(cerr.Category), gin.H{
			"error":    cerr.Message,
			"category": cerr.Category,
			"retry":    cerr.Retry,
		})
	case errors.Is(err, camera.ErrSwitchInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "ignored": true})
	case errors.Is(err, camera.ErrNoActiveStream), errors.Is(err, camera.ErrNoFrame):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, viewfinder.ErrInvalidZoom),
		errors.Is(err, viewfinder.ErrUnknownMode),
		errors.Is(err, viewfinder.ErrUnknownEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func statusOf(cat camera.Category) int {
	switch cat {
	case camera.CategoryInsecureContext, camera.CategoryPermissionDenied:
		return http.StatusForbidden
	case camera.CategoryDeviceNotFound:
		return http.StatusNotFound
	case camera.CategoryDeviceBusy:
		return http.StatusConflict
	case camera.CategoryCapabilityUnavailable, camera.CategoryUnsupported:
		return http.StatusNotImplemented
	case camera.CategoryConstraintUnsatisfiable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
