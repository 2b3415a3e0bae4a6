package handlers

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

// Zoom presets offered on the zoom strip.
var ZoomPresets = []float64{1, 2, 3}

type PageHandler struct {
	VF         *viewfinder.Viewfinder
	TemplateFS fs.FS
}

func (h *PageHandler) Index(c *gin.Context) {
	tmpl, err := template.ParseFS(h.TemplateFS, "templates/viewfinder.html")
	if err != nil {
		slog.Error("Failed to parse viewfinder template", "error", err)
		c.String(http.StatusInternalServerError, "Failed to render page")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = tmpl.Execute(c.Writer, gin.H{
		"state": h.VF.State(),
		"modes": viewfinder.Modes,
		"zooms": ZoomPresets,
	})
	if err != nil {
		slog.Error("Template execution error", "error", err)
		c.String(http.StatusInternalServerError, "Failed to render page")
	}
}

// Button logs presses of buttons that have no server-side behaviour yet.
func (h *PageHandler) Button(c *gin.Context) {
	slog.Info("Button pressed", "button", c.Param("name"))
	c.Status(http.StatusNoContent)
}
