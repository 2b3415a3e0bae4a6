package main

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/cmd/viewfinder/handlers"
	"github.com/wachiwi/viewfinder/cmd/viewfinder/middleware"
	"github.com/wachiwi/viewfinder/pkg/config"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

func newRouter(cfg config.Config, vf *viewfinder.Viewfinder) (*gin.Engine, error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		slog.Warn("VIEWFINDER_SESSION_SECRET not set, sessions end on restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(sessions.Sessions("viewfinder", store))

	// --- Public Routes ---
	staticSubFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create static sub-filesystem: %w", err)
	}
	router.GET("/static/*filepath", func(c *gin.Context) {
		c.FileFromFS(c.Param("filepath"), http.FS(staticSubFS))
	})

	authHandler := &handlers.AuthHandler{
		User:       cfg.User,
		Password:   cfg.Password,
		TemplateFS: templateFS,
	}
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)

	// --- Authenticated Routes ---
	authorized := router.Group("/", middleware.AuthRequired)

	pageHandler := &handlers.PageHandler{VF: vf, TemplateFS: templateFS}
	cameraHandler := &handlers.CameraHandler{VF: vf}
	galleryHandler := &handlers.GalleryHandler{Gallery: vf.Gallery()}
	statusHandler := handlers.NewStatusHandler(vf)

	authorized.GET("/", pageHandler.Index)
	authorized.POST("/logout", authHandler.Logout)
	authorized.GET("/api/status", cameraHandler.Status)
	authorized.GET("/api/devices", cameraHandler.Devices)
	authorized.GET("/api/gallery", galleryHandler.List)
	authorized.GET("/api/gallery/latest/thumbnail", galleryHandler.LatestThumbnail)
	authorized.GET("/api/gallery/:id", galleryHandler.Photo)
	authorized.POST("/api/buttons/:name", pageHandler.Button)
	authorized.GET("/ws/status", statusHandler.Serve)

	// Anything touching the camera needs a secure context.
	cam := authorized.Group("/", middleware.SecureContext)
	cam.GET("/stream", cameraHandler.Stream)
	cam.POST("/api/camera/start", cameraHandler.Start)
	cam.POST("/api/camera/stop", cameraHandler.Stop)
	cam.POST("/api/camera/switch", cameraHandler.Switch)
	cam.POST("/api/camera/zoom", cameraHandler.Zoom)
	cam.POST("/api/camera/flash", cameraHandler.Flash)
	cam.POST("/api/camera/mode", cameraHandler.Mode)
	cam.POST("/api/camera/capture", cameraHandler.Capture)
	cam.POST("/api/lifecycle/:event", cameraHandler.Lifecycle)

	return router, nil
}
