package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

// OriginOf describes where the request came from. A TLS connection counts
// as secure, and so does X-Forwarded-Proto: https set by a proxy on the
// loopback interface.
func OriginOf(c *gin.Context) viewfinder.Origin {
	secure := c.Request.TLS != nil
	if !secure && c.GetHeader("X-Forwarded-Proto") == "https" {
		ip := net.ParseIP(c.RemoteIP())
		secure = ip != nil && ip.IsLoopback()
	}
	return viewfinder.Origin{Secure: secure, Host: c.Request.Host}
}

// SecureContext rejects camera requests that arrive over plain http from
// anywhere but localhost.
func SecureContext(c *gin.Context) {
	origin := OriginOf(c)
	err := camera.CheckEnvironment(camera.Environment{
		PlatformAvailable: true,
		Secure:            origin.Secure,
		Host:              origin.Host,
	})
	if err != nil {
		cerr := camera.Classify(err)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    cerr.Message,
			"category": cerr.Category,
			"retry":    cerr.Retry,
		})
		return
	}
	c.Next()
}
