package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

const writeWait = 10 * time.Second

// StatusHandler pushes the viewfinder state to the page over a websocket.
type StatusHandler struct {
	VF       *viewfinder.Viewfinder
	upgrader websocket.Upgrader
}

func NewStatusHandler(vf *viewfinder.Viewfinder) *StatusHandler {
	return &StatusHandler{
		VF: vf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *StatusHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Error upgrading websocket connection", "error", err)
		return
	}
	defer conn.Close()
	slog.Debug("Status websocket connected", "remote", c.Request.RemoteAddr)

	states, cancel := h.VF.Subscribe()
	defer cancel()

	// The page never sends anything; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			slog.Debug("Status websocket closed", "remote", c.Request.RemoteAddr)
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(s); err != nil {
				slog.Debug("Error writing to websocket", "error", err)
				return
			}
		}
	}
}
