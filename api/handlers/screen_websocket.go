package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vidgrab/vidgrab/internal/app"
	"go.uber.org/zap"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local client only
	},
}

// ScreenWebSocketHandler streams screen snapshots over WebSocket
type ScreenWebSocketHandler struct {
	shell   *app.Shell
	logger  *zap.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewScreenWebSocketHandler creates a new WebSocket handler
func NewScreenWebSocketHandler(shell *app.Shell, log *zap.Logger) *ScreenWebSocketHandler {
	return &ScreenWebSocketHandler{
		shell:   shell,
		logger:  log,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket handles GET /api/v1/screens/:platform/ws
func (h *ScreenWebSocketHandler) HandleWebSocket(c *gin.Context) {
	screen, err := h.shell.ScreenByName(c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	platform := string(screen.Spec().Platform)
	h.logger.Info("WebSocket client connected",
		zap.String("platform", platform),
		zap.String("remote_addr", c.Request.RemoteAddr))

	updates, unsubscribe := screen.Subscribe()
	defer unsubscribe()

	// Reads only detect the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, open := <-updates:
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "screen closed"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				h.logger.Debug("Failed to send snapshot", zap.String("platform", platform), zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}

		case <-done:
			h.logger.Info("WebSocket client disconnected", zap.String("platform", platform))
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *ScreenWebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
