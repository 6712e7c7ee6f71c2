package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// StateHandlers serves the live shell-state websocket stream
type StateHandlers struct {
	broadcaster *messaging.StateBroadcaster
	logger      *logging.ChanneledLogger
	upgrader    websocket.Upgrader
}

// NewStateHandlers creates state stream handlers with injected dependencies
func NewStateHandlers(broadcaster *messaging.StateBroadcaster, logger *logging.ChanneledLogger) *StateHandlers {
	return &StateHandlers{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin is already vetted by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetStateStream handles GET /api/v1/state/ws - upgrades to a websocket
// and relays this shell's route/auth/profile change events until the
// client disconnects.
func (h *StateHandlers) GetStateStream(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	events := h.broadcaster.AddClient(shell.ID)
	if events == nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "stream limit reached for this session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.broadcaster.RemoveClient(events, shell.ID)
		h.logger.Stream().Error("Websocket upgrade failed", "error", err.Error(), "shellId", shell.ID)
		return
	}

	h.logger.Stream().Info("State stream opened", "shellId", shell.ID, "streams", h.broadcaster.ConnectionCount(shell.ID))
	defer func() {
		h.broadcaster.RemoveClient(events, shell.ID)
		conn.Close()
		h.logger.Stream().Info("State stream closed", "shellId", shell.ID, "streams", h.broadcaster.ConnectionCount(shell.ID))
	}()

	// Reader goroutine: the client sends nothing meaningful, but reads
	// surface close frames and keep pong handling alive.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(config.StreamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case payload, open := <-events:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(config.StreamWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				h.logger.Stream().Debug("State stream write failed", "error", err.Error(), "shellId", shell.ID)
				return
			}
		case <-heartbeat.C:
			conn.SetWriteDeadline(time.Now().Add(config.StreamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
