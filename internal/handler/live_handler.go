package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/pkg/config"
	"github.com/noah-isme/course-catalog-api/pkg/middleware/cors"
)

// LiveListingScreen is a course listing kept current by change events.
type LiveListingScreen interface {
	Watch(ctx context.Context, onUpdate func(dto.CourseListingView)) error
	View() dto.CourseListingView
}

type liveScreenRecorder interface {
	LiveScreenOpened() func()
}

// LiveHandler streams the course listing over a websocket. Each connection
// owns one live screen for its lifetime.
type LiveHandler struct {
	openListing  func() LiveListingScreen
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
	metrics      liveScreenRecorder
	logger       *zap.Logger
}

// NewLiveHandler constructs the handler. Handshakes are checked against the CORS origin list.
func NewLiveHandler(openListing func() LiveListingScreen, wsCfg config.WebsocketConfig, origins cors.OriginSet, metrics liveScreenRecorder, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if wsCfg.WriteTimeout <= 0 {
		wsCfg.WriteTimeout = 10 * time.Second
	}
	if wsCfg.PingInterval <= 0 {
		wsCfg.PingInterval = 30 * time.Second
	}
	return &LiveHandler{
		openListing: openListing,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.Allows(origin)
			},
		},
		writeTimeout: wsCfg.WriteTimeout,
		pingInterval: wsCfg.PingInterval,
		metrics:      metrics,
		logger:       logger,
	}
}

// Stream godoc
// @Summary Live course listing
// @Description Upgrades to a websocket and pushes the course listing view after every reload.
// @Tags Courses
// @Success 101 {object} dto.CourseListingView
// @Router /courses/live [get]
func (h *LiveHandler) Stream(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	if h.metrics != nil {
		closed := h.metrics.LiveScreenOpened()
		defer closed()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Only the newest view matters; an unsent older one is replaced.
	views := make(chan dto.CourseListingView, 1)
	publish := func(view dto.CourseListingView) {
		for {
			select {
			case views <- view:
				return
			default:
			}
			select {
			case <-views:
			default:
			}
		}
	}

	go h.readLoop(ws, cancel)
	go h.writeLoop(ctx, ws, views, cancel)

	screen := h.openListing()
	// clients see the loading state until the first load commits, which never
	// happens while no student is active
	publish(screen.View())
	if err := screen.Watch(ctx, publish); err != nil && ctx.Err() == nil {
		h.logger.Warn("live listing stopped", zap.Error(err))
	}
}

// readLoop drains client frames so control messages are processed and a
// closed connection is noticed.
func (h *LiveHandler) readLoop(ws *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	ws.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.logger.Debug("live connection closed", zap.Error(err))
			return
		}
	}
}

func (h *LiveHandler) writeLoop(ctx context.Context, ws *websocket.Conn, views <-chan dto.CourseListingView, cancel context.CancelFunc) {
	defer cancel()
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ws.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case view := <-views:
			ws.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := ws.WriteJSON(view); err != nil {
				// a write deadline timeout leaves the connection unusable
				h.logger.Debug("live write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
