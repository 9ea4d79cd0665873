package api

import (
	"net/http"
	"sync"
	"time"

	"RateSim/internal/service/curvecache"
	xlogger "RateSim/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const wsWriteTimeout = 5 * time.Second

// CurvesWSHandler streams refreshed curve snapshots to websocket subscribers.
// Every client receives the current snapshot of each source on connect, then
// every subsequent refresh as it lands.
type CurvesWSHandler struct {
	logger   *xlogger.Logger
	cache    *curvecache.Cache
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewCurvesWSHandler(logger *xlogger.Logger, cache *curvecache.Cache) *CurvesWSHandler {
	h := &CurvesWSHandler{
		logger: logger,
		cache:  cache,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	cache.OnRefresh(h.broadcast)
	return h
}

func (h *CurvesWSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/curves", h.Subscribe)
}

func (h *CurvesWSHandler) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("ws subscriber connected",
		xlogger.String("remote", conn.RemoteAddr().String()),
		xlogger.Int("subscribers", n),
	)

	// Seed the new subscriber with whatever is already cached.
	for _, id := range h.cache.SourceIDs() {
		if snap, err := h.cache.GetOrFetch(c.Request().Context(), id); err == nil {
			h.send(conn, snap)
		}
	}

	// Reads only serve to detect the peer going away.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

// broadcast writes under the connection mutex: gorilla connections do not
// support concurrent writers.
func (h *CurvesWSHandler) broadcast(snap curvecache.Snapshot) {
	payload := snap.Model()

	var dead []*websocket.Conn
	h.mu.Lock()
	for c := range h.conns {
		_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.WriteJSON(payload); err != nil {
			dead = append(dead, c)
		}
	}
	h.mu.Unlock()

	for _, c := range dead {
		h.logger.Warn("ws write failed, dropping subscriber")
		h.drop(c)
	}
}

func (h *CurvesWSHandler) send(conn *websocket.Conn, snap curvecache.Snapshot) {
	failed := false
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		failed = conn.WriteJSON(snap.Model()) != nil
	}
	h.mu.Unlock()
	if failed {
		h.drop(conn)
	}
}

func (h *CurvesWSHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
