package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
)

type deliveryLookup interface {
	Get(ctx context.Context, id string) (domain.Delivery, error)
}

// LiveHandler streams delivery events over WebSocket.
type LiveHandler struct {
	hub        liveSubscriber
	deliveries deliveryLookup
	upgrader   websocket.Upgrader
	logger     logx.Logger

	pongWait   time.Duration
	pingPeriod time.Duration
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(logger logx.Logger, hub liveSubscriber, deliveries deliveryLookup) *LiveHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LiveHandler{
		hub:        hub,
		deliveries: deliveries,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:     logger,
		pongWait:   wsPongWait,
		pingPeriod: wsPongWait * 9 / 10,
	}
}

// Subscribe handles GET /ws/deliveries/{id}. The delivery must exist; the
// stream carries events published after the upgrade.
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := stringFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.deliveries.Get(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logx.String("delivery_id", id), logx.Err(err))
		return
	}
	sub := h.hub.Subscribe(id)
	defer sub.Close()
	defer conn.Close()

	log := h.logger.With(logx.String("delivery_id", id), logx.String("req_id", reqID(r.Context())))
	log.Debug("observer subscribed", logx.String("event", "live_subscribed"))

	gone := make(chan struct{})
	go h.readPump(conn, gone)

	ping := time.NewTicker(h.pingPeriod)
	defer ping.Stop()

	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				log.Debug("websocket write failed", logx.Err(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				log.Debug("websocket ping failed", logx.Err(err))
				return
			}
		case <-gone:
			log.Debug("observer disconnected", logx.String("event", "live_unsubscribed"))
			return
		}
	}
}

// readPump discards client frames and keeps the read deadline moving on pong.
func (h *LiveHandler) readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
