package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

const channelWriteTimeout = 10 * time.Second

// handleChannel handles GET /ws. Each inbound message is answered with one
// analysis or error object, in order.
func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		h.logger.Debug("channel upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	id := ulid.Make().String()
	ctx := logger.WithChannelID(r.Context(), id)
	log := logger.L(ctx)

	h.metrics.AddChannels(1)
	defer h.metrics.AddChannels(-1)
	log.Info("channel opened", "client_ip", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("channel read failed", "error", err)
			}
			log.Info("channel closed")
			return
		}

		var reply any
		req, err := decodeAnalyzeRequest(data)
		if err == nil {
			reply, err = h.svc.Analyze(ctx, req)
		}
		if err != nil {
			_, body := errorBody(err)
			log.Warn("channel request failed", "code", body.Code, "error", err)
			reply = body
		}

		_ = conn.SetWriteDeadline(time.Now().Add(channelWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("channel write failed", "error", err)
			return
		}
	}
}
