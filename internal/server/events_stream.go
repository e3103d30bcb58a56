package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/events"
)

const (
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

// EventsStreamHandler streams the caller's own events over a websocket.
// Frames are JSON text by default, or msgpack binary with ?encoding=msgpack.
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates the events stream handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	if caller == nil {
		writeError(h.log, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	encode, messageType := encodeJSON, websocket.MessageText
	if r.URL.Query().Get("encoding") == "msgpack" {
		encode, messageType = encodeMsgpack, websocket.MessageBinary
	}

	// Subscribe before the upgrade so no event published after the
	// handshake completes is missed
	sub := h.bus.Subscribe(caller.ID)
	defer h.bus.Unsubscribe(sub)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	logger := h.log.With().Str("user_id", caller.ID).Logger()
	logger.Info().Msg("Client connected to event stream")

	// Clients never send data frames; CloseRead handles control frames and
	// cancels ctx when the peer goes away
	ctx := conn.CloseRead(r.Context())

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Client disconnected from event stream")
			return

		case event, ok := <-sub:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "event bus closed")
				return
			}
			data, err := encode(event)
			if err != nil {
				logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			if err := h.write(ctx, conn, messageType, data); err != nil {
				logger.Debug().Err(err).Msg("Event write failed, closing stream")
				return
			}

		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Debug().Err(err).Msg("Heartbeat failed, closing stream")
				return
			}
		}
	}
}

func (h *EventsStreamHandler) write(ctx context.Context, conn *websocket.Conn, typ websocket.MessageType, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, typ, data)
}

func encodeJSON(event events.Event) ([]byte, error) {
	return json.Marshal(event)
}

func encodeMsgpack(event events.Event) ([]byte, error) {
	return msgpack.Marshal(event)
}
