package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/Gamma29/loot/internal/common"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local desktop shell connects from a file origin
	},
}

// wsRequest is one query frame: the command plus a correlation id the
// client uses to match the response.
type wsRequest struct {
	ID string `json:"id"`
	Query
}

// wsResponse is the reply frame for one query.
type wsResponse struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Error   *QueryError `json:"error,omitempty"`
}

// WebSocketHandler serves the command protocol over a websocket. Each
// connection gets its own rate limiter; the dispatcher serializes the
// commands themselves.
type WebSocketHandler struct {
	dispatcher *Dispatcher
	logger     arbor.ILogger

	limit rate.Limit
	burst int

	// serverInstanceID lets clients detect a server restart and drop
	// stale state.
	serverInstanceID string

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewWebSocketHandler creates a websocket query handler.
func NewWebSocketHandler(dispatcher *Dispatcher, config *common.WebSocketConfig, logger arbor.ILogger) *WebSocketHandler {
	limit := rate.Inf
	burst := 1
	if config != nil && config.RateLimit != "" {
		if interval, err := time.ParseDuration(config.RateLimit); err == nil && interval > 0 {
			limit = rate.Every(interval)
			burst = config.Burst
			if burst < 1 {
				burst = 1
			}
		} else if err != nil {
			logger.Warn().Err(err).Str("rate_limit", config.RateLimit).Msg("Failed to parse websocket rate limit, limiter disabled")
		}
	}

	h := &WebSocketHandler{
		dispatcher:       dispatcher,
		logger:           logger,
		limit:            limit,
		burst:            burst,
		serverInstanceID: uuid.New().String(),
		clients:          make(map[*websocket.Conn]struct{}),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")
	return h
}

// HandleWebSocket upgrades the connection and serves query frames until
// the client disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Int("clients", clientCount).Msg("WebSocket client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		h.logger.Debug().Msg("WebSocket client disconnected")
	}()

	// Tell the client which server instance it reached.
	hello := map[string]string{"serverInstanceId": h.serverInstanceID}
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	limiter := rate.NewLimiter(h.limit, h.burst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket read failed")
			}
			return
		}

		if err := limiter.Wait(r.Context()); err != nil {
			return
		}

		var request wsRequest
		if err := json.Unmarshal(data, &request); err != nil {
			h.writeResponse(conn, wsResponse{
				Success: false,
				Error:   &QueryError{Code: CodeBadRequest, Message: err.Error()},
			})
			continue
		}

		payload, dispatchErr := h.dispatcher.Dispatch(r.Context(), request.Query)
		response := wsResponse{ID: request.ID}
		if dispatchErr != nil {
			var queryErr *QueryError
			if !errors.As(dispatchErr, &queryErr) {
				queryErr = &QueryError{Code: CodeUnknown, Message: dispatchErr.Error()}
			}
			response.Error = queryErr
		} else {
			response.Success = true
			response.Payload = payload
		}

		h.writeResponse(conn, response)
	}
}

func (h *WebSocketHandler) writeResponse(conn *websocket.Conn, response wsResponse) {
	if err := conn.WriteJSON(response); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write websocket response")
	}
}
