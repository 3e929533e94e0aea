package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/pkg/core/logging"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`              // "parse", "evaluate", "ping"
	ID      string          `json:"id,omitempty"`      // echoed in the response
	Payload json.RawMessage `json:"payload,omitempty"` // service.Request for parse and evaluate
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"` // "result", "error", "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WebSocketHandler parses expressions sent over a WebSocket connection
type WebSocketHandler struct {
	service  *service.Service
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. A nil checkOrigin
// accepts every origin.
func NewWebSocketHandler(svc *service.Service, checkOrigin func(r *http.Request) bool) *WebSocketHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketHandler{
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logging.New("frege-websocket"),
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("WebSocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// wsConn serializes writes; gorilla connections allow one concurrent writer
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.WriteJSON(resp)
}

func (h *WebSocketHandler) handleConnection(parent context.Context, raw *websocket.Conn) {
	conn := &wsConn{Conn: raw}
	defer conn.Close()

	h.logger.Debug("WebSocket connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	conn.SetReadLimit(int64(h.service.Engine().MaxInputLength())*4 + 1024)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err)
			} else {
				h.logger.Debug("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var resp WSResponse
		switch msg.Type {
		case "ping":
			resp = WSResponse{Type: "pong", ID: msg.ID}
		case "parse":
			resp = h.handleRequest(ctx, msg, h.service.Parse)
		case "evaluate":
			resp = h.handleRequest(ctx, msg, h.service.Evaluate)
		default:
			resp = errorResponse(msg.ID, mdwerror.Newf("unknown message type: %s", msg.Type).
				WithCode(mdwerror.CodeInvalidInput))
		}

		if err := conn.send(resp); err != nil {
			h.logger.Warn("WebSocket send error", "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) handleRequest(ctx context.Context, msg WSMessage, call serviceCall) WSResponse {
	var req service.Request
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return errorResponse(msg.ID, mdwerror.Wrap(err, "invalid payload").
			WithCode(mdwerror.CodeInvalidInput))
	}

	resp, err := call(ctx, req)
	if err != nil {
		return errorResponse(msg.ID, err)
	}
	return WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func errorResponse(id string, err error) WSResponse {
	payload := ErrorResponse{Error: err.Error(), Code: "internal"}
	if mdwErr, ok := mdwerror.As(err); ok {
		payload.Code = codeString(mdwErr.Code())
		payload.Details = mdwErr.Details()
	}
	return WSResponse{Type: "error", ID: id, Payload: payload}
}
