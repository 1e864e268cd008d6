package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/models"
)

const maxFrameBytes = 64 << 10

// ChatSocket serves the chat pipeline over a WebSocket, one answer frame per
// prompt frame
type ChatSocket struct {
	handler  *Handler
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// NewChatSocket creates a WebSocket endpoint backed by h. allowedOrigins
// empty or containing "*" accepts any origin.
func NewChatSocket(h *Handler, allowedOrigins []string) *ChatSocket {
	return &ChatSocket{
		handler: h,
		tracer:  otel.Tracer("chat-websocket"),
		upgrader: websocket.Upgrader{
			CheckOrigin:      originChecker(allowedOrigins),
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// StreamChat handles WebSocket /api/v1/ws/chat
// @Summary Chat over WebSocket
// @Description Each text frame {"prompt": "..."} is answered with one frame carrying the same JSON body as POST /v1/response
// @Tags chat
// @Param token query string false "Bearer token when the auth gate is enabled"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} models.ErrorResponse
// @Router /v1/ws/chat [get]
func (s *ChatSocket) StreamChat(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "chat_websocket.stream")
	defer span.End()

	log := s.handler.logger.With(zap.String("remote_addr", c.ClientIP()))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	log.Info("chat websocket connected")
	frames := 0

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("chat websocket closed", zap.Int("frames", frames))
			} else {
				log.Warn("chat websocket read error", zap.Int("frames", frames), zap.Error(err))
			}
			span.SetAttributes(attribute.Int("ws.frames", frames))
			return
		}
		frames++

		var reply any
		if messageType != websocket.TextMessage {
			reply = models.ErrorResponse{Error: "Only text frames are supported", Code: models.ErrCodeInvalidRequest}
		} else {
			var req models.ChatRequest
			if err := json.Unmarshal(message, &req); err != nil {
				reply = models.ErrorResponse{Error: "Invalid message", Code: models.ErrCodeInvalidRequest}
			} else {
				status, body := s.handler.answer(ctx, req.Prompt)
				reply = withCode(status, body)
			}
		}

		if err := conn.WriteJSON(reply); err != nil {
			span.RecordError(err)
			log.Warn("chat websocket write error", zap.Error(err))
			return
		}
	}
}

// withCode tags error bodies with a machine-readable code, since a frame
// has no status line.
func withCode(status int, body any) any {
	e, ok := body.(models.ErrorResponse)
	if !ok {
		return body
	}
	if status == http.StatusBadRequest {
		e.Code = models.ErrCodeInvalidRequest
	} else {
		e.Code = models.ErrCodeInternalError
	}
	return e
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
