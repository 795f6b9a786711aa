package http

import (
	"net/http"
	"time"

	"girlfanz/pkg/jwt"
	"girlfanz/pkg/logger"
	"girlfanz/services/chat/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const handshakeWriteWait = 5 * time.Second

type ChatHandler struct {
	hub              *hub.Hub
	jwtService       *jwt.Service
	logger           *logger.Logger
	handshakeTimeout time.Duration
}

func NewChatHandler(h *hub.Hub, jwtService *jwt.Service, logger *logger.Logger, handshakeTimeout time.Duration) *ChatHandler {
	return &ChatHandler{
		hub:              h,
		jwtService:       jwtService,
		logger:           logger,
		handshakeTimeout: handshakeTimeout,
	}
}

// HandleWebSocket godoc
// @Summary      Chat socket
// @Description  Upgrades to a WebSocket. The first frame must be {"type":"auth","token":"<jwt>"}; afterwards {"type":"message","to":"<user>","body":"..."} frames are relayed to every live connection of the recipient.
// @Tags         chat
// @Success      101  {string}  string  "Switching Protocols"
// @Router       /ws [get]
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}

	userID, ok := h.authenticate(conn)
	if !ok {
		conn.Close()
		return
	}

	h.logger.Info("WebSocket connected for user %s", userID)
	hub.NewClient(h.hub, conn, userID).Serve()
	h.logger.Info("WebSocket disconnected for user %s", userID)
}

// authenticate reads the auth frame within the handshake timeout and answers
// with auth_ok or an error frame.
func (h *ChatHandler) authenticate(conn *websocket.Conn) (string, bool) {
	conn.SetReadDeadline(time.Now().Add(h.handshakeTimeout))

	var frame hub.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		h.logger.Warn("Chat handshake failed: %v", err)
		h.reject(conn, "authentication frame expected")
		return "", false
	}
	if frame.Type != hub.TypeAuth || frame.Token == "" {
		h.reject(conn, "authentication frame expected")
		return "", false
	}

	claims, err := h.jwtService.ValidateToken(frame.Token)
	if err != nil {
		h.reject(conn, "invalid or expired token")
		return "", false
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Now().Add(handshakeWriteWait))
	if err := conn.WriteJSON(hub.Frame{Type: hub.TypeAuthOK, UserID: claims.UserID}); err != nil {
		h.logger.Warn("Failed to acknowledge chat handshake: %v", err)
		return "", false
	}
	return claims.UserID, true
}

func (h *ChatHandler) reject(conn *websocket.Conn, reason string) {
	conn.SetWriteDeadline(time.Now().Add(handshakeWriteWait))
	if err := conn.WriteJSON(hub.ErrorFrame(reason)); err != nil {
		return
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}
