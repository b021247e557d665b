package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"portal_backend/internal/logger"
	"portal_backend/internal/middleware"
	"portal_backend/pkg/apperrors"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from the given origins; "*" or an empty
// list allows any origin.
func NewWebSocketHandler(manager *WebSocketManager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(set) == 0 || set[origin]
	}
}

// ServeWS godoc
// @Summary Realtime counter relay
// @Description Upgrades to a websocket. Frames are {"event","data"} envelopes.
// @Tags realtime
// @Param token query string false "Access token (browsers cannot send headers on upgrade)"
// @Router /socket [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	// every relayed event is scoped to one organization
	orgID := middleware.GetOrganizationID(c)
	if orgID == "" {
		orgID = claims.OrganizationID
	}
	if orgID == "" {
		apperrors.HandleError(c, apperrors.ErrNoOrganization)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Websocket upgrade failed", "error", err)
		return
	}
	client := &Client{
		ID:      uuid.NewString(),
		UserID:  claims.UserID,
		OrgID:   orgID,
		Conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		Manager: h.Manager,
	}

	select {
	case h.Manager.register <- client:
	case <-h.Manager.done:
		conn.Close()
		return
	}

	// the request context is cancelled when this handler returns
	ctx := context.WithoutCancel(c.Request.Context())
	go client.writePump()
	go client.readPump(ctx)
}
