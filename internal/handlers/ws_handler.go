package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/auth"
	"abacus_backend/pkg/apperrors"
	"abacus_backend/ws"
)

// WSHandler upgrades authenticated clients onto the live event stream.
// Browsers cannot set headers on websocket requests, so the token is also
// accepted as a query parameter.
type WSHandler struct {
	*BaseHandler
	manager   *ws.Manager
	jwtSecret string
}

func NewWSHandler(base *BaseHandler, manager *ws.Manager, jwtSecret string) *WSHandler {
	return &WSHandler{
		BaseHandler: base,
		manager:     manager,
		jwtSecret:   jwtSecret,
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	r.GET("/ws", h.Connect)
	r.GET("/ws/stats", authMW, h.Stats)
}

func (h *WSHandler) Connect(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		header := c.GetHeader("Authorization")
		tokenStr = strings.TrimPrefix(header, "Bearer ")
	}
	if tokenStr == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Missing token"))
		return
	}

	claims, err := auth.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid token"))
		return
	}

	ws.ServeWS(h.manager, c.Writer, c.Request, claims.UserID)
}

// Stats reports the number of live websocket connections.
func (h *WSHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connections": h.manager.ConnectionCount()})
}
