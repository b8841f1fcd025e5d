package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/lostfound-bot/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-bot/internal/http/middleware"
	"github.com/ignatzorin/lostfound-bot/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений панели модераторов.
type WSHandler struct {
	hub      *ws.Hub
	auth     middleware.TokenAuthenticator
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Пустой allowedOrigins разрешает любые origin.
func NewWSHandler(hub *ws.Hub, auth middleware.TokenAuthenticator, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &WSHandler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		common.RespondUnauthorized(c, "access токен обязателен")
		return
	}

	moderator, err := h.auth.Authenticate(rawToken)
	if err != nil {
		common.RespondUnauthorized(c, "невалидный access токен")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrader уже ответил клиенту.
		return
	}

	client := ws.NewClient(conn, h.hub, moderator)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
