package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"pairchat/internal/app/chat"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/limiter"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection and runs the client until it disconnects.
// An optional "token" query parameter pins the connection to the token's user.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		var tokenUserID string
		if token := r.URL.Query().Get("token"); token != "" {
			payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
			if err != nil {
				logx.Warn("WebSocket connection rejected: invalid token.", "ip", ip)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
			tokenUserID = payload.ID
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, tokenUserID)
		if !deps.Hub.Register(client) {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
				logx.Logger().Debug().Err(err).Str("ip", ip).Msg("Failed to send close frame to rejected connection")
			}
			conn.Close()
			return
		}

		go client.WritePump()

		logx.Logger().Debug().Str("connection_id", client.ID()).Msg("WebSocket connection established")

		client.ReadPump()
	}
}
