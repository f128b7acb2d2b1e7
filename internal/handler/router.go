/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/limiter"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

const (
	AuthRate    = 0.2
	AuthBurst   = 5
	UploadRate  = 0.5
	UploadBurst = 5
	WSRate      = 1
	WSBurst     = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// The rate limiters' sweep goroutines stop when ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	uploadLimiter := limiter.NewIPRateLimiter(rate.Limit(UploadRate), UploadBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WSRate), WSBurst)

	go func() {
		<-ctx.Done()
		authLimiter.Stop()
		uploadLimiter.Stop()
		wsLimiter.Stop()
	}()

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
		api.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))

		api.With(jwt.RequireIdentity).Get("/user/profile", HandleGetUserProfile(deps))
		api.Get("/users", HandleListUsers(deps))
		api.Get("/contacts", HandleListContacts(deps))

		api.Get("/messages/{userA}/{userB}", HandleGetHistory(deps))
		api.Delete("/messages/{userA}/{userB}", HandleClearHistory(deps))

		api.With(uploadLimiter.Middleware).Post("/upload", HandleUpload(deps))
		api.Get("/files/{fileID}", HandleDownload(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}

// HandleHealth reports liveness together with directory and presence counts. durable is set only
// when both messages and accounts survive a restart.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Directory.Count(r.Context())
		if err != nil {
			logx.Error(err, "health: directory count failed")
		}

		resp.RespondSuccess(w, r, map[string]any{
			"status":           "ok",
			"service":          "PairChat Server",
			"users":            users,
			"onlineUsers":      len(deps.Hub.Registry().OnlineUserIDs()),
			"durable":          deps.Messages.Durable() && deps.Directory.Durable(),
			"messagesDurable":  deps.Messages.Durable(),
			"directoryDurable": deps.Directory.Durable(),
		})
	}
}
