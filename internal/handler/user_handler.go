package handler

import (
	"net/http"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/resp"
)

// listedUser is a directory entry with its live presence.
type listedUser struct {
	user.User
	IsOnline bool `json:"isOnline"`
}

// HandleGetUserProfile returns the account behind the bearer token.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		account, err := deps.Directory.Get(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, directoryError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}

// HandleListUsers lists every account except currentUserId, flagged with presence.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUserID := currentUserID(r)

		users, err := deps.Directory.ListExcept(r.Context(), currentUserID)
		if err != nil {
			resp.RespondError(w, r, directoryError(err))
			return
		}

		registry := deps.Hub.Registry()
		out := make([]listedUser, 0, len(users))
		for _, u := range users {
			out = append(out, listedUser{User: u, IsOnline: registry.IsOnline(u.ID)})
		}

		resp.RespondSuccess(w, r, out)
	}
}

// currentUserID reads the currentUserId query parameter, falling back to the token subject.
func currentUserID(r *http.Request) string {
	if id := r.URL.Query().Get("currentUserId"); id != "" {
		return id
	}
	if identity := jwt.GetPayloadFromContext(r); identity != nil {
		return identity.ID
	}
	return ""
}
