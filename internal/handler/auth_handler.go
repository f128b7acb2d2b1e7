/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"errors"
	"net/http"

	"pairchat/internal/app/directory"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

type CredentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account and signs the new user in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		newUser, err := deps.Directory.Register(r.Context(), input.Username, input.Password)
		if err != nil {
			if errors.Is(err, directory.ErrUsernameTaken) {
				logx.Warn("registration conflict: username already exists", "username", input.Username)
			}
			resp.RespondError(w, r, directoryError(err))
			return
		}

		respondWithToken(w, r, deps, http.StatusCreated, newUser)
	}
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		account, err := deps.Directory.Authenticate(r.Context(), input.Username, input.Password)
		if err != nil {
			if errors.Is(err, directory.ErrInvalidCredentials) {
				logx.Warn("login: invalid credentials", "username", input.Username)
			}
			resp.RespondError(w, r, directoryError(err))
			return
		}

		respondWithToken(w, r, deps, http.StatusOK, account)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, status int, u user.User) {
	payload := &jwt.Payload{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	if err != nil {
		logx.Error(err, "jwt generation failed", "user_id", u.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccessStatus(w, r, status, map[string]any{
		"token": token,
		"user":  u,
	})
}

// directoryError maps directory failures onto response errors.
func directoryError(err error) *errs.CustomError {
	switch {
	case errors.Is(err, directory.ErrUsernameTaken):
		return errs.NewError(errs.ErrUserAlreadyExists)
	case errors.Is(err, directory.ErrInvalidCredentials):
		return errs.NewError(errs.ErrInvalidCredentials)
	case errors.Is(err, directory.ErrUserNotFound):
		return errs.NewError(errs.ErrUserNotFound)
	case errors.Is(err, directory.ErrInvalidUsername):
		return errs.NewError(errs.ErrInvalidUsername)
	case errors.Is(err, directory.ErrInvalidPassword):
		return errs.NewError(errs.ErrInvalidPassword)
	default:
		return errs.NewError(errs.ErrDirectoryUnavailable, err)
	}
}
