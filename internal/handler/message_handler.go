package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/resp"
)

func conversationParams(r *http.Request) (string, string, bool) {
	a, b := chi.URLParam(r, "userA"), chi.URLParam(r, "userB")
	return a, b, a != "" && b != ""
}

// HandleGetHistory returns the conversation between two users, oldest first.
// Store failures surface as an error instead of an empty history.
func HandleGetHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, b, ok := conversationParams(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		history, err := deps.Messages.History(r.Context(), a, b)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrHistoryUnavailable, err))
			return
		}

		resp.RespondSuccess(w, r, history)
	}
}

// HandleClearHistory deletes the conversation between two users and its attachments.
func HandleClearHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, b, ok := conversationParams(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		deleted, err := deps.Messages.Clear(r.Context(), a, b)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrHistoryUnavailable, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]int{"deletedCount": deleted})
	}
}
