package handler

import (
	"net/http"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/resp"
)

// HandleListContacts returns the assembled contact list of currentUserId.
func HandleListContacts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUserID := currentUserID(r)
		if currentUserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		users, err := deps.Directory.ListExcept(r.Context(), currentUserID)
		if err != nil {
			resp.RespondError(w, r, directoryError(err))
			return
		}

		contacts, err := deps.Contacts.BuildContactList(r.Context(), users, currentUserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrHistoryUnavailable, err))
			return
		}

		resp.RespondSuccess(w, r, contacts)
	}
}
