package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/storage"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// blobWriteTimeout bounds a single upload to the blob store.
const blobWriteTimeout = 2 * time.Minute

// HandleUpload stores a multipart "file" part and returns the attachment reference to send
// in a message.
func HandleUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, customErr := req.FormFile(w, r, "file", chat.MaxAttachmentSize)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		defer file.Close()

		if customErr := chat.ValidateFileSize(header.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		name := filepath.Base(header.Filename)
		mimeType := chat.DetectMIME(name, header.Header.Get("Content-Type"))
		key := randx.FileKey(name)

		// The write finishes even if the uploader disconnects.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), blobWriteTimeout)
		defer cancel()

		err := deps.Blobs.Put(ctx, file, storage.Object{
			Key:         key,
			Name:        name,
			ContentType: mimeType,
			Size:        header.Size,
		})
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed, err))
			return
		}

		logx.Info("Attachment uploaded", "file_id", key, "size", header.Size, "mimetype", mimeType)

		resp.RespondSuccess(w, r, chat.Attachment{
			FileID:   key,
			URL:      chat.FileURL(key),
			Name:     name,
			MimeType: mimeType,
			Size:     header.Size,
			Kind:     chat.KindForMIME(mimeType),
		})
	}
}

// HandleDownload streams an attachment inline with its stored content type.
func HandleDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "fileID")

		body, obj, err := deps.Blobs.Open(r.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed, err))
			return
		}
		defer body.Close()

		name := obj.Name
		if name == "" {
			name = key
		}

		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if obj.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, body); err != nil {
			logx.Warn("Attachment stream interrupted", "file_id", key, "error", err.Error())
		}
	}
}
