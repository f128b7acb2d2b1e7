/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for parsing JSON and Multipart Form data, and integrates
error handling to ensure data format correctness and size constraints.
*/
package req

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"pairchat/internal/pkg/errs"
)

const (
	// MaxJSONBodySize caps JSON request bodies.
	MaxJSONBodySize int64 = 1 << 20 // 1 MB

	// MaxFormMemory defines the maximum amount of memory ParseMultipartForm keeps in RAM;
	// larger parts spill into temporary files.
	MaxFormMemory int64 = 32 << 20 // 32 MB

	// multipartOverhead is the slack allowed on top of the file limit for boundaries and headers.
	multipartOverhead int64 = 1 << 20
)

// BindJSON decodes the JSON request body into dst, rejecting unknown fields and trailing data.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// FormFile parses a multipart body limited to maxFileSize and returns the named file part.
// The caller must close the returned file.
func FormFile(w http.ResponseWriter, r *http.Request, field string, maxFileSize int64) (multipart.File, *multipart.FileHeader, *errs.CustomError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, errs.NewError(errs.ErrFileSizeTooLarge)
		}
		return nil, nil, errs.NewError(errs.ErrFormParseFailed)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, errs.NewError(errs.ErrFileMissing)
		}
		return nil, nil, errs.NewError(errs.ErrFormParseFailed)
	}

	if header.Size > maxFileSize {
		file.Close()
		return nil, nil, errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return file, header, nil
}
