package chat

import (
	"mime"
	"path/filepath"
	"strings"

	"pairchat/internal/app/message"
	"pairchat/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the maximum allowed file size in megabytes.
	MaxAttachmentSizeMB = 10

	// MaxAttachmentSize is the maximum allowed file size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// FileURLPrefix is the path under which uploaded attachments are served.
	FileURLPrefix = "/api/files/"
)

// Attachment describes an uploaded file as returned to the uploader.
type Attachment struct {
	FileID   string       `json:"fileId"`
	URL      string       `json:"url"`
	Name     string       `json:"filename"`
	MimeType string       `json:"mimetype"`
	Size     int64        `json:"size"`
	Kind     message.Kind `json:"kind"`
}

// FileURL returns the retrieval URL for a blob key.
func FileURL(key string) string {
	return FileURLPrefix + key
}

// ValidateFileSize checks if the provided file size is within acceptable limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrFileMissing)
	}

	if fileSize > MaxAttachmentSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// DetectMIME prefers the declared content type and falls back to the file extension.
func DetectMIME(fileName, declared string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" && mt != "application/octet-stream" {
		return strings.ToLower(mt)
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}

	return "application/octet-stream"
}

// KindForMIME maps a content type onto the message kind used to send it.
func KindForMIME(mimeType string) message.Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return message.KindImage
	case strings.HasPrefix(mimeType, "audio/"):
		return message.KindAudio
	default:
		return message.KindFile
	}
}
