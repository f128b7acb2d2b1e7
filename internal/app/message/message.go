/*
Package message defines the chat message record and the Store contract shared by the
durable (Postgres, Redis) and transient (in-memory) backends.
*/
package message

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxBodyBytes bounds the text body of a single message.
const MaxBodyBytes = 5000

// Kind is the content type of a message.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
	KindAudio Kind = "audio"
)

// ErrInvalid is returned when a message fails validation.
var ErrInvalid = errors.New("invalid message")

// ErrStorage wraps every failure reported by a durable backend.
var ErrStorage = errors.New("message storage failed")

// ParseKind maps a wire value onto a Kind. The empty string is treated as text.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindText, true
	case KindText, KindImage, KindFile, KindAudio:
		return k, true
	default:
		return "", false
	}
}

// Attachment references blob store content.
type Attachment struct {
	FileID   string `json:"fileId,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// Message is an immutable chat record between two users.
type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Body       string `json:"message"`
	Kind       Kind   `json:"type"`
	*Attachment
	CreatedAt time.Time `json:"timestamp"`
}

// Validate checks the fields required for a message to be stored and delivered.
func (m Message) Validate() error {
	switch {
	case m.SenderID == "" || m.ReceiverID == "":
		return fmt.Errorf("%w: sender and receiver are required", ErrInvalid)
	case len(m.Body) > MaxBodyBytes:
		return fmt.Errorf("%w: body exceeds %d bytes", ErrInvalid, MaxBodyBytes)
	}

	switch m.Kind {
	case KindText:
		if strings.TrimSpace(m.Body) == "" && !m.HasAttachment() {
			return fmt.Errorf("%w: empty text message", ErrInvalid)
		}
	case KindImage, KindFile, KindAudio:
		if !m.HasAttachment() {
			return fmt.Errorf("%w: %s message without attachment", ErrInvalid, m.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, m.Kind)
	}

	return nil
}

// HasAttachment reports whether the message carries a retrievable attachment.
func (m Message) HasAttachment() bool {
	return m.Attachment != nil && m.FileURL != ""
}

// Involves reports whether the message belongs to the conversation between a and b.
func (m Message) Involves(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// ConversationKey orders a user pair so that (a, b) and (b, a) map to the same conversation.
func ConversationKey(a, b string) (lo, hi string) {
	if a <= b {
		return a, b
	}
	return b, a
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
