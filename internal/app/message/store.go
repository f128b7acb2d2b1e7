package message

import (
	"context"
)

// Store persists messages keyed by the unordered pair of participants.
type Store interface {
	// Append persists m and returns the stored record. Durable backends may assign a new ID.
	Append(ctx context.Context, m Message) (Message, error)

	// History returns every message exchanged between a and b, oldest first.
	History(ctx context.Context, a, b string) ([]Message, error)

	// Clear deletes the conversation between a and b and returns how many messages were removed.
	Clear(ctx context.Context, a, b string) (int, error)

	// Durable reports whether stored messages survive a restart.
	Durable() bool
}

// BlobDeleter removes attachment content when a conversation is cleared.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}
