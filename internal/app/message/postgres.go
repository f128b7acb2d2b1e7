package message

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"pairchat/internal/app/db"
	dbc "pairchat/internal/app/db/sqlc"
	"pairchat/internal/pkg/logx"
)

// conversationQuerier is the subset of generated queries the Postgres store needs.
type conversationQuerier interface {
	InsertMessage(ctx context.Context, arg dbc.InsertMessageParams) (dbc.Message, error)
	ListConversation(ctx context.Context, arg dbc.ListConversationParams) ([]dbc.Message, error)
	DeleteConversation(ctx context.Context, arg dbc.DeleteConversationParams) ([]pgtype.Text, error)
	ListReferencedFiles(ctx context.Context, fileIds []string) ([]string, error)
}

// PostgresStore persists messages in the messages table.
type PostgresStore struct {
	queries conversationQuerier
	blobs   BlobDeleter
	logger  zerolog.Logger
}

// NewPostgresStore returns a durable store. blobs may be nil, in which case clearing a
// conversation leaves attachment content in place.
func NewPostgresStore(queries conversationQuerier, blobs BlobDeleter) *PostgresStore {
	return &PostgresStore{
		queries: queries,
		blobs:   blobs,
		logger:  logx.Component("postgres_message_store"),
	}
}

// Append inserts m. The row id generated by the database replaces the caller's id.
func (s *PostgresStore) Append(ctx context.Context, m Message) (Message, error) {
	params := dbc.InsertMessageParams{
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		Kind:       string(m.Kind),
		CreatedAt:  pgtype.Timestamptz{Time: m.CreatedAt, Valid: true},
	}
	if m.Attachment != nil {
		params.FileID = optionalText(m.FileID)
		params.FileUrl = optionalText(m.FileURL)
		params.FileName = optionalText(m.FileName)
	}

	row, err := s.queries.InsertMessage(ctx, params)
	if err != nil {
		return Message{}, storageError("insert message", err)
	}

	return fromRow(row), nil
}

func (s *PostgresStore) History(ctx context.Context, a, b string) ([]Message, error) {
	rows, err := s.queries.ListConversation(ctx, dbc.ListConversationParams{UserA: a, UserB: b})
	if err != nil {
		return nil, storageError("list conversation", err)
	}

	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}

	return out, nil
}

// Clear deletes the rows first, then removes attachments no remaining message refers to.
// Blob failures are logged only.
func (s *PostgresStore) Clear(ctx context.Context, a, b string) (int, error) {
	fileIDs, err := s.queries.DeleteConversation(ctx, dbc.DeleteConversationParams{UserA: a, UserB: b})
	if err != nil {
		return 0, storageError("delete conversation", err)
	}

	keys := make([]string, 0, len(fileIDs))
	for _, id := range fileIDs {
		if id.Valid && id.String != "" && !slices.Contains(keys, id.String) {
			keys = append(keys, id.String)
		}
	}
	deleteBlobs(ctx, s.blobs, s.unreferenced(ctx, keys), s.logger)

	return len(fileIDs), nil
}

// unreferenced filters out keys still attached to messages of other conversations. When the
// lookup fails nothing is returned, so no shared blob is removed.
func (s *PostgresStore) unreferenced(ctx context.Context, keys []string) []string {
	if len(keys) == 0 || s.blobs == nil {
		return nil
	}

	inUse, err := s.queries.ListReferencedFiles(ctx, keys)
	if err != nil {
		s.logger.Warn().Err(err).Int("attachments", len(keys)).Msg("Skipping attachment cleanup, reference lookup failed")
		return nil
	}

	return slices.DeleteFunc(keys, func(k string) bool { return slices.Contains(inUse, k) })
}

func (s *PostgresStore) Durable() bool { return true }

func fromRow(row dbc.Message) Message {
	m := Message{
		ID:         db.UUIDString(row.ID),
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Body:       row.Body,
		Kind:       Kind(row.Kind),
		CreatedAt:  row.CreatedAt.Time.UTC(),
	}
	if row.FileID.Valid || row.FileUrl.Valid || row.FileName.Valid {
		m.Attachment = &Attachment{
			FileID:   row.FileID.String,
			FileURL:  row.FileUrl.String,
			FileName: row.FileName.String,
		}
	}
	return m
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// deleteBlobs removes attachment content for cleared messages, logging rather than returning failures.
func deleteBlobs(ctx context.Context, blobs BlobDeleter, keys []string, logger zerolog.Logger) {
	if blobs == nil {
		return
	}

	for _, key := range keys {
		if err := blobs.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("file_id", key).Msg("Failed to delete attachment for cleared message")
		}
	}
}
