package message

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	dbc "pairchat/internal/app/db/sqlc"
)

// fakeQueries mimics the messages table closely enough to exercise PostgresStore.
type fakeQueries struct {
	mu   sync.Mutex
	rows []dbc.Message
	seq  int64
	err  error
}

func (f *fakeQueries) InsertMessage(_ context.Context, arg dbc.InsertMessageParams) (dbc.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return dbc.Message{}, f.err
	}

	f.seq++
	row := dbc.Message{
		ID:         pgtype.UUID{Bytes: uuid.New(), Valid: true},
		SenderID:   arg.SenderID,
		ReceiverID: arg.ReceiverID,
		Body:       arg.Body,
		Kind:       arg.Kind,
		FileID:     arg.FileID,
		FileUrl:    arg.FileUrl,
		FileName:   arg.FileName,
		CreatedAt:  arg.CreatedAt,
		Seq:        f.seq,
	}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeQueries) matches(row dbc.Message, a, b string) bool {
	return (row.SenderID == a && row.ReceiverID == b) || (row.SenderID == b && row.ReceiverID == a)
}

func (f *fakeQueries) ListConversation(_ context.Context, arg dbc.ListConversationParams) ([]dbc.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	var out []dbc.Message
	for _, row := range f.rows {
		if f.matches(row, arg.UserA, arg.UserB) {
			out = append(out, row)
		}
	}
	slices.SortFunc(out, func(x, y dbc.Message) int {
		if c := x.CreatedAt.Time.Compare(y.CreatedAt.Time); c != 0 {
			return c
		}
		return cmp.Compare(x.Seq, y.Seq)
	})
	return out, nil
}

func (f *fakeQueries) DeleteConversation(_ context.Context, arg dbc.DeleteConversationParams) ([]pgtype.Text, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	var fileIDs []pgtype.Text
	kept := f.rows[:0]
	for _, row := range f.rows {
		if f.matches(row, arg.UserA, arg.UserB) {
			fileIDs = append(fileIDs, row.FileID)
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return fileIDs, nil
}

func (f *fakeQueries) ListReferencedFiles(_ context.Context, fileIDs []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	var out []string
	for _, row := range f.rows {
		if row.FileID.Valid && slices.Contains(fileIDs, row.FileID.String) && !slices.Contains(out, row.FileID.String) {
			out = append(out, row.FileID.String)
		}
	}
	return out, nil
}

type recordingBlobs struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (r *recordingBlobs) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleted = append(r.deleted, key)
	return r.err
}

func TestPostgresStore(t *testing.T) {
	runStoreContract(t, func(*testing.T) Store { return NewPostgresStore(&fakeQueries{}, nil) })
}

func TestPostgresStoreAssignsRowID(t *testing.T) {
	s := NewPostgresStore(&fakeQueries{}, nil)

	stored := mustAppend(t, s, textMessage("alice", "bob", "client-id", 0))
	if stored.ID == "client-id" {
		t.Error("durable store should replace the caller id")
	}
	if _, err := uuid.Parse(stored.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", stored.ID, err)
	}
	if !s.Durable() {
		t.Error("postgres store must report durability")
	}
}

func TestPostgresStoreClearCascadesBlobs(t *testing.T) {
	ctx := context.Background()
	blobs := &recordingBlobs{err: errors.New("bucket unavailable")}
	s := NewPostgresStore(&fakeQueries{}, blobs)

	mustAppend(t, s, textMessage("alice", "bob", "plain", 0))
	mustAppend(t, s, Message{
		SenderID: "bob", ReceiverID: "alice", Kind: KindFile, CreatedAt: baseTime,
		Attachment: &Attachment{FileID: "doc.pdf", FileURL: "/api/files/doc.pdf", FileName: "doc.pdf"},
	})

	n, err := s.Clear(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Clear should absorb blob failures, got %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if !slices.Equal(blobs.deleted, []string{"doc.pdf"}) {
		t.Errorf("blob deletes = %v, want [doc.pdf]", blobs.deleted)
	}
}

func TestPostgresStoreClearKeepsSharedAttachments(t *testing.T) {
	ctx := context.Background()
	blobs := &recordingBlobs{}
	s := NewPostgresStore(&fakeQueries{}, blobs)

	shared := &Attachment{FileID: "shared.png", FileURL: "/api/files/shared.png", FileName: "shared.png"}
	mustAppend(t, s, Message{SenderID: "alice", ReceiverID: "bob", Kind: KindImage, Attachment: shared, CreatedAt: baseTime})
	mustAppend(t, s, Message{SenderID: "mallory", ReceiverID: "eve", Kind: KindImage, Attachment: shared, CreatedAt: baseTime})
	mustAppend(t, s, Message{
		SenderID: "mallory", ReceiverID: "eve", Kind: KindFile, CreatedAt: baseTime,
		Attachment: &Attachment{FileID: "own.pdf", FileURL: "/api/files/own.pdf", FileName: "own.pdf"},
	})

	if _, err := s.Clear(ctx, "mallory", "eve"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !slices.Equal(blobs.deleted, []string{"own.pdf"}) {
		t.Errorf("blob deletes = %v, want [own.pdf]", blobs.deleted)
	}

	if _, err := s.Clear(ctx, "alice", "bob"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !slices.Equal(blobs.deleted, []string{"own.pdf", "shared.png"}) {
		t.Errorf("blob deletes = %v, want [own.pdf shared.png]", blobs.deleted)
	}
}

func TestPostgresStoreWrapsFailures(t *testing.T) {
	ctx := context.Background()
	s := NewPostgresStore(&fakeQueries{err: errors.New("connection refused")}, nil)

	if _, err := s.Append(ctx, textMessage("a", "b", "x", 0)); !errors.Is(err, ErrStorage) {
		t.Errorf("Append err = %v, want ErrStorage", err)
	}
	if _, err := s.History(ctx, "a", "b"); !errors.Is(err, ErrStorage) {
		t.Errorf("History err = %v, want ErrStorage", err)
	}
	if _, err := s.Clear(ctx, "a", "b"); !errors.Is(err, ErrStorage) {
		t.Errorf("Clear err = %v, want ErrStorage", err)
	}
}
