package chat

import (
	"context"
	"errors"
	"testing"

	"pairchat/internal/app/message"
)

// failingStore simulates a durable backend that is unreachable.
type failingStore struct{}

func (failingStore) Append(context.Context, message.Message) (message.Message, error) {
	return message.Message{}, message.ErrStorage
}

func (failingStore) History(context.Context, string, string) ([]message.Message, error) {
	return nil, message.ErrStorage
}

func (failingStore) Clear(context.Context, string, string) (int, error) { return 0, message.ErrStorage }

func (failingStore) Durable() bool { return true }

func TestSendFansOutToAllReceiverConnections(t *testing.T) {
	r := NewRegistry()
	store := message.NewMemoryStore()
	rt := NewRouter(r, store)

	a1, a2 := newPeer("a1"), newPeer("a2")
	b1, b2 := newPeer("b1"), newPeer("b2")
	r.Connect(a1, alice())
	r.Connect(a2, alice())
	r.Connect(b1, bob())
	r.Connect(b2, bob())

	msg, delivered, err := rt.Send(context.Background(), a1, SendRequest{
		SenderID: "alice", ReceiverID: "bob", Body: "hi", Kind: "text",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}

	var payloads []message.Message
	for _, p := range []*fakePeer{b1, b2} {
		got := p.events(EventReceiveMessage)
		if len(got) != 1 {
			t.Fatalf("%s receive_message = %d, want 1", p.id, len(got))
		}
		payloads = append(payloads, decodePayload[message.Message](t, got[0]))
	}
	if payloads[0].ID != payloads[1].ID || payloads[0].Body != "hi" || payloads[0].ID != msg.ID {
		t.Errorf("receivers saw different payloads: %+v", payloads)
	}

	if n := a1.count(EventMessageSent); n != 1 {
		t.Errorf("origin message_sent = %d, want 1", n)
	}
	if n := a2.count(EventMessageSent); n != 0 {
		t.Errorf("other sender connection got message_sent %d times", n)
	}
	for _, p := range []*fakePeer{a1, a2} {
		if p.count(EventReceiveMessage) != 0 {
			t.Errorf("%s should not receive its own message", p.id)
		}
	}

	history, _ := store.History(context.Background(), "bob", "alice")
	if len(history) != 1 || history[0].ID != msg.ID {
		t.Errorf("history = %+v", history)
	}
}

func TestSendToOfflineReceiverIsNoop(t *testing.T) {
	r := NewRegistry()
	store := message.NewMemoryStore()
	rt := NewRouter(r, store)

	a := newPeer("a1")
	r.Connect(a, alice())

	_, delivered, err := rt.Send(context.Background(), a, SendRequest{SenderID: "alice", ReceiverID: "bob", Body: "hi"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
	if a.count(EventMessageSent) != 1 {
		t.Error("sender should still get message_sent")
	}

	history, _ := store.History(context.Background(), "alice", "bob")
	if len(history) != 1 || history[0].SenderID != "alice" || history[0].ReceiverID != "bob" {
		t.Errorf("history = %+v", history)
	}
}

func TestSendSurvivesStorageFailure(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r, failingStore{})

	a, b := newPeer("a1"), newPeer("b1")
	r.Connect(a, alice())
	r.Connect(b, bob())

	msg, delivered, err := rt.Send(context.Background(), a, SendRequest{SenderID: "alice", ReceiverID: "bob", Body: "still here"})
	if err != nil {
		t.Fatalf("storage failures must not fail delivery: %v", err)
	}
	if delivered != 1 || msg.ID == "" {
		t.Errorf("delivered = %d, id = %q", delivered, msg.ID)
	}
	if b.count(EventReceiveMessage) != 1 || a.count(EventMessageSent) != 1 {
		t.Error("live delivery should proceed with the unsaved message")
	}
}

func TestSendRejectsInvalidMessages(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r, message.NewMemoryStore())
	b := newPeer("b1")
	r.Connect(b, bob())

	tests := []SendRequest{
		{SenderID: "alice", ReceiverID: "bob", Body: "", Kind: "text"},
		{SenderID: "alice", ReceiverID: "bob", Kind: "image"},
		{SenderID: "alice", ReceiverID: "bob", Body: "x", Kind: "video"},
		{ReceiverID: "bob", Body: "x"},
	}

	for _, req := range tests {
		if _, _, err := rt.Send(context.Background(), nil, req); !errors.Is(err, message.ErrInvalid) {
			t.Errorf("Send(%+v) err = %v, want ErrInvalid", req, err)
		}
	}
	if b.count(EventReceiveMessage) != 0 {
		t.Error("invalid messages must not be delivered")
	}
}

func TestSendPreservesPerPairOrder(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r, message.NewMemoryStore())
	a, b := newPeer("a1"), newPeer("b1")
	r.Connect(a, alice())
	r.Connect(b, bob())

	for _, body := range []string{"one", "two", "three"} {
		if _, _, err := rt.Send(context.Background(), a, SendRequest{SenderID: "alice", ReceiverID: "bob", Body: body}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	got := b.events(EventReceiveMessage)
	if len(got) != 3 {
		t.Fatalf("received %d, want 3", len(got))
	}
	for i, want := range []string{"one", "two", "three"} {
		if m := decodePayload[message.Message](t, got[i]); m.Body != want {
			t.Errorf("message %d = %q, want %q", i, m.Body, want)
		}
	}
}

func TestSendImageKeepsAttachment(t *testing.T) {
	r := NewRegistry()
	store := message.NewMemoryStore()
	rt := NewRouter(r, store)

	att := &message.Attachment{FileID: "k.png", FileURL: "/api/files/k.png", FileName: "cat.png"}
	if _, _, err := rt.Send(context.Background(), nil, SendRequest{
		SenderID: "alice", ReceiverID: "bob", Kind: "image", Attachment: att,
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	history, _ := store.History(context.Background(), "bob", "alice")
	if len(history) != 1 {
		t.Fatalf("history = %+v", history)
	}
	m := history[0]
	if m.Kind != message.KindImage || m.FileURL != att.FileURL || m.FileName != att.FileName {
		t.Errorf("stored = %+v", m)
	}
}
