package chat

import (
	"context"
	"encoding/json"
	"testing"

	"pairchat/internal/app/message"
)

func frame(t *testing.T, typ EventType, payload any) []byte {
	t.Helper()

	raw, err := encodeEvent(typ, payload)
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	return raw
}

func newTestHub(t *testing.T) (*Hub, *message.MemoryStore) {
	t.Helper()

	store := message.NewMemoryStore()
	h := NewHub(store)
	t.Cleanup(h.Shutdown)
	return h, store
}

func TestDispatchLoginAndMessage(t *testing.T) {
	h, store := newTestHub(t)
	a, b := newPeer("a1"), newPeer("b1")

	h.Dispatch(a, "", frame(t, EventUserLogin, LoginPayload{UserID: "alice", Username: "alice"}))
	h.Dispatch(b, "", frame(t, EventUserLogin, LoginPayload{UserID: "bob", Username: "bob", Avatar: "B"}))

	if !h.Registry().IsOnline("alice") || !h.Registry().IsOnline("bob") {
		t.Fatal("both users should be online")
	}
	if id, _ := h.Registry().IdentityOf("a1"); id.Avatar != "A" {
		t.Errorf("missing avatar should be derived, got %q", id.Avatar)
	}

	h.Dispatch(a, "", frame(t, EventPrivateMessage, PrivateMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Message: "hi",
	}))

	if b.count(EventReceiveMessage) != 1 || a.count(EventMessageSent) != 1 {
		t.Fatalf("receive=%d sent=%d", b.count(EventReceiveMessage), a.count(EventMessageSent))
	}

	history, _ := store.History(context.Background(), "alice", "bob")
	if len(history) != 1 || history[0].Body != "hi" {
		t.Errorf("history = %+v", history)
	}
}

func TestDispatchAttachmentMessage(t *testing.T) {
	h, _ := newTestHub(t)
	a, b := newPeer("a1"), newPeer("b1")
	h.Dispatch(a, "", frame(t, EventUserLogin, LoginPayload{UserID: "alice", Username: "alice"}))
	h.Dispatch(b, "", frame(t, EventUserLogin, LoginPayload{UserID: "bob", Username: "bob"}))

	h.Dispatch(a, "", frame(t, EventPrivateMessage, PrivateMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Type: "audio",
		FileID: "k.webm", FileURL: "/api/files/k.webm", FileName: "voice.webm",
	}))

	got := b.events(EventReceiveMessage)
	if len(got) != 1 {
		t.Fatalf("receive_message = %d", len(got))
	}
	m := decodePayload[message.Message](t, got[0])
	if m.Kind != message.KindAudio || m.Attachment == nil || m.FileName != "voice.webm" {
		t.Errorf("message = %+v", m)
	}
}

func TestDispatchDropsForeignSender(t *testing.T) {
	h, store := newTestHub(t)
	a, b := newPeer("a1"), newPeer("b1")
	h.Dispatch(a, "", frame(t, EventUserLogin, LoginPayload{UserID: "alice", Username: "alice"}))
	h.Dispatch(b, "", frame(t, EventUserLogin, LoginPayload{UserID: "bob", Username: "bob"}))

	h.Dispatch(a, "", frame(t, EventPrivateMessage, PrivateMessagePayload{
		SenderID: "mallory", ReceiverID: "bob", Message: "spoof",
	}))

	if b.count(EventReceiveMessage) != 0 || a.count(EventMessageSent) != 0 {
		t.Error("spoofed sender must be dropped silently")
	}
	if history, _ := store.History(context.Background(), "mallory", "bob"); len(history) != 0 {
		t.Errorf("spoofed message stored: %+v", history)
	}
}

func TestDispatchRefusesLoginOtherThanToken(t *testing.T) {
	h, _ := newTestHub(t)
	p := newPeer("c1")

	h.Dispatch(p, "alice", frame(t, EventUserLogin, LoginPayload{UserID: "bob", Username: "bob"}))
	if h.Registry().IsOnline("bob") {
		t.Error("token-bound connection must not log in as another user")
	}

	h.Dispatch(p, "alice", frame(t, EventUserLogin, LoginPayload{UserID: "alice", Username: "alice"}))
	if !h.Registry().IsOnline("alice") {
		t.Error("login matching the token should succeed")
	}
}

func TestDispatchTypingUsesBoundUsername(t *testing.T) {
	h, _ := newTestHub(t)
	a, b := newPeer("a1"), newPeer("b1")
	h.Dispatch(a, "", frame(t, EventUserLogin, LoginPayload{UserID: "alice", Username: "Alice"}))
	h.Dispatch(b, "", frame(t, EventUserLogin, LoginPayload{UserID: "bob", Username: "bob"}))

	h.Dispatch(a, "", frame(t, EventTyping, TypingPayload{SenderID: "alice", ReceiverID: "bob", IsTyping: true}))

	got := b.events(EventUserTyping)
	if len(got) != 1 {
		t.Fatalf("user_typing = %d", len(got))
	}
	if p := decodePayload[UserTypingPayload](t, got[0]); p.Username != "Alice" || p.UserID != "alice" {
		t.Errorf("payload = %+v", p)
	}
}

func TestDispatchIgnoresGarbage(t *testing.T) {
	h, _ := newTestHub(t)
	p := newPeer("c1")

	h.Dispatch(p, "", []byte("not json"))
	h.Dispatch(p, "", []byte(`{"type":"unknown"}`))
	h.Dispatch(p, "", []byte(`{"type":"user_login","payload":{}}`))
	h.Dispatch(p, "", []byte(`{"type":"private_message","payload":"oops"}`))

	if len(p.frames) != 0 {
		var types []string
		for _, f := range p.frames {
			types = append(types, string(f.Type))
		}
		raw, _ := json.Marshal(types)
		t.Errorf("garbage produced responses: %s", raw)
	}
}
