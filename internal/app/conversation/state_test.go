package conversation

import (
	"testing"
	"time"

	"pairchat/internal/app/message"
)

func initialState() State {
	return State{
		CurrentUserID: "me",
		Contacts: []Preview{
			{ID: "bob", Username: "bob", LastMessage: NoMessagesYet},
			{ID: "carol", Username: "carol", LastMessage: NoMessagesYet},
		},
	}
}

func TestApplyReceiveBumpsUnreadUnlessActive(t *testing.T) {
	s := initialState()
	incoming := message.Message{SenderID: "bob", ReceiverID: "me", Body: "hi", Kind: message.KindText, CreatedAt: t0}

	s = s.Apply(Event{Kind: EventReceiveMessage, Message: incoming})
	s = s.Apply(Event{Kind: EventReceiveMessage, Message: incoming})
	if s.Contacts[0].Unread != 2 || s.Contacts[0].LastMessage != "hi" {
		t.Fatalf("bob = %+v", s.Contacts[0])
	}

	s = s.Apply(Event{Kind: EventSelect, UserID: "bob"})
	if s.Contacts[0].Unread != 0 || s.ActiveContactID != "bob" {
		t.Fatalf("select did not reset unread: %+v", s)
	}

	s = s.Apply(Event{Kind: EventReceiveMessage, Message: incoming})
	if s.Contacts[0].Unread != 0 {
		t.Errorf("active conversation should not accumulate unread, got %d", s.Contacts[0].Unread)
	}
}

func TestApplyIgnoresMessagesForOthers(t *testing.T) {
	s := initialState()

	next := s.Apply(Event{Kind: EventReceiveMessage, Message: message.Message{SenderID: "bob", ReceiverID: "carol", Body: "x"}})
	if next.Contacts[0].LastMessage != NoMessagesYet || next.Contacts[0].Unread != 0 {
		t.Errorf("foreign message patched state: %+v", next.Contacts[0])
	}
}

func TestApplyMessageSentUpdatesPreviewOnly(t *testing.T) {
	s := initialState()
	sent := message.Message{SenderID: "me", ReceiverID: "carol", Kind: message.KindAudio, CreatedAt: t0.Add(time.Hour)}

	s = s.Apply(Event{Kind: EventMessageSent, Message: sent})
	carol := s.Contacts[1]
	if carol.LastMessage != "Voice message" || carol.Unread != 0 || carol.LastMessageTime == nil {
		t.Errorf("carol = %+v", carol)
	}
}

func TestApplyPresence(t *testing.T) {
	s := initialState()

	s = s.Apply(Event{Kind: EventOnlineUsers, OnlineIDs: []string{"carol", "me"}})
	if s.Contacts[0].IsOnline || !s.Contacts[1].IsOnline {
		t.Fatalf("snapshot not applied: %+v", s.Contacts)
	}

	s = s.Apply(Event{Kind: EventUserOnline, UserID: "bob"})
	s = s.Apply(Event{Kind: EventUserOffline, UserID: "carol"})
	if !s.Contacts[0].IsOnline || s.Contacts[1].IsOnline {
		t.Errorf("deltas not applied: %+v", s.Contacts)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := initialState()

	_ = s.Apply(Event{Kind: EventUserOnline, UserID: "bob"})
	if s.Contacts[0].IsOnline {
		t.Error("Apply modified its receiver")
	}
}
