package conversation

import (
	"slices"

	"pairchat/internal/app/message"
)

// EventKind names an input to State.Apply. The live kinds match the wire event names.
type EventKind string

const (
	EventReceiveMessage EventKind = "receive_message"
	EventMessageSent    EventKind = "message_sent"
	EventUserOnline     EventKind = "user_online"
	EventUserOffline    EventKind = "user_offline"
	EventOnlineUsers    EventKind = "online_users"

	// EventSelect marks a contact as the active conversation.
	EventSelect EventKind = "select"
)

// Event is one input to the reducer. Only the fields relevant to Kind are read.
type Event struct {
	Kind      EventKind
	Message   message.Message
	UserID    string
	OnlineIDs []string
}

// State is the contact list of one user together with the active conversation.
type State struct {
	CurrentUserID   string
	ActiveContactID string
	Contacts        []Preview
}

// Apply returns the state after ev. s is not modified.
func (s State) Apply(ev Event) State {
	next := State{
		CurrentUserID:   s.CurrentUserID,
		ActiveContactID: s.ActiveContactID,
		Contacts:        slices.Clone(s.Contacts),
	}

	switch ev.Kind {
	case EventReceiveMessage:
		m := ev.Message
		if m.SenderID == "" || m.ReceiverID != s.CurrentUserID {
			return next
		}
		next.patch(m.SenderID, func(p *Preview) {
			setLast(p, m)
			if m.SenderID != s.ActiveContactID {
				p.Unread++
			}
		})

	case EventMessageSent:
		m := ev.Message
		if m.ReceiverID == "" || m.SenderID != s.CurrentUserID {
			return next
		}
		next.patch(m.ReceiverID, func(p *Preview) { setLast(p, m) })

	case EventUserOnline:
		next.patch(ev.UserID, func(p *Preview) { p.IsOnline = true })

	case EventUserOffline:
		next.patch(ev.UserID, func(p *Preview) { p.IsOnline = false })

	case EventOnlineUsers:
		for i := range next.Contacts {
			next.Contacts[i].IsOnline = slices.Contains(ev.OnlineIDs, next.Contacts[i].ID)
		}

	case EventSelect:
		next.ActiveContactID = ev.UserID
		next.patch(ev.UserID, func(p *Preview) { p.Unread = 0 })
	}

	return next
}

func (s *State) patch(contactID string, fn func(*Preview)) {
	for i := range s.Contacts {
		if s.Contacts[i].ID == contactID {
			fn(&s.Contacts[i])
			return
		}
	}
}

func setLast(p *Preview, m message.Message) {
	ts := m.CreatedAt
	p.LastMessage = PreviewText(m)
	p.LastMessageTime = &ts
}
