/*
Package conversation derives the contact list shown next to the chat: one preview per contact
with the last message, its time, presence and an unread counter.

Previews are never stored. They are assembled from message history once and then patched
by live events through State.Apply.

State and Uploads model the client side of a conversation: the server builds contact lists with
Assembler, while clients drive State.Apply from live events and track attachment uploads with
Uploads. The server itself does not call them.
*/
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pairchat/internal/app/message"
	"pairchat/internal/app/user"
)

// NoMessagesYet is the preview of a conversation without history.
const NoMessagesYet = "No messages yet"

// maxConcurrentHistory bounds parallel history reads while assembling a list.
const maxConcurrentHistory = 8

// Preview is one entry of the contact list.
type Preview struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Avatar          string     `json:"avatar"`
	IsOnline        bool       `json:"isOnline"`
	LastMessage     string     `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	Unread          int        `json:"unread"`
}

// empty reports whether the entry is a candidate for decluttering.
func (p Preview) empty() bool {
	name := strings.TrimSpace(p.Username)
	unknown := name == "" || strings.EqualFold(name, "unknown")
	noHistory := p.LastMessageTime == nil && (p.LastMessage == "" || p.LastMessage == NoMessagesYet)
	return unknown || noHistory
}

// PreviewText renders the last-message line for m.
func PreviewText(m message.Message) string {
	switch m.Kind {
	case message.KindImage:
		return "Photo"
	case message.KindFile:
		if m.Attachment != nil && m.FileName != "" {
			return m.FileName
		}
		return "File"
	case message.KindAudio:
		return "Voice message"
	default:
		return m.Body
	}
}

// HistoryReader is the part of message.Store the assembler reads.
type HistoryReader interface {
	History(ctx context.Context, a, b string) ([]message.Message, error)
}

// Assembler builds contact lists.
type Assembler struct {
	history HistoryReader
	online  func(userID string) bool

	// DropEmptyLimit is how many empty or unnamed entries may be dropped from a list; 0 keeps all.
	DropEmptyLimit int
}

// NewAssembler returns an assembler. online may be nil when presence is unknown.
func NewAssembler(history HistoryReader, online func(string) bool, dropEmptyLimit int) *Assembler {
	return &Assembler{history: history, online: online, DropEmptyLimit: dropEmptyLimit}
}

// BuildContactList returns a preview per user except currentUserID, in directory order.
// A failed history read fails the whole list rather than showing a misleading empty preview.
func (a *Assembler) BuildContactList(ctx context.Context, users []user.User, currentUserID string) ([]Preview, error) {
	contacts := make([]user.User, 0, len(users))
	for _, u := range users {
		if u.ID != currentUserID {
			contacts = append(contacts, u)
		}
	}

	previews := make([]Preview, len(contacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentHistory)

	for i, u := range contacts {
		g.Go(func() error {
			history, err := a.history.History(gctx, currentUserID, u.ID)
			if err != nil {
				return fmt.Errorf("history with %s: %w", u.ID, err)
			}
			previews[i] = a.preview(u, history)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return declutter(previews, a.DropEmptyLimit), nil
}

func (a *Assembler) preview(u user.User, history []message.Message) Preview {
	p := Preview{
		ID:          u.ID,
		Username:    u.Username,
		Avatar:      u.Avatar,
		LastMessage: NoMessagesYet,
	}
	if p.Avatar == "" {
		p.Avatar = user.AvatarFor(u.Username)
	}
	if a.online != nil {
		p.IsOnline = a.online(u.ID)
	}

	if n := len(history); n > 0 {
		last := history[n-1]
		ts := last.CreatedAt
		p.LastMessage = PreviewText(last)
		p.LastMessageTime = &ts
	}

	return p
}

// declutter drops at most limit empty entries, earliest first.
func declutter(previews []Preview, limit int) []Preview {
	out := make([]Preview, 0, len(previews))
	removed := 0
	for _, p := range previews {
		if removed < limit && p.empty() {
			removed++
			continue
		}
		out = append(out, p)
	}
	return out
}
