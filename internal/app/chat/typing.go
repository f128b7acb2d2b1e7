package chat

import (
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// TypingNotifier forwards ephemeral typing signals. Nothing is stored or retried.
type TypingNotifier struct {
	presence *Registry
	logger   zerolog.Logger
}

func NewTypingNotifier(presence *Registry) *TypingNotifier {
	return &TypingNotifier{presence: presence, logger: logx.Component("typing")}
}

// NotifyTyping sends user_typing to every connection of receiverID and returns how many accepted it.
func (n *TypingNotifier) NotifyTyping(senderID, receiverID, username string, isTyping bool) int {
	conns := n.presence.ConnectionsFor(receiverID)
	if len(conns) == 0 {
		return 0
	}

	frame, err := encodeEvent(EventUserTyping, UserTypingPayload{
		UserID:   senderID,
		Username: username,
		IsTyping: isTyping,
	})
	if err != nil {
		n.logger.Error().Err(err).Msg("Failed to encode user_typing")
		return 0
	}

	sent := 0
	for _, p := range conns {
		if p.Send(frame) == nil {
			sent++
		}
	}
	return sent
}
