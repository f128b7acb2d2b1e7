package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pairchat/internal/app/message"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
)

// SendRequest is a validated-on-send request to deliver one message.
type SendRequest struct {
	SenderID   string
	ReceiverID string
	Body       string
	Kind       string
	Attachment *message.Attachment
}

// Router persists messages and pushes them to live connections.
type Router struct {
	presence *Registry
	store    message.Store
	now      func() time.Time
	logger   zerolog.Logger
}

// NewRouter wires a router to the registry and the selected message store.
func NewRouter(presence *Registry, store message.Store) *Router {
	return &Router{
		presence: presence,
		store:    store,
		now:      time.Now,
		logger:   logx.Component("delivery"),
	}
}

// Send stores the message and fans it out: receive_message to every connection of the receiver,
// then message_sent to origin only. A failed append is logged and delivery continues with the
// unsaved message. It returns the delivered message and how many receiver connections got it.
func (rt *Router) Send(ctx context.Context, origin Peer, req SendRequest) (message.Message, int, error) {
	kind, ok := message.ParseKind(req.Kind)
	if !ok {
		return message.Message{}, 0, fmt.Errorf("%w: unknown kind %q", message.ErrInvalid, req.Kind)
	}

	createdAt := rt.now().UTC()
	msg := message.Message{
		ID:         randx.MessageID(createdAt),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
		Kind:       kind,
		Attachment: req.Attachment,
		CreatedAt:  createdAt,
	}
	if err := msg.Validate(); err != nil {
		return message.Message{}, 0, err
	}

	if stored, err := rt.store.Append(ctx, msg); err != nil {
		rt.logger.Error().Err(err).
			Str("sender_id", msg.SenderID).
			Str("receiver_id", msg.ReceiverID).
			Msg("Failed to persist message, delivering unsaved copy")
	} else {
		msg = stored
	}

	delivered := 0
	if frame, err := encodeEvent(EventReceiveMessage, msg); err != nil {
		rt.logger.Error().Err(err).Msg("Failed to encode receive_message")
	} else {
		for _, p := range rt.presence.ConnectionsFor(msg.ReceiverID) {
			if err := p.Send(frame); err != nil {
				rt.logger.Warn().Err(err).Str("connection_id", p.ID()).Msg("Dropped receive_message")
				continue
			}
			delivered++
		}
	}

	if origin != nil {
		frame, err := encodeEvent(EventMessageSent, msg)
		if err != nil {
			rt.logger.Error().Err(err).Msg("Failed to encode message_sent")
		} else if err := origin.Send(frame); err != nil {
			rt.logger.Warn().Err(err).Str("connection_id", origin.ID()).Msg("Dropped message_sent")
		}
	}

	return msg, delivered, nil
}
