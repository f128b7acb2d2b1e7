package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pairchat/internal/app/message"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/logx"
)

// storeTimeout bounds a single persistence call made on the live path.
const storeTimeout = 5 * time.Second

// Hub owns the presence registry, the delivery router and the typing notifier, and tracks
// every open client so that Shutdown can close them.
type Hub struct {
	registry *Registry
	router   *Router
	typing   *TypingNotifier

	// clients stores every attached Client, keyed by connection id.
	clients map[string]*Client

	// mu protects clients and closed.
	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	logger zerolog.Logger
}

// NewHub constructs a hub delivering through store.
func NewHub(store message.Store) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry()

	return &Hub{
		registry: registry,
		router:   NewRouter(registry, store),
		typing:   NewTypingNotifier(registry),
		clients:  make(map[string]*Client),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logx.Component("hub"),
	}
}

// Registry exposes presence lookups to request handlers.
func (h *Hub) Registry() *Registry { return h.registry }

// Register attaches a client. It returns false once the hub is shutting down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c.ID()] = c
	h.registry.Attach(c)
	return true
}

// Unregister removes a client from presence and stops its write pump.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID())
	h.mu.Unlock()

	h.registry.Disconnect(c.ID())
	c.Close()
}

// Dispatch handles one inbound frame from p. tokenUserID is the identity proven at upgrade time,
// if any. Malformed or unauthorized frames are logged and dropped; nothing is sent back.
func (h *Hub) Dispatch(p Peer, tokenUserID string, frame []byte) {
	logger := h.logger.With().Str("connection_id", p.ID()).Logger()

	env, err := DecodeEnvelope(frame)
	if err != nil {
		logger.Warn().Err(err).Msg("Client sent invalid frame")
		return
	}

	switch env.Type {
	case EventUserLogin:
		h.handleLogin(logger, p, tokenUserID, env.Payload)

	case EventPrivateMessage:
		h.handlePrivateMessage(logger, p, tokenUserID, env.Payload)

	case EventTyping:
		h.handleTyping(logger, p, tokenUserID, env.Payload)

	default:
		logger.Warn().Str("event", string(env.Type)).Msg("Client sent unsupported event")
	}
}

func (h *Hub) handleLogin(logger zerolog.Logger, p Peer, tokenUserID string, raw json.RawMessage) {
	var payload LoginPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.UserID == "" {
		logger.Warn().Err(err).Msg("Client sent invalid user_login payload")
		return
	}

	if tokenUserID != "" && tokenUserID != payload.UserID {
		logger.Warn().Str("user_id", payload.UserID).Msg("Login for a user other than the token subject refused")
		return
	}

	avatar := payload.Avatar
	if avatar == "" {
		avatar = user.AvatarFor(payload.Username)
	}

	h.registry.Connect(p, Identity{UserID: payload.UserID, Username: payload.Username, Avatar: avatar})
	logger.Debug().Str("user_id", payload.UserID).Msg("Connection logged in")
}

// senderAllowed reports whether p may act as senderID.
func (h *Hub) senderAllowed(p Peer, tokenUserID, senderID string) bool {
	if id, ok := h.registry.IdentityOf(p.ID()); ok {
		return id.UserID == senderID
	}
	return tokenUserID == "" || tokenUserID == senderID
}

func (h *Hub) handlePrivateMessage(logger zerolog.Logger, p Peer, tokenUserID string, raw json.RawMessage) {
	var payload PrivateMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.Warn().Err(err).Msg("Client sent invalid private_message payload")
		return
	}

	if !h.senderAllowed(p, tokenUserID, payload.SenderID) {
		logger.Warn().Str("sender_id", payload.SenderID).Msg("Message with foreign senderId dropped")
		return
	}

	req := SendRequest{
		SenderID:   payload.SenderID,
		ReceiverID: payload.ReceiverID,
		Body:       payload.Message,
		Kind:       payload.Type,
	}
	if payload.FileID != "" || payload.FileURL != "" || payload.FileName != "" {
		req.Attachment = &message.Attachment{
			FileID:   payload.FileID,
			FileURL:  payload.FileURL,
			FileName: payload.FileName,
		}
	}

	ctx, cancel := context.WithTimeout(h.ctx, storeTimeout)
	defer cancel()

	msg, delivered, err := h.router.Send(ctx, p, req)
	if err != nil {
		if errors.Is(err, message.ErrInvalid) {
			logger.Warn().Err(err).Msg("Dropped invalid message")
			return
		}
		logger.Error().Err(err).Msg("Failed to send message")
		return
	}

	logger.Debug().
		Str("message_id", msg.ID).
		Str("receiver_id", msg.ReceiverID).
		Int("delivered", delivered).
		Msg("Message routed")
}

func (h *Hub) handleTyping(logger zerolog.Logger, p Peer, tokenUserID string, raw json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ReceiverID == "" {
		logger.Warn().Err(err).Msg("Client sent invalid typing payload")
		return
	}

	if !h.senderAllowed(p, tokenUserID, payload.SenderID) {
		return
	}

	var username string
	if id, ok := h.registry.IdentityOf(p.ID()); ok {
		username = id.Username
	}

	h.typing.NotifyTyping(payload.SenderID, payload.ReceiverID, username, payload.IsTyping)
}

// Shutdown closes every client and tears down the registry.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down hub...")

	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	h.registry.Close()
	h.cancel()

	h.logger.Info().Int("closed_clients", len(clients)).Msg("Hub shutdown complete.")
}
