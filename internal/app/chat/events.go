/*
Package chat contains the live side of the server: the presence registry, the delivery router,
the typing notifier, and the websocket clients and hub that feed them.

Every frame on the wire is an Envelope: {"type": <event>, "payload": <json>}.
*/
package chat

import (
	"encoding/json"
	"fmt"
)

// EventType names a live event.
type EventType string

const (
	// client -> server
	EventUserLogin      EventType = "user_login"
	EventPrivateMessage EventType = "private_message"
	EventTyping         EventType = "typing"

	// server -> client
	EventOnlineUsers    EventType = "online_users"
	EventUserOnline     EventType = "user_online"
	EventUserOffline    EventType = "user_offline"
	EventReceiveMessage EventType = "receive_message"
	EventMessageSent    EventType = "message_sent"
	EventUserTyping     EventType = "user_typing"
)

// Envelope is the frame exchanged over a connection.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LoginPayload announces the identity behind a connection.
type LoginPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// PresencePayload is broadcast on online/offline transitions.
type PresencePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// OnlineUser is one entry of the online_users snapshot.
type OnlineUser struct {
	ID       string `json:"id"`
	IsOnline bool   `json:"isOnline"`
}

// PrivateMessagePayload is a send request. Attachment fields are flat on the wire.
type PrivateMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	FileID     string `json:"fileId,omitempty"`
	FileURL    string `json:"fileUrl,omitempty"`
	FileName   string `json:"fileName,omitempty"`
}

// TypingPayload is the inbound typing signal.
type TypingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

// UserTypingPayload is forwarded to the receiver's connections.
type UserTypingPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// encodeEvent builds a wire frame.
func encodeEvent(t EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}

	frame, err := json.Marshal(Envelope{Type: t, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", t, err)
	}

	return frame, nil
}

// DecodeEnvelope parses an inbound frame.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, err
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("frame without event type")
	}
	return env, nil
}
