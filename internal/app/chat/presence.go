package chat

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// Peer is one live connection as seen by the registry.
type Peer interface {
	// ID returns the connection id.
	ID() string

	// Send queues a frame without blocking.
	Send(frame []byte) error
}

// Identity is the user bound to a connection after login.
type Identity struct {
	UserID   string
	Username string
	Avatar   string
}

type binding struct {
	identity Identity
	peer     Peer
}

// Registry tracks live connections and the users behind them.
//
// A user key exists in users iff at least one of its connections is bound. The first/last
// check, the map mutation and the resulting broadcast happen under one lock, so two
// connections racing for the same user produce exactly one transition event.
type Registry struct {
	mu sync.Mutex

	// every attached connection, bound or not; presence broadcasts go to all of them.
	peers map[string]Peer

	// connection id -> bound identity.
	bindings map[string]binding

	// user id -> connection id -> peer.
	users map[string]map[string]Peer

	closed bool
	logger zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		peers:    make(map[string]Peer),
		bindings: make(map[string]binding),
		users:    make(map[string]map[string]Peer),
		logger:   logx.Component("presence"),
	}
}

// Attach makes a connection reachable by presence broadcasts before it logs in.
func (r *Registry) Attach(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.peers[p.ID()] = p
}

// Connect binds the connection to id. The first connection of a user broadcasts user_online;
// every login receives the online_users snapshot. Re-binding the same connection replaces its
// identity without duplicating membership; binding it to another user detaches it from the
// previous one first.
func (r *Registry) Connect(p Peer, id Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	connID := p.ID()
	r.peers[connID] = p

	if prev, ok := r.bindings[connID]; ok && prev.identity.UserID != id.UserID {
		r.detachLocked(connID, prev.identity)
	}
	r.bindings[connID] = binding{identity: id, peer: p}

	conns, online := r.users[id.UserID]
	if !online {
		conns = make(map[string]Peer)
		r.users[id.UserID] = conns
	}
	conns[connID] = p

	if !online {
		r.broadcastLocked(EventUserOnline, PresencePayload{UserID: id.UserID, Username: id.Username, Avatar: id.Avatar})
		r.logger.Info().Str("user_id", id.UserID).Str("connection_id", connID).Msg("User online")
	}

	snapshot := make([]OnlineUser, 0, len(r.users))
	for _, uid := range r.onlineLocked() {
		snapshot = append(snapshot, OnlineUser{ID: uid, IsOnline: true})
	}
	r.unicastLocked(p, EventOnlineUsers, snapshot)
}

// Disconnect forgets the connection. Unknown connections are ignored.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.peers, connID)

	b, ok := r.bindings[connID]
	if !ok {
		return
	}
	r.detachLocked(connID, b.identity)
}

// detachLocked removes connID from its user and broadcasts user_offline when it was the last one.
func (r *Registry) detachLocked(connID string, id Identity) {
	delete(r.bindings, connID)

	conns, ok := r.users[id.UserID]
	if !ok {
		return
	}
	delete(conns, connID)

	if len(conns) == 0 {
		delete(r.users, id.UserID)
		r.broadcastLocked(EventUserOffline, PresencePayload{UserID: id.UserID})
		r.logger.Info().Str("user_id", id.UserID).Str("connection_id", connID).Msg("User offline")
	}
}

// ConnectionsFor returns the live connections of a user, empty when offline.
func (r *Registry) ConnectionsFor(userID string) []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.users[userID]
	out := make([]Peer, 0, len(conns))
	for _, p := range conns {
		out = append(out, p)
	}
	return out
}

// IdentityOf returns the identity bound to a connection.
func (r *Registry) IdentityOf(connID string) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[connID]
	return b.identity, ok
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[userID]
	return ok
}

// OnlineUserIDs returns the ids of online users in sorted order.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.onlineLocked()
}

func (r *Registry) onlineLocked() []string {
	ids := make([]string, 0, len(r.users))
	for uid := range r.users {
		ids = append(ids, uid)
	}
	slices.Sort(ids)
	return ids
}

// Close drops all state. Later calls become no-ops.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	clear(r.peers)
	clear(r.bindings)
	clear(r.users)
}

func (r *Registry) broadcastLocked(t EventType, payload any) {
	frame, err := encodeEvent(t, payload)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode presence event")
		return
	}

	for _, p := range r.peers {
		if err := p.Send(frame); err != nil {
			r.logger.Warn().Err(err).Str("connection_id", p.ID()).Str("event", string(t)).Msg("Dropped presence event")
		}
	}
}

func (r *Registry) unicastLocked(p Peer, t EventType, payload any) {
	frame, err := encodeEvent(t, payload)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode presence event")
		return
	}

	if err := p.Send(frame); err != nil {
		r.logger.Warn().Err(err).Str("connection_id", p.ID()).Str("event", string(t)).Msg("Dropped presence event")
	}
}
