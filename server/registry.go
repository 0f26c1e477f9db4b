package server

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps room ids to live rooms and connections to their seats.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	sessions map[string]Session
	// connection id -> private reconnect token
	tokens map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]Session),
		tokens:   make(map[string]string),
	}
}

// Add registers room together with the sessions of its human seats.
func (g *Registry) Add(room *Room, sessions []Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[room.Id] = room
	for _, s := range sessions {
		g.sessions[s.ConnectionId] = s
	}
}

func (g *Registry) Remove(roomId string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, roomId)
	g.dropSessionsLocked(roomId)
}

// ClearSessions forgets every connection seated in roomId. The room stays
// registered.
func (g *Registry) ClearSessions(roomId string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropSessionsLocked(roomId)
}

func (g *Registry) dropSessionsLocked(roomId string) {
	for connId, s := range g.sessions {
		if s.RoomId == roomId {
			delete(g.sessions, connId)
		}
	}
}

func (g *Registry) Room(roomId string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, found := g.rooms[roomId]
	return room, found
}

// Lookup resolves a connection to its session and live room.
func (g *Registry) Lookup(connId string) (Session, *Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, found := g.sessions[connId]
	if !found {
		return Session{}, nil, false
	}
	room, found := g.rooms[s.RoomId]
	if !found {
		return s, nil, false
	}
	return s, room, true
}

// Token returns the reconnect token of connId, issuing one on first use.
// Only the connection itself is told its token; player ids are public.
func (g *Registry) Token(connId string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token, found := g.tokens[connId]; found {
		return token
	}
	token := uuid.NewString()
	g.tokens[connId] = token
	return token
}

// Forget drops the token issued to a closed connection. Sessions keep
// their own copy.
func (g *Registry) Forget(connId string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.tokens, connId)
}

// Rebind moves the session holding token onto connId, so the seat answers
// to the new connection. A connection that is already seated cannot take
// over another seat.
func (g *Registry) Rebind(token, connId string) (Session, *Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token == "" {
		return Session{}, nil, false
	}
	if _, seated := g.sessions[connId]; seated {
		return Session{}, nil, false
	}
	for key, s := range g.sessions {
		if s.Token != token {
			continue
		}
		room, found := g.rooms[s.RoomId]
		if !found {
			return Session{}, nil, false
		}
		delete(g.sessions, key)
		s.ConnectionId = connId
		g.sessions[connId] = s
		return s, room, true
	}
	return Session{}, nil, false
}

func (g *Registry) Rooms() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func (g *Registry) Sessions() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}
