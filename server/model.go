package server

import (
	"context"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/territory/model"
	"golang.org/x/time/rate"
)

// Broadcaster delivers outbound events to one connection. Delivery is fire
// and forget.
type Broadcaster interface {
	Send(connId string, msg model.ServerMessage)
}

type GameServer struct {
	Config   Config
	Queue    *Queue
	Registry *Registry
	Hub      *Hub
	Upgrader *websocket.Upgrader

	out     Broadcaster
	ctx     context.Context
	launch  func(r *Room)
	newRand func() *rand.Rand
}

// Seat describes who fills one slot of a new room.
type Seat struct {
	PlayerId     string
	ConnectionId string
	Name         string
	IsAI         bool
}

// Session binds a connection to its seat in a room.
type Session struct {
	ConnectionId string
	RoomId       string
	PlayerId     string
	SeatIndex    int
	Token        string
}

type Room struct {
	Id    string
	Model *model.Model

	config Config
	rng    *rand.Rand
	out    Broadcaster
	log    *log.Entry

	// player id -> connection currently bound to that seat
	conns map[string]string

	schedule  schedule
	graceEnd  *task
	startedAt time.Time
	result    *model.GameOver
	disposed  bool

	onEnded    func(r *Room)
	onDisposed func(r *Room)

	Moves       chan PlayerEvent
	Chats       chan ChatEvent
	Disconnects chan ConnectionEvent
	Reconnects  chan ConnectionEvent
	done        chan struct{}
}

type PlayerEvent struct {
	Player string
	Move   model.MovePayload
}

type ChatEvent struct {
	Player string
	Text   string
}

type ConnectionEvent struct {
	Player string
	ConnId string
}

type Connection struct {
	Id     string
	Conn   *websocket.Conn
	server *GameServer

	limiter        *rate.Limiter
	MessagesToSend chan model.ServerMessage
	done           chan struct{}
	log            *log.Entry

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}
