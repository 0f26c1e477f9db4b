package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/territory/model"
)

func NewGameServer(ctx context.Context, config Config) *GameServer {
	s := &GameServer{
		Config:   config,
		Queue:    NewQueue(config.BackfillWait),
		Registry: NewRegistry(),
		Hub:      NewHub(),
		Upgrader: &websocket.Upgrader{},
		ctx:      ctx,
	}
	s.out = s.Hub
	s.launch = func(r *Room) {
		go r.Loop(s.ctx)
	}
	s.newRand = func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Loop sweeps the matchmaking queue so lone waiters get backfilled even
// when nobody else joins.
func (s *GameServer) Loop() {
	log.Printf("GameServer.Loop starting")
	ticker := time.NewTicker(s.Config.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			log.Printf("GameServer.Loop stopped")
			return
		case now := <-ticker.C:
			s.promote(now)
		}
	}
}

// HandleClientMessage routes one decoded intent from connId.
func (s *GameServer) HandleClientMessage(connId string, cm model.ClientMessage, now time.Time) {
	logger := log.WithFields(log.Fields{"conn": connId, "type": cm.Type})
	switch cm.Type {
	case model.IntentFindMatch:
		s.FindMatch(connId, decodeString(cm.Data), now)
	case model.IntentPlaySolo:
		s.PlaySolo(connId, decodeString(cm.Data), now)
	case model.IntentLeaveMatchmaking:
		s.LeaveMatchmaking(connId)
	case model.IntentPlayerMove:
		var mv model.MovePayload
		if err := json.Unmarshal(cm.Data, &mv); err != nil {
			logger.Debugf("ignoring move: %v", err)
			return
		}
		s.PlayerMove(connId, mv.X, mv.Y)
	case model.IntentChatMessage:
		s.Chat(connId, decodeString(cm.Data))
	case model.IntentReconnect:
		s.Reconnect(connId, decodeString(cm.Data))
	default:
		logger.Debug("ignoring unknown intent")
	}
}

func (s *GameServer) FindMatch(connId, name string, now time.Time) {
	if _, _, seated := s.Registry.Lookup(connId); seated {
		log.WithField("conn", connId).Debug("FindMatch ignored, already seated")
		return
	}
	depth, added := s.Queue.Enqueue(Entry{ConnectionId: connId, Name: playerName(name), JoinTime: now})
	if !added {
		s.out.Send(connId, queueMessage(depth))
		return
	}
	log.WithFields(log.Fields{"conn": connId, "depth": depth}).Info("FindMatch queued")
	s.notifyQueue()
	s.promote(now)
}

func (s *GameServer) PlaySolo(connId, name string, now time.Time) *Room {
	if _, _, seated := s.Registry.Lookup(connId); seated {
		log.WithField("conn", connId).Debug("PlaySolo ignored, already seated")
		return nil
	}
	if s.Queue.Dequeue(connId) {
		s.notifyQueue()
	}
	return s.createRoom([]Entry{{ConnectionId: connId, Name: playerName(name), JoinTime: now}}, now)
}

func (s *GameServer) LeaveMatchmaking(connId string) {
	if s.Queue.Dequeue(connId) {
		s.notifyQueue()
	}
}

func (s *GameServer) PlayerMove(connId string, x, y int) {
	session, room, found := s.Registry.Lookup(connId)
	if !found {
		return
	}
	room.SubmitMove(session.PlayerId, x, y)
}

func (s *GameServer) Chat(connId, text string) {
	session, room, found := s.Registry.Lookup(connId)
	if !found {
		return
	}
	room.SubmitChat(session.PlayerId, text)
}

// Reconnect moves the seat held by token onto connId. The connection
// leaves the queue first. Unknown or finished sessions are ignored and the
// client falls back to its menu.
func (s *GameServer) Reconnect(connId, token string) {
	if s.Queue.Dequeue(connId) {
		s.notifyQueue()
	}
	session, room, found := s.Registry.Rebind(token, connId)
	if !found {
		log.WithField("conn", connId).Debug("Reconnect unknown session")
		return
	}
	room.SubmitReconnect(session.PlayerId, connId)
}

// Disconnect drops connId from the queue and marks its seat offline.
func (s *GameServer) Disconnect(connId string) {
	s.LeaveMatchmaking(connId)
	s.Registry.Forget(connId)
	session, room, found := s.Registry.Lookup(connId)
	if !found {
		return
	}
	room.SubmitDisconnect(session.PlayerId, connId)
}

func (s *GameServer) HandleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]int{
			"playersInQueue": s.Queue.Len(),
			"rooms":          s.Registry.Rooms(),
		})
		if err != nil {
			log.Warnf("HandleStatus encode: %v", err)
		}
	}
}

func (s *GameServer) promote(now time.Time) {
	promoted := false
	for {
		group, backfill := s.Queue.Promote(now)
		if len(group) == 0 {
			break
		}
		promoted = true
		room := s.createRoom(group, now)
		room.log.WithFields(log.Fields{"humans": len(group), "backfill": backfill}).Info("promoted from queue")
	}
	if promoted {
		s.notifyQueue()
	}
}

// createRoom seats the humans in order, fills the remaining seats with AI,
// registers the sessions and starts the match.
func (s *GameServer) createRoom(humans []Entry, now time.Time) *Room {
	seats := make([]Seat, 0, SeatsPerRoom)
	sessions := make([]Session, 0, len(humans))
	roomId := "room_" + uuid.NewString()
	for i, e := range humans {
		seats = append(seats, Seat{PlayerId: e.ConnectionId, ConnectionId: e.ConnectionId, Name: e.Name})
		sessions = append(sessions, Session{
			ConnectionId: e.ConnectionId,
			RoomId:       roomId,
			PlayerId:     e.ConnectionId,
			SeatIndex:    i,
			Token:        s.Registry.Token(e.ConnectionId),
		})
	}
	for i := len(seats); i < SeatsPerRoom; i++ {
		seats = append(seats, Seat{PlayerId: "ai-" + uuid.NewString(), Name: fmt.Sprintf("AI %d", i+1), IsAI: true})
	}

	room := NewRoom(roomId, seats, s.Config, s.newRand(), s.out)
	room.onEnded = func(r *Room) {
		s.Registry.ClearSessions(r.Id)
	}
	room.onDisposed = func(r *Room) {
		s.Registry.Remove(r.Id)
	}
	s.Registry.Add(room, sessions)
	room.Start(now)
	s.launch(room)
	return room
}

func (s *GameServer) notifyQueue() {
	waiting := s.Queue.Waiting()
	status := queueMessage(len(waiting))
	for _, e := range waiting {
		s.out.Send(e.ConnectionId, status)
	}
}

func queueMessage(depth int) model.ServerMessage {
	return model.ServerMessage{Type: model.EventMatchmakingStatus, Data: model.MatchmakingStatus{
		Message:        queueStatus(depth),
		PlayersInQueue: depth,
	}}
}

// playerName trims and caps a requested name, inventing one when empty.
func playerName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	if name == "" {
		name = fmt.Sprintf("Player%d", rand.Intn(1000))
	}
	return name
}

func decodeString(data json.RawMessage) string {
	var s string
	if len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}
