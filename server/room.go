package server

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/territory/model"
)

const roomInbox = 64

// NewRoom builds a room in the initializing phase: every seat gets its
// corner and colour, takes its start cell, and the first resources are
// laid out.
func NewRoom(id string, seats []Seat, config Config, rng *rand.Rand, out Broadcaster) *Room {
	m := model.NewEmptyModel(GridCols, GridRows)
	m.Timer = MatchSeconds
	m.Phase = model.PhaseInitializing

	r := &Room{
		Id:          id,
		Model:       m,
		config:      config,
		rng:         rng,
		out:         out,
		log:         log.WithField("room", id),
		conns:       make(map[string]string),
		Moves:       make(chan PlayerEvent, roomInbox),
		Chats:       make(chan ChatEvent, roomInbox),
		Disconnects: make(chan ConnectionEvent, roomInbox),
		Reconnects:  make(chan ConnectionEvent, roomInbox),
		done:        make(chan struct{}),
	}

	for i, seat := range seats {
		if i >= SeatsPerRoom {
			r.log.Warnf("NewRoom dropping seat %d, room is full", i)
			break
		}
		p := model.NewPlayer(seat.PlayerId, seat.Name, seat.IsAI)
		p.Color = PlayerColors[i]
		p.StartPosition = StartPositions[i]
		p.ResourceCount = StartingResources
		m.AddPlayer(p)
		if !seat.IsAI {
			r.conns[p.Id] = seat.ConnectionId
		}
		Capture(m, p.Id, p.StartPosition.X, p.StartPosition.Y, true)
	}

	placed := r.generateResources(InitialResourceCount)
	r.log.WithField("resources", placed).Info("NewRoom created")
	return r
}

// Start sends matchFound to the seated humans and begins the match.
func (r *Room) Start(now time.Time) {
	if r.Model.Phase != model.PhaseInitializing {
		return
	}
	found := model.ServerMessage{Type: model.EventMatchFound, Data: r.Model.Snapshot()}
	r.publish(found)

	r.Model.Phase = model.PhaseRunning
	r.startedAt = now
	r.publish(model.ServerMessage{Type: model.EventGameStarted})
	r.log.Info("Room.Start running")
}

// Loop is the room's single serialization point: inbound moves, chat,
// connection changes and the clock are all applied from here.
func (r *Room) Loop(ctx context.Context) {
	r.log.Info("Room.Loop start")
	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Room.Loop cancelled")
			return
		case <-r.done:
			r.log.Info("Room.Loop disposed")
			return
		case pe := <-r.Moves:
			r.handleMove(pe.Player, pe.Move.X, pe.Move.Y)
		case ce := <-r.Chats:
			r.chat(ce.Player, ce.Text, time.Now())
		case ev := <-r.Disconnects:
			r.disconnect(ev.Player, ev.ConnId, time.Now())
		case ev := <-r.Reconnects:
			r.reconnect(ev.Player, ev.ConnId)
		case now := <-ticker.C:
			r.beat(now)
		}
	}
}

func (r *Room) SubmitMove(player string, x, y int) {
	select {
	case r.Moves <- PlayerEvent{Player: player, Move: model.MovePayload{X: x, Y: y}}:
	case <-r.done:
	default:
		r.log.Warn("Dropping move, Room.Moves FULL")
	}
}

func (r *Room) SubmitChat(player, text string) {
	select {
	case r.Chats <- ChatEvent{Player: player, Text: text}:
	case <-r.done:
	default:
		r.log.Warn("Dropping chat, Room.Chats FULL")
	}
}

func (r *Room) SubmitDisconnect(player, connId string) {
	select {
	case r.Disconnects <- ConnectionEvent{Player: player, ConnId: connId}:
	case <-r.done:
	default:
		r.log.Warn("Dropping disconnect, Room.Disconnects FULL")
	}
}

func (r *Room) SubmitReconnect(player, connId string) {
	select {
	case r.Reconnects <- ConnectionEvent{Player: player, ConnId: connId}:
	case <-r.done:
	default:
		r.log.Warn("Dropping reconnect, Room.Reconnects FULL")
	}
}

// beat advances the room clock: due timed transitions first, then one
// simulation tick while running.
func (r *Room) beat(now time.Time) {
	for _, name := range r.schedule.run(now) {
		r.log.WithField("task", name).Debug("Room.beat fired")
	}
	if r.Model.Phase == model.PhaseRunning {
		r.tick(now)
	}
}

func (r *Room) tick(now time.Time) {
	m := r.Model
	m.Timer--

	for _, p := range m.Seated() {
		if p.Connected {
			p.ResourceCount += p.Territories.Size() / 2
		}
	}

	if r.rng.Float64() < ResourceSpawnChance && len(m.Resources) < MaxResources {
		r.generateResources(1)
	}

	for _, p := range m.Seated() {
		if p.IsAI && p.Connected {
			r.aiTurn(p)
		}
	}

	r.broadcastState()

	if m.Timer <= 0 {
		r.end(now)
	}
}

// applyMove validates a move for a running match and resolves it. Humans
// and AI seats both come through here.
func (r *Room) applyMove(playerId string, x, y int) CaptureOutcome {
	m := r.Model
	if m.Phase != model.PhaseRunning || !m.InBounds(x, y) {
		return CaptureNone
	}
	p, found := m.Players[playerId]
	if !found || !p.Connected {
		return CaptureNone
	}
	if !p.Borders(x, y) {
		return CaptureNone
	}
	return Capture(m, playerId, x, y, false)
}

func (r *Room) handleMove(playerId string, x, y int) CaptureOutcome {
	outcome := r.applyMove(playerId, x, y)
	if outcome.Applied() {
		r.log.WithFields(log.Fields{"player": playerId, "x": x, "y": y, "outcome": outcome.Name()}).Debug("Room.handleMove")
		r.broadcastState()
	}
	return outcome
}

func (r *Room) chat(playerId, text string, now time.Time) {
	p, found := r.Model.Players[playerId]
	if !found {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.publish(model.ServerMessage{Type: model.EventChatMessage, Data: model.ChatMessage{
		PlayerName: p.Name,
		Message:    text,
		Color:      p.Color,
		Timestamp:  now.UnixMilli(),
	}})
}

// disconnect marks the seat offline. A connection that no longer owns the
// seat (the player already reconnected elsewhere) is ignored.
func (r *Room) disconnect(playerId, connId string, now time.Time) {
	p, found := r.Model.Players[playerId]
	if !found || p.IsAI || !p.Connected || r.conns[playerId] != connId {
		return
	}
	p.Connected = false
	r.log.WithField("player", playerId).Info("Room.disconnect")
	r.broadcastState()

	if r.humansConnected() == 0 && r.graceEnd == nil && r.Model.Phase != model.PhaseEnded {
		r.graceEnd = r.schedule.after(now, r.config.DisconnectGrace, "grace-end", func(at time.Time) {
			r.graceEnd = nil
			r.end(at)
		})
	}
}

func (r *Room) reconnect(playerId, connId string) {
	p, found := r.Model.Players[playerId]
	if !found || p.IsAI {
		return
	}
	r.conns[playerId] = connId
	p.Connected = true
	if r.graceEnd != nil {
		r.graceEnd.cancel()
		r.graceEnd = nil
	}
	r.log.WithFields(log.Fields{"player": playerId, "conn": connId}).Info("Room.reconnect")
	r.out.Send(connId, model.ServerMessage{Type: model.EventReconnected, Data: r.Model.Snapshot()})
	r.broadcastState()
}

// end finishes the match once; later calls are no-ops.
func (r *Room) end(now time.Time) {
	if r.Model.Phase == model.PhaseEnded {
		return
	}
	r.Model.Phase = model.PhaseEnded
	if r.graceEnd != nil {
		r.graceEnd.cancel()
		r.graceEnd = nil
	}

	board := r.standings()
	result := model.GameOver{
		Leaderboard: board,
		FinalStats: model.FinalStats{
			TotalTurns:         MatchSeconds - r.Model.Timer,
			ResourcesRemaining: len(r.Model.Resources),
			TotalTerritories:   r.Model.TotalTerritories(),
		},
	}
	if len(board) > 0 {
		result.Winner = board[0]
	}
	r.result = &result
	r.publish(model.ServerMessage{Type: model.EventGameOver, Data: result})
	r.log.WithFields(log.Fields{
		"winner":  result.Winner.Name,
		"score":   result.Winner.FinalScore,
		"elapsed": now.Sub(r.startedAt),
	}).Info("Room.end")

	if r.onEnded != nil {
		r.onEnded(r)
	}
	r.schedule.after(now, r.config.DisposalDelay, "dispose", func(time.Time) {
		r.dispose()
	})
}

func (r *Room) dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	close(r.done)
	r.log.Info("Room.dispose")
	if r.onDisposed != nil {
		r.onDisposed(r)
	}
}

// standings ranks players by final score; ties keep seat order.
func (r *Room) standings() []model.LeaderboardEntry {
	board := make([]model.LeaderboardEntry, 0, len(r.Model.PlayerKeys))
	for _, p := range r.Model.Seated() {
		territories := p.Territories.Size()
		board = append(board, model.LeaderboardEntry{
			Id:            p.Id,
			Name:          p.Name,
			Color:         p.Color,
			Score:         p.Score,
			Territories:   territories,
			ResourceCount: p.ResourceCount,
			FinalScore:    p.Score + territories*5 + p.ResourceCount/10,
			IsAI:          p.IsAI,
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].FinalScore > board[j].FinalScore
	})
	return board
}

// generateResources places up to count resources on empty cells and
// returns how many fit.
func (r *Room) generateResources(count int) int {
	placed := 0
	for i := 0; i < count; i++ {
		for attempt := 0; attempt < PlacementAttempts; attempt++ {
			x, y := r.rng.Intn(r.Model.Cols), r.rng.Intn(r.Model.Rows)
			if r.Model.PlaceResource(x, y, ResourceValue) {
				placed++
				break
			}
		}
	}
	return placed
}

func (r *Room) humansConnected() int {
	n := 0
	for _, p := range r.Model.Players {
		if !p.IsAI && p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) broadcastState() {
	r.publish(model.ServerMessage{Type: model.EventGameState, Data: r.Model.Snapshot()})
}

// publish sends msg to every connected human seat.
func (r *Room) publish(msg model.ServerMessage) {
	for _, p := range r.Model.Seated() {
		if p.IsAI || !p.Connected {
			continue
		}
		if connId, found := r.conns[p.Id]; found {
			r.out.Send(connId, msg)
		}
	}
}

func (r *Room) Done() <-chan struct{} {
	return r.done
}
