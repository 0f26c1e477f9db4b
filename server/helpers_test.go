package server

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zucenko/territory/model"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type sent struct {
	conn string
	msg  model.ServerMessage
}

// recorder is a Broadcaster that keeps everything it was asked to send.
type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) Send(connId string, msg model.ServerMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{conn: connId, msg: msg})
}

func (r *recorder) types(connId string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0)
	for _, s := range r.sent {
		if s.conn == connId {
			out = append(out, s.msg.Type)
		}
	}
	return out
}

func (r *recorder) last(connId, typ string) (model.ServerMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].conn == connId && r.sent[i].msg.Type == typ {
			return r.sent[i].msg, true
		}
	}
	return model.ServerMessage{}, false
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.msg.Type == typ {
			n++
		}
	}
	return n
}

func human(id string) Seat {
	return Seat{PlayerId: id, ConnectionId: id, Name: id}
}

func bot(id string) Seat {
	return Seat{PlayerId: id, Name: id, IsAI: true}
}

func newTestRoom(t *testing.T, seats ...Seat) (*Room, *recorder) {
	t.Helper()
	out := &recorder{}
	r := NewRoom("room_test", seats, DefaultConfig(), rand.New(rand.NewSource(1)), out)
	return r, out
}

// clearResources empties the board so tests control every pickup.
func clearResources(m *model.Model) {
	for _, res := range m.Resources {
		m.At(res.X, res.Y).HasResource = false
	}
	m.Resources = m.Resources[:0]
}

func newTestServer(t *testing.T) (*GameServer, *recorder) {
	t.Helper()
	s := NewGameServer(context.Background(), DefaultConfig())
	out := &recorder{}
	s.out = out
	s.launch = func(*Room) {}
	s.newRand = func() *rand.Rand {
		return rand.New(rand.NewSource(7))
	}
	return s, out
}

// requireInvariants checks ownership, strength and resource bookkeeping
// across the whole board.
func requireInvariants(t *testing.T, m *model.Model) {
	t.Helper()
	owned := 0
	flagged := 0
	for y, row := range m.Matrix {
		for x, cell := range row {
			pt := model.Point{X: x, Y: y}
			if cell.HasResource {
				flagged++
			}
			if cell.Owner == "" {
				for _, p := range m.Players {
					require.False(t, p.Territories.Has(pt), "unowned %v listed by %s", pt, p.Id)
				}
				continue
			}
			owned++
			require.Greater(t, cell.Strength, 0, "owned cell %v", pt)
			require.LessOrEqual(t, cell.Strength, MaxStrength, "owned cell %v", pt)
			owner, found := m.Players[cell.Owner]
			require.True(t, found, "owner of %v", pt)
			require.True(t, owner.Territories.Has(pt), "%v missing from %s", pt, owner.Id)
		}
	}
	require.Equal(t, owned, m.TotalTerritories())
	require.Equal(t, flagged, len(m.Resources))
	for _, res := range m.Resources {
		require.True(t, m.At(res.X, res.Y).HasResource)
	}
}

// fixedSource makes every rng draw the same value, so Float64 returns
// v / 2^63.
type fixedSource int64

func (s fixedSource) Int63() int64 { return int64(s) }
func (fixedSource) Seed(int64) {}

var (
	drawLow  = fixedSource(1 << 59) // Float64 0.0625
	drawHigh = fixedSource(7 << 60) // Float64 0.875
)
