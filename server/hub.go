package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/territory/model"
	"golang.org/x/time/rate"
)

const sendBuffer = 32

// Hub holds the live websocket connections and implements Broadcaster.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Connection)}
}

func (h *Hub) Send(connId string, msg model.ServerMessage) {
	h.mu.RLock()
	c, found := h.conns[connId]
	h.mu.RUnlock()
	if !found {
		log.WithField("conn", connId).Debugf("Hub.Send %s to gone connection", msg.Type)
		return
	}
	c.enqueue(msg)
}

func (h *Hub) add(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.Id] = c
}

func (h *Hub) remove(connId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connId)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("HandleHttpCall - connection received")
		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		c := s.newConnection(con)
		s.Hub.add(c)
		c.enqueue(model.ServerMessage{Type: model.EventConnected, Data: model.Connected{
			SessionId: s.Registry.Token(c.Id),
			PlayerId:  c.Id,
		}})

		go c.LoopChannelWrite()
		c.LoopChannelRead()

		close(c.done)
		s.Hub.remove(c.Id)
		s.Disconnect(c.Id)
		c.log.Info("HandleHttpCall connection closed")
	}
}

func (s *GameServer) newConnection(con *websocket.Conn) *Connection {
	id := uuid.NewString()
	c := &Connection{
		Id:             id,
		Conn:           con,
		server:         s,
		limiter:        rate.NewLimiter(rate.Limit(s.Config.MessageRate), s.Config.MessageBurst),
		MessagesToSend: make(chan model.ServerMessage, sendBuffer),
		done:           make(chan struct{}),
		log:            log.WithField("conn", id),
	}
	con.SetPingHandler(
		func(message string) error {
			err := con.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			c.DebugLastPing = time.Now()
			c.DebugPings++
			if errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil
			}
			return err
		})
	return c
}

func (c *Connection) enqueue(msg model.ServerMessage) {
	select {
	case c.MessagesToSend <- msg:
	case <-c.done:
	default:
		c.log.Warnf("Dropping %s, MessagesToSend FULL", msg.Type)
	}
}

// LoopChannelRead decodes intents until the socket fails. Malformed or
// rate-limited messages are dropped without closing the connection.
func (c *Connection) LoopChannelRead() {
	c.log.Debug("LoopChannelRead STARTED")
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnf("LoopChannelRead err reading message from Conn %v", err)
			}
			break
		}
		c.DebugLastMessage = time.Now()
		c.DebugInMessages++
		if !c.limiter.Allow() {
			c.log.Debug("LoopChannelRead rate limited")
			continue
		}
		var cm model.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.log.Debugf("LoopChannelRead cant decode: %v", err)
			continue
		}
		c.server.HandleClientMessage(c.Id, cm, time.Now())
	}
	c.log.Debug("LoopChannelRead ENDED")
}

// LoopChannelWrite is the only writer of data frames on the socket.
func (c *Connection) LoopChannelWrite() {
	c.log.Debug("LoopChannelWrite STARTED")
	for {
		select {
		case <-c.done:
			c.log.Debug("LoopChannelWrite ENDED")
			return
		case mes := <-c.MessagesToSend:
			if err := c.write(mes); err != nil {
				c.log.Warnf("LoopChannelWrite %v", err)
				c.Conn.Close()
				return
			}
			c.DebugOutMessages++
		}
	}
}

func (c *Connection) write(mes model.ServerMessage) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("cant get writer: %w", err)
	}
	if err := json.NewEncoder(w).Encode(mes); err != nil {
		w.Close()
		return fmt.Errorf("cant encode %s: %w", mes.Type, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cant flush %s: %w", mes.Type, err)
	}
	return nil
}
