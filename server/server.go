package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nathoo/runesim/command"
	"github.com/nathoo/runesim/engine"
	"github.com/nathoo/runesim/engine/parser"
	"github.com/nathoo/runesim/persistence"
)

// Server drives the simulation on a fixed tick and serves player
// sessions over websockets. One goroutine owns the tick loop; client
// read pumps funnel commands through the engine's own locking.
type Server struct {
	eng   *engine.Engine
	store *persistence.Store
	log   *zap.SugaredLogger

	tick         time.Duration
	snapshotTick int // ticks between snapshots, 0 disables

	mu      sync.Mutex
	clients map[*client]string // client → player ID
}

// Config carries the server's runtime knobs.
type Config struct {
	Tick             time.Duration
	SnapshotInterval time.Duration
}

// New builds a server around an engine. store may be nil to disable
// persistence.
func New(eng *engine.Engine, store *persistence.Store, log *zap.SugaredLogger, cfg Config) *Server {
	if cfg.Tick <= 0 {
		cfg.Tick = 600 * time.Millisecond
	}
	snapshotTick := 0
	if store != nil && cfg.SnapshotInterval > 0 {
		snapshotTick = int(cfg.SnapshotInterval / cfg.Tick)
		if snapshotTick < 1 {
			snapshotTick = 1
		}
	}
	return &Server{
		eng:          eng,
		store:        store,
		log:          log,
		tick:         cfg.Tick,
		snapshotTick: snapshotTick,
		clients:      map[*client]string{},
	}
}

// Run drives the tick loop until the context is canceled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			s.snapshotAll()
			return
		case <-ticker.C:
			s.eng.Advance(s.tick.Seconds())
			s.broadcastStatus()
			ticks++
			if s.snapshotTick > 0 && ticks%s.snapshotTick == 0 {
				s.snapshotAll()
			}
		}
	}
}

// snapshotAll persists every connected player's session.
func (s *Server) snapshotAll() {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	players := map[string]bool{}
	for _, id := range s.clients {
		players[id] = true
	}
	s.mu.Unlock()

	for id := range players {
		if err := s.store.Put(s.eng.Capture(id)); err != nil {
			s.log.Errorw("snapshot failed", "player", id, "err", err)
		}
	}
}

// broadcastStatus pushes a status frame to every connected client.
func (s *Server) broadcastStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c, id := range s.clients {
		frame, err := json.Marshal(statusFrame(s.eng.Status(id)))
		if err != nil {
			continue
		}
		c.enqueue(frame)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades a websocket connection: /ws?player=alice
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("upgrade failed", "err", err)
		return
	}

	// Restore the player's last snapshot before the first tick sees them.
	if s.store != nil {
		if snap, err := s.store.Latest(playerID); err != nil {
			s.log.Errorw("restore failed", "player", playerID, "err", err)
		} else if snap != nil {
			s.eng.Restore(snap)
		}
	}

	c := newClient(ws)
	s.mu.Lock()
	s.clients[c] = playerID
	s.mu.Unlock()
	s.log.Infow("player connected", "player", playerID, "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump(s, playerID)
}

// drop removes a client, snapshots its player, and tears the session down
// when no other connection shares it.
func (s *Server) drop(c *client, playerID string) {
	s.mu.Lock()
	delete(s.clients, c)
	shared := false
	for _, id := range s.clients {
		if id == playerID {
			shared = true
			break
		}
	}
	s.mu.Unlock()

	if shared {
		return
	}
	if s.store != nil {
		if err := s.store.Put(s.eng.Capture(playerID)); err != nil {
			s.log.Errorw("disconnect snapshot failed", "player", playerID, "err", err)
		}
	}
	s.eng.RemoveSession(playerID)
	s.log.Infow("player disconnected", "player", playerID)
}

// client wraps one websocket connection with a buffered send queue.
type client struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
}

func newClient(ws *websocket.Conn) *client {
	return &client{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// enqueue pushes a frame without blocking; a slow client loses frames
// rather than stalling the tick.
func (c *client) enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// writePump drains the send queue onto the wire.
func (c *client) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump decodes, validates, and executes inbound frames.
func (c *client) readPump(s *Server, playerID string) {
	defer c.ws.Close()
	defer c.close()
	defer s.drop(c, playerID)
	c.ws.SetReadLimit(1 << 16)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		msg, err := decodeClientMessage(payload)
		if err != nil {
			c.reply(errorFrame(err))
			continue
		}

		switch msg.Type {
		case "status":
			c.reply(statusFrame(s.eng.Status(playerID)))
		case "command":
			text, err := command.Execute(s.eng, playerID, parser.Parse(msg.Input))
			if err != nil {
				c.reply(errorFrame(err))
				continue
			}
			if text != "" {
				c.reply(eventFrame(text))
			}
		}
	}
}

func (c *client) reply(frame ServerMessage) {
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	c.enqueue(b)
}
