package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lab1702/arena-npc/config"
)

// isValidOrigin checks if the origin is allowed to connect
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		log.Warn("invalid origin URL", "origin", origin)
		return false
	}

	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	log.Warn("rejected websocket origin", "origin", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 256
)

// Message types
const (
	MsgTypeJoin       = "join"
	MsgTypeJoined     = "joined"
	MsgTypeMove       = "move"
	MsgTypeHit        = "hit"
	MsgTypeDifficulty = "difficulty"
	MsgTypeQuit       = "quit"
	MsgTypeUpdate     = "update"
	MsgTypeError      = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type" msgpack:"type"`
	Data interface{} `json:"data" msgpack:"data"`
}

// Client represents a connected player
type Client struct {
	ID     int
	codec  Codec
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server

	mu       sync.Mutex // guards playerID and closed
	playerID string
	closed   bool
}

// PlayerID is the joined player's ID, empty before join.
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Client) setPlayerID(id string) {
	c.mu.Lock()
	c.playerID = id
	c.mu.Unlock()
}

// closeSend closes the outbound queue once. Replies queued after this are dropped.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Server runs the arena simulation and streams it to connected clients.
type Server struct {
	mu         sync.RWMutex // guards clients and nextID
	clients    map[int]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan ServerMessage
	nextID     int
	done       chan struct{}

	worldMu  sync.Mutex
	world    *World
	interval time.Duration
}

// NewServer creates a server for the arena described by cfg.
func NewServer(cfg *config.Arena, seed int64) *Server {
	return &Server{
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ServerMessage, sendBuffer),
		done:       make(chan struct{}),
		world:      NewWorld(cfg, seed),
		interval:   cfg.TickInterval(),
	}
}

// Run drives the hub and the game loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)
	go s.gameLoop(ctx)

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Info("client connected", "client", client.ID, "codec", client.codec)

		case client := <-s.unregister:
			s.dropClient(client)

		case message := <-s.broadcast:
			s.mu.RLock()
			for _, client := range s.clients {
				select {
				case client.send <- message:
				default:
					log.Warn("client send buffer full, skipping broadcast", "client", client.ID)
				}
			}
			s.mu.RUnlock()

		case <-ctx.Done():
			s.mu.Lock()
			for id, client := range s.clients {
				delete(s.clients, id)
				client.closeSend()
			}
			s.mu.Unlock()
			return nil
		}
	}
}

func (s *Server) dropClient(client *Client) {
	s.mu.Lock()
	_, ok := s.clients[client.ID]
	if ok {
		delete(s.clients, client.ID)
		client.closeSend()
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if id := client.PlayerID(); id != "" {
		s.worldMu.Lock()
		s.world.RemovePlayer(id)
		s.worldMu.Unlock()
	}
	log.Info("client disconnected", "client", client.ID)
}

// gameLoop steps the world at a fixed rate
func (s *Server) gameLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sendGameState(s.step())
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) step() Snapshot {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	s.world.Step(s.interval)
	return s.world.Snapshot()
}

func (s *Server) sendGameState(snap Snapshot) {
	select {
	case s.broadcast <- ServerMessage{Type: MsgTypeUpdate, Data: snap}:
	case <-s.done:
	default:
		log.Warn("broadcast queue full, dropping frame", "frame", snap.Frame)
	}
}

// ApplyConfig installs a reloaded config's difficulty tables and pushes
// them into live agents. Layout changes need a restart.
func (s *Server) ApplyConfig(cfg *config.Arena) error {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	if err := cfg.ApplyProfiles(); err != nil {
		return err
	}
	s.world.RefreshProfiles()
	log.SetLevel(cfg.Level())
	log.Info("config reloaded", "overrides", len(cfg.DifficultyOverrides), "level", cfg.Level())
	return nil
}

// HandleWebSocket handles WebSocket connections. ?codec=msgpack switches
// server messages to binary msgpack frames.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	clientID := s.nextID
	s.nextID++
	s.mu.Unlock()

	client := &Client{
		ID:     clientID,
		codec:  ParseCodec(r.URL.Query().Get("codec")),
		conn:   conn,
		send:   make(chan ServerMessage, sendBuffer),
		server: s,
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump handles incoming messages from the client
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg ClientMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read failed", "client", c.ID, "err", err)
			}
			break
		}

		c.handleMessage(msg)
	}
}

// writePump sends messages to the client
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec == CodecMsgpack {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := c.codec.Encode(message)
			if err != nil {
				log.Error("encode server message", "type", message.Type, "err", err)
				continue
			}
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendMsg queues a direct reply without blocking the read loop.
func (c *Client) sendMsg(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		log.Warn("client send buffer full, dropping reply", "client", c.ID, "type", msg.Type)
	}
}

func (c *Client) sendError(text string) {
	c.sendMsg(ServerMessage{Type: MsgTypeError, Data: text})
}

// handleMessage processes a message from the client
func (c *Client) handleMessage(msg ClientMessage) {
	// Recover from any panic to prevent disconnection
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in handleMessage", "client", c.ID, "type", msg.Type, "panic", r)
		}
	}()

	switch msg.Type {
	case MsgTypeJoin:
		c.handleJoin(msg.Data)
	case MsgTypeMove:
		c.handleMove(msg.Data)
	case MsgTypeHit:
		c.handleHit(msg.Data)
	case MsgTypeDifficulty:
		c.handleDifficulty(msg.Data)
	case MsgTypeQuit:
		c.handleQuit()
	default:
		log.Warn("unknown message type", "client", c.ID, "type", msg.Type)
		c.sendError("Unknown message type")
	}
}
