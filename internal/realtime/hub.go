// Package realtime streams an in-flight build's Generator Loop progress to
// any client watching it over a WebSocket. This is read-only observation
// of a build already running elsewhere (internal/api, or another API
// instance relaying through Redis) — there is no interactive solving
// session here.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/crossgen/crossword/internal/db"
	"github.com/gorilla/websocket"
)

// EventType names a progress message's kind.
type EventType string

const (
	EventPlacement EventType = "placement"
	EventReady     EventType = "ready"
	EventFailed    EventType = "failed"
)

// Event is one progress update for a build, broadcast to every client
// watching it.
type Event struct {
	Type      EventType `json:"type"`
	WordCount int       `json:"wordCount,omitempty"`
	Elapsed   string    `json:"elapsed,omitempty"`
	Word      string    `json:"word,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// buildMessage bundles an Event with the build it belongs to, since one
// Hub multiplexes many concurrent builds.
type buildMessage struct {
	buildID string
	event   Event
}

// Client is a single WebSocket connection watching one build's progress.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	buildID string
	send    chan Event
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub multiplexes build-progress broadcasts to every subscribed client,
// and relays a build's events over Redis so any API instance watching
// that build (not just the one running it) can serve its WebSocket.
type Hub struct {
	db *db.Database

	mu       sync.Mutex
	watchers map[string]map[*Client]bool // buildID -> subscribed clients

	register   chan *Client
	unregister chan *Client
	broadcast  chan buildMessage
}

// NewHub creates a Hub backed by database for cross-instance progress
// relay. database may be nil, in which case progress only reaches clients
// connected to this process.
func NewHub(database *db.Database) *Hub {
	return &Hub{
		db:         database,
		watchers:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan buildMessage, 64),
	}
}

// Run processes register/unregister/broadcast in a loop that never
// returns. It runs on its own goroutine for the life of the server.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.watchers[client.buildID] == nil {
				h.watchers[client.buildID] = make(map[*Client]bool)
			}
			h.watchers[client.buildID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.watchers[client.buildID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.watchers, client.buildID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.watchers[msg.buildID] {
				select {
				case client.send <- msg.event:
				default:
					close(client.send)
					delete(h.watchers[msg.buildID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast fans event out to every client in this process watching
// buildID, and, if a database is configured, publishes it over Redis so
// other API instances' clients receive it too.
func (h *Hub) Broadcast(buildID string, event Event) {
	h.broadcast <- buildMessage{buildID: buildID, event: event}

	if h.db == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("realtime: failed to marshal progress event: %v", err)
		return
	}
	if err := h.db.PublishProgress(context.Background(), buildID, data); err != nil {
		log.Printf("realtime: failed to publish progress for %s: %v", buildID, err)
	}
}

// relayFromRedis forwards another instance's published events for buildID
// to this client until the subscription or the client disconnects. Only
// meaningful when the Hub has a database, since that's what makes
// cross-instance events observable at all.
func (h *Hub) relayFromRedis(client *Client) {
	if h.db == nil {
		return
	}
	sub := h.db.SubscribeProgress(context.Background(), client.buildID)
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			continue
		}
		select {
		case client.send <- event:
		default:
		}
	}
}

// ServeWs upgrades r into a WebSocket connection and registers a Client
// that streams buildID's progress events until the connection closes.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, buildID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		buildID: buildID,
		send:    make(chan Event, 16),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
	go hub.relayFromRedis(client)

	return nil
}

// readPump discards client input (this is a read-only progress stream)
// and keeps the connection alive, unregistering on disconnect.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump delivers queued events to the client and pings the connection
// to keep intermediaries from closing it.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
