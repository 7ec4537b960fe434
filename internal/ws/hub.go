package ws

import (
	"context"
	"encoding/json"

	"go-packet-inventory/internal/events"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live connection bound to the owner that authenticated it.
type Client struct {
	OwnerID uuid.UUID
	Conn    Conn
}

type envelope struct {
	ownerID uuid.UUID
	payload []byte
}

// Hub keeps connections grouped by owner and only ever delivers an event to
// the connections of the owner it belongs to. All writes happen on the Run
// goroutine.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Register(ownerID uuid.UUID, conn Conn) *Client {
	c := &Client{OwnerID: ownerID, Conn: conn}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
	}
	return c
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish implements events.Publisher. Events are dropped when the hub is
// saturated.
func (h *Hub) Publish(_ context.Context, evt events.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("encode ws event", zap.String("action", evt.Action), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{ownerID: evt.OwnerID, payload: payload}:
	default:
		h.log.Warn("ws broadcast queue full, dropping event", zap.String("action", evt.Action))
	}
}

// Run owns the client set until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					c.Conn.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			return

		case c := <-h.register:
			set, ok := h.clients[c.OwnerID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.OwnerID] = set
			}
			set[c] = struct{}{}
			h.log.Debug("ws client connected", zap.String("owner_id", c.OwnerID.String()))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			for c := range h.clients[msg.ownerID] {
				if err := c.Conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					h.log.Debug("ws write failed", zap.String("owner_id", c.OwnerID.String()), zap.Error(err))
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.OwnerID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	c.Conn.Close()
	if len(set) == 0 {
		delete(h.clients, c.OwnerID)
	}
}
