package hub

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"girlfanz/pkg/logger"
)

// Hub owns the registry of authenticated connections. Only the Run goroutine
// touches the registry and writes to client send buffers.
type Hub struct {
	// user id -> live connections of that user
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	online     chan onlineQuery

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	now    func() time.Time
	logger *logger.Logger
}

type inbound struct {
	from  *Client
	frame Frame
}

type onlineQuery struct {
	userID string
	reply  chan int
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		inbound:    make(chan inbound, 256),
		online:     make(chan onlineQuery),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		now:        time.Now,
		logger:     log,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case in := <-h.inbound:
			h.handleInbound(in)

		case q := <-h.online:
			q.reply <- len(h.clients[q.userID])

		case <-h.stop:
			h.closeAll()
			h.logger.Info("Chat hub stopped")
			return
		}
	}
}

// Stop ends Run and closes every client. It blocks until Run has returned and
// is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Register hands a client to the hub. It returns false once the hub has
// stopped; register is unbuffered so a true result means Run accepted it.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) submit(c *Client, f Frame) {
	select {
	case h.inbound <- inbound{from: c, frame: f}:
	case <-h.done:
	}
}

// Online reports how many connections a user currently holds.
func (h *Hub) Online(userID string) int {
	q := onlineQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.online <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) handleRegister(c *Client) {
	conns, ok := h.clients[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
	h.logger.Debug("Client registered: %s (%d connections)", c.userID, len(conns))
}

func (h *Hub) handleUnregister(c *Client) {
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	h.drop(c)
	h.logger.Debug("Client unregistered: %s", c.userID)
}

func (h *Hub) drop(c *Client) {
	conns := h.clients[c.userID]
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

func (h *Hub) handleInbound(in inbound) {
	// The sender may have disconnected while the frame was queued.
	if _, ok := h.clients[in.from.userID][in.from]; !ok {
		return
	}

	f := in.frame
	switch {
	case f.Type != TypeMessage:
		h.sendTo(in.from, ErrorFrame("unsupported frame type"))
		return
	case strings.TrimSpace(f.To) == "":
		h.sendTo(in.from, ErrorFrame("recipient is required"))
		return
	case strings.TrimSpace(f.Body) == "":
		h.sendTo(in.from, ErrorFrame("message body is required"))
		return
	}

	sentAt := h.now().UTC()
	out := Frame{
		Type:   TypeMessage,
		From:   in.from.userID,
		To:     f.To,
		Body:   f.Body,
		SentAt: &sentAt,
	}
	payload, err := json.Marshal(out)
	if err != nil {
		h.logger.Error("Failed to encode chat message: %v", err)
		return
	}

	// Offline recipients are not an error; the message is dropped.
	for c := range h.clients[f.To] {
		h.enqueue(c, payload)
	}
}

func (h *Hub) sendTo(c *Client, f Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("Failed to encode frame: %v", err)
		return
	}
	h.enqueue(c, payload)
}

// enqueue never blocks the hub. A client whose buffer is full is disconnected.
func (h *Hub) enqueue(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("Dropping slow client %s", c.userID)
		h.drop(c)
	}
}

func (h *Hub) closeAll() {
	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}
