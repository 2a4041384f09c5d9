// Package wsscene mirrors a gemfall scene to websocket clients. A Hub
// implements gemfall.Scene by broadcasting every change and removal as a
// JSON event, so a browser can render what a ParticleEngine animates.
package wsscene

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/gemfall"
)

// Event operations.
const (
	OpSize   = "size"
	OpAdd    = "add"
	OpChange = "change"
	OpRemove = "remove"
)

const (
	writeWait  = time.Second
	sendBuffer = 256
)

// Event is the JSON message sent to clients. Absent attributes are omitted.
type Event struct {
	Op     string         `json:"op"`
	ID     gemfall.Handle `json:"id,omitempty"`
	X      *float64       `json:"x,omitempty"`
	Y      *float64       `json:"y,omitempty"`
	Layer  *int           `json:"layer,omitempty"`
	Frame  *int           `json:"frame,omitempty"`
	Scale  *float64       `json:"scale,omitempty"`
	Alpha  *float64       `json:"alpha,omitempty"`
	Color  *gemfall.Color `json:"color,omitempty"`
	Width  float64        `json:"width,omitempty"`
	Height float64        `json:"height,omitempty"`
}

// eventOf converts the masked attributes of a into an event.
func eventOf(op string, id gemfall.Handle, a gemfall.Attrs) Event {
	ev := Event{Op: op, ID: id}
	if a.Has(gemfall.AttrX) {
		ev.X = &a.X
	}
	if a.Has(gemfall.AttrY) {
		ev.Y = &a.Y
	}
	if a.Has(gemfall.AttrLayer) {
		ev.Layer = &a.Layer
	}
	if a.Has(gemfall.AttrFrame) {
		ev.Frame = &a.Frame
	}
	if a.Has(gemfall.AttrScale) {
		ev.Scale = &a.Scale
	}
	if a.Has(gemfall.AttrAlpha) {
		ev.Alpha = &a.Alpha
	}
	if a.Has(gemfall.AttrColor) {
		ev.Color = &a.Color
	}
	return ev
}

// merge folds the attributes set in a onto the stored object state.
func merge(dst *gemfall.Attrs, a gemfall.Attrs) {
	if a.Has(gemfall.AttrX) {
		dst.X = a.X
	}
	if a.Has(gemfall.AttrY) {
		dst.Y = a.Y
	}
	if a.Has(gemfall.AttrLayer) {
		dst.Layer = a.Layer
	}
	if a.Has(gemfall.AttrFrame) {
		dst.Frame = a.Frame
	}
	if a.Has(gemfall.AttrScale) {
		dst.Scale = a.Scale
	}
	if a.Has(gemfall.AttrAlpha) {
		dst.Alpha = a.Alpha
	}
	if a.Has(gemfall.AttrColor) {
		dst.Color = a.Color
	}
	dst.Mask |= a.Mask
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks the mirrored objects and the connected clients. New clients
// receive the viewport size and every live object before live updates.
type Hub struct {
	width, height float64
	upgrader      websocket.Upgrader

	mu      sync.Mutex
	logger  *log.Logger
	clients map[*client]struct{}
	objects map[gemfall.Handle]gemfall.Attrs
	nextID  gemfall.Handle
	closed  bool
}

// NewHub creates a hub reporting the given viewport size.
func NewHub(width, height float64) *Hub {
	return &Hub{
		width:  width,
		height: height,
		logger: log.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		objects: make(map[gemfall.Handle]gemfall.Attrs),
	}
}

// SetLogger replaces the logger used for client errors. It is safe to call
// while clients are connected.
func (h *Hub) SetLogger(l *log.Logger) {
	h.mu.Lock()
	h.logger = l
	h.mu.Unlock()
}

func (h *Hub) logf(format string, args ...any) {
	h.mu.Lock()
	l := h.logger
	h.mu.Unlock()
	l.Printf(format, args...)
}

// Add announces a new object and returns its handle.
func (h *Hub) Add(a gemfall.Attrs) gemfall.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.objects[id] = a
	h.broadcastLocked(eventOf(OpAdd, id, a))
	return id
}

// Dimensions reports the configured viewport size.
func (h *Hub) Dimensions() (width, height float64) {
	return h.width, h.height
}

// Change broadcasts the masked attributes of object id. Unknown handles are
// ignored.
func (h *Hub) Change(id gemfall.Handle, a gemfall.Attrs) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.objects[id]
	if !ok {
		return
	}
	merge(&cur, a)
	h.objects[id] = cur
	h.broadcastLocked(eventOf(OpChange, id, a))
}

// Remove broadcasts the removal of object id.
func (h *Hub) Remove(id gemfall.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.objects[id]; !ok {
		return
	}
	delete(h.objects, id)
	h.broadcastLocked(Event{Op: OpRemove, ID: id})
}

// Len returns the number of live objects.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects)
}

// NumClients returns the number of connected clients.
func (h *Hub) NumClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			h.logf("wsscene: upgrade: %v", err)
		}
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	// Room for the whole snapshot on top of the live-update buffer.
	c := &client{conn: conn, send: make(chan []byte, sendBuffer+len(h.objects)+1)}
	h.clients[c] = struct{}{}
	h.snapshotLocked(c)
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every client. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// snapshotLocked queues the viewport size and live objects for c.
func (h *Hub) snapshotLocked(c *client) {
	h.queueLocked(c, Event{Op: OpSize, Width: h.width, Height: h.height})
	for id, a := range h.objects {
		h.queueLocked(c, eventOf(OpAdd, id, a))
	}
}

func (h *Hub) broadcastLocked(ev Event) {
	for c := range h.clients {
		h.queueLocked(c, ev)
	}
}

// queueLocked hands ev to c without blocking. A client whose buffer is full
// has fallen too far behind and is dropped.
func (h *Hub) queueLocked(c *client, ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Printf("wsscene: encode %s event: %v", ev.Op, err)
		return
	}
	select {
	case c.send <- msg:
	default:
		h.logger.Printf("wsscene: client %s too slow, dropping", c.conn.RemoteAddr())
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// writePump sends queued messages until the hub drops the client.
func (h *Hub) writePump(c *client) {
	defer func() {
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logf("wsscene: write: %v", err)
			h.drop(c)
			// Drain so the hub never blocks on a dead client.
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logf("wsscene: read: %v", err)
			}
			return
		}
	}
}
