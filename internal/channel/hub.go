package channel

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// peer is one accepted WebSocket connection. gorilla/websocket allows a
// single concurrent writer per connection, hence the write mutex.
type peer struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *peer) write(frame []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, frame)
}

// Hub is the hosting side of the channel. It accepts WebSocket peers,
// applies every inbound frame locally through the handler, and relays it to
// all other peers, so every participant sees the same ordered stream.
type Hub struct {
	upgrader websocket.Upgrader
	handler  Handler

	mu    sync.RWMutex
	peers map[string]*peer
}

func NewHub(handler Handler) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// LAN sessions are joined by share link; any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handler: handler,
		peers:   make(map[string]*peer),
	}
}

// ServeHTTP upgrades an incoming request and services the connection until
// it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[hub] upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	p := &peer{id: uuid.NewString(), conn: conn}
	h.add(p)
	defer h.remove(p)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[hub] peer %s disconnected: %v", p.id, err)
			return
		}
		if h.handler != nil {
			h.handler(frame)
		}
		h.relay(frame, p.id)
	}
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.id] = p
	log.Printf("[hub] peer %s connected from %s", p.id, p.conn.RemoteAddr())
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p.id)
	p.conn.Close()
	log.Printf("[hub] peer %s removed", p.id)
}

// Send broadcasts one locally-authored frame to every connected peer.
func (h *Hub) Send(frame []byte) error {
	h.relay(frame, "")
	return nil
}

// relay forwards a frame to all peers except the one it came from.
func (h *Hub) relay(frame []byte, exclude string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, p := range h.peers {
		if id == exclude {
			continue
		}
		if err := p.write(frame); err != nil {
			log.Printf("[hub] write to peer %s failed: %v", id, err)
		}
	}
}

// Close drops every connection.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, p := range h.peers {
		p.conn.Close()
		delete(h.peers, id)
	}
	return nil
}

// PeerCount reports the number of connected peers.
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}
