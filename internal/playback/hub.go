package playback

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Hub tracks the connected clients of every document.
type Hub struct {
	mu         sync.RWMutex
	documents  map[string]map[string]*Client // documentID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		documents:  make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Register adds a client. It reports false once the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.documents[client.DocumentID]
	if !ok {
		clients = make(map[string]*Client)
		h.documents[client.DocumentID] = clients
	}
	clients[client.ClientID] = client
	h.mu.Unlock()

	slog.Info("client joined", "client", client.ClientID, "session", client.session.ID, "document", client.DocumentID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.documents[client.DocumentID]
	if !ok || clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(clients, client.ClientID)
	close(client.send)
	if len(clients) == 0 {
		delete(h.documents, client.DocumentID)
	}
	h.mu.Unlock()

	slog.Info("client left", "client", client.ClientID, "document", client.DocumentID)
}

// Clients returns the number of clients playing documentID.
func (h *Hub) Clients(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.documents[documentID])
}

// CloseDocument disconnects every client of documentID.
func (h *Hub) CloseDocument(documentID string) {
	h.mu.RLock()
	var conns []*websocket.Conn
	for _, c := range h.documents[documentID] {
		conns = append(conns, c.conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		go conn.Close(websocket.StatusGoingAway, "document deleted")
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, clients := range h.documents {
			for _, c := range clients {
				go c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			}
		}
	})
}
