// Package websocket pushes inventory change notices to open dashboard pages so
// they re-render.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message announces an inventory change. Pages only look at Type and Model.
type Message struct {
	Type   string `json:"type"`
	Model  string `json:"model,omitempty"`
	Action string `json:"action"`
	ItemID string `json:"item_id,omitempty"`
}

// NewMessage builds the notice for one store change. An empty modelID means
// the whole inventory was replaced.
func NewMessage(modelID, action, itemID string) Message {
	return Message{
		Type:   "inventory_" + action,
		Model:  modelID,
		Action: action,
		ItemID: itemID,
	}
}

// listener is one connected page. It holds at most one undelivered notice.
type listener struct {
	notices chan []byte
}

// Hub fans notices out to connected pages. A page that has not taken its last
// notice gets the newer one in its place, since any notice triggers a reload.
type Hub struct {
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[*listener]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:    logger,
		listeners: make(map[*listener]struct{}),
	}
}

func (h *Hub) attach() *listener {
	l := &listener{notices: make(chan []byte, 1)}
	h.mu.Lock()
	h.listeners[l] = struct{}{}
	h.mu.Unlock()
	return l
}

func (h *Hub) detach(l *listener) {
	h.mu.Lock()
	delete(h.listeners, l)
	h.mu.Unlock()
}

// Broadcast queues msg for every connected page without blocking.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding inventory notice", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for l := range h.listeners {
		if l.replace(data) {
			h.logger.Debug("superseded undelivered notice", "type", msg.Type, "model", msg.Model)
		}
	}
}

// Pages returns the number of connected pages.
func (h *Hub) Pages() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// replace stores data as the pending notice and reports whether an older one
// was discarded. Callers hold the hub lock, so the only other party is the
// connection taking notices out.
func (l *listener) replace(data []byte) bool {
	dropped := false
	for {
		select {
		case l.notices <- data:
			return dropped
		default:
		}
		select {
		case <-l.notices:
			dropped = true
		default:
		}
	}
}
