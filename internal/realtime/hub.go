package realtime

import (
	"log/slog"
	"sync"
)

// Broadcaster is what the rest of the application depends on to push
// events; tests substitute a recording fake.
type Broadcaster interface {
	SendToUser(userID, event string, payload any)
	SendToOrg(orgID, event string, payload any)
}

// Hub tracks live connections keyed by user and by organization. A user
// may hold several connections (multiple tabs), and every delivery is
// best effort: no connected recipient means the event is dropped.
type Hub struct {
	mu sync.RWMutex

	byUser map[string]map[*Client]struct{}
	byOrg  map[string]map[*Client]struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		byUser: make(map[string]map[*Client]struct{}),
		byOrg:  make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byUser[client.userID] == nil {
		h.byUser[client.userID] = make(map[*Client]struct{})
	}
	h.byUser[client.userID][client] = struct{}{}

	if client.orgID != "" {
		if h.byOrg[client.orgID] == nil {
			h.byOrg[client.orgID] = make(map[*Client]struct{})
		}
		h.byOrg[client.orgID][client] = struct{}{}
	}

	h.logger.Debug("websocket client connected", "user_id", client.userID)
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.byUser[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.byUser, client.userID)
		}
	}

	if client.orgID != "" {
		if clients, ok := h.byOrg[client.orgID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.byOrg, client.orgID)
			}
		}
	}

	h.logger.Debug("websocket client disconnected", "user_id", client.userID)
}

// SendToUser delivers the event to every connection of the user. It is
// a silent no-op when the user has no open connections.
func (h *Hub) SendToUser(userID, event string, payload any) {
	data, err := NewEnvelope(event, payload).Marshal()
	if err != nil {
		h.logger.Error("failed to encode websocket event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.byUser[userID] {
		client.enqueue(data)
	}
}

// SendToOrg delivers the event to every connection of every member of
// the organization. An empty orgID means the actor has no organization
// room, so there is nothing to deliver.
func (h *Hub) SendToOrg(orgID, event string, payload any) {
	if orgID == "" {
		return
	}

	data, err := NewEnvelope(event, payload).Marshal()
	if err != nil {
		h.logger.Error("failed to encode websocket event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.byOrg[orgID] {
		client.enqueue(data)
	}
}
