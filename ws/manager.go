package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"portal_backend/internal/logger"
)

const (
	EventConnections   = "connections"
	EventUpdateHewan   = "update-hewan"
	EventUpdateProduct = "update-product"
	EventMessage       = "message"
	EventPing          = "ping"
	EventPong          = "pong"
	EventError         = "error"
)

// Envelope is the wire format for every frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CountsFunc returns hewan counts per status for an organization ("" = all).
type CountsFunc func(ctx context.Context, orgID string) (map[string]int64, error)

type outbound struct {
	orgID   string // "" only for connection counts, which reach every client
	payload []byte
}

// WebSocketManager fans events out to the clients connected to this instance.
// The connection count is per instance; a Bridge only shares broadcasts.
type WebSocketManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	mu         sync.RWMutex

	counts     CountsFunc
	bridge     Bridge
	instanceID string
}

type Option func(*WebSocketManager)

// WithBridge shares broadcasts with other instances.
func WithBridge(b Bridge) Option {
	return func(m *WebSocketManager) { m.bridge = b }
}

func NewWebSocketManager(counts CountsFunc, opts ...Option) *WebSocketManager {
	m := &WebSocketManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
		counts:     counts,
		instanceID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run owns the client set until ctx is cancelled, then disconnects everyone.
func (manager *WebSocketManager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	if manager.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.subscribeBridge(ctx)
		}()
	}
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.mu.Lock()
			for id, client := range manager.clients {
				close(client.Send)
				delete(manager.clients, id)
			}
			manager.mu.Unlock()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.ID] = client
			count := len(manager.clients)
			manager.mu.Unlock()
			logger.Debug("Websocket client registered", "client_id", client.ID, "user_id", client.UserID, "total", count)
			manager.broadcastCount(count)

		case client := <-manager.unregister:
			manager.mu.Lock()
			_, ok := manager.clients[client.ID]
			if ok {
				close(client.Send)
				delete(manager.clients, client.ID)
			}
			count := len(manager.clients)
			manager.mu.Unlock()
			if ok {
				logger.Debug("Websocket client unregistered", "client_id", client.ID, "total", count)
				manager.broadcastCount(count)
			}

		case msg := <-manager.broadcast:
			manager.deliver(msg)
		}
	}
}

func (manager *WebSocketManager) broadcastCount(count int) {
	payload, err := encode(EventConnections, map[string]int{"count": count})
	if err != nil {
		return
	}
	manager.deliver(outbound{payload: payload})
}

// deliver drops clients whose send buffer is full. Only called from Run.
func (manager *WebSocketManager) deliver(msg outbound) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for id, client := range manager.clients {
		if msg.orgID != "" && client.OrgID != msg.orgID {
			continue
		}
		select {
		case client.Send <- msg.payload:
		default:
			close(client.Send)
			delete(manager.clients, id)
			logger.Warn("Websocket client dropped, send buffer full", "client_id", id)
		}
	}
}

// Publish broadcasts event to the organization's clients on every instance.
// update-hewan payloads are replaced by fresh counts. Events without an
// organization are dropped.
func (manager *WebSocketManager) Publish(ctx context.Context, orgID, event string, data interface{}) {
	if orgID == "" {
		logger.CtxWarn(ctx, "Relay event without organization dropped", "event", event)
		return
	}
	if event == EventUpdateHewan && manager.counts != nil {
		qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		counts, err := manager.counts(qctx, orgID)
		cancel()
		if err != nil {
			logger.CtxWithError(ctx, "Failed to count hewan for relay", err)
			return
		}
		data = counts
	}

	payload, err := encode(event, data)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to encode relay event", err, "event", event)
		return
	}
	manager.enqueue(outbound{orgID: orgID, payload: payload})

	if manager.bridge != nil {
		if err := manager.bridge.Publish(ctx, bridgeMessage{Origin: manager.instanceID, OrgID: orgID, Payload: payload}); err != nil {
			logger.CtxWithError(ctx, "Failed to publish relay event to bridge", err)
		}
	}
}

func (manager *WebSocketManager) enqueue(msg outbound) {
	select {
	case manager.broadcast <- msg:
	case <-manager.done:
	}
}

func (manager *WebSocketManager) subscribeBridge(ctx context.Context) {
	err := manager.bridge.Subscribe(ctx, func(msg bridgeMessage) {
		if msg.Origin == manager.instanceID || msg.OrgID == "" {
			return
		}
		manager.enqueue(outbound{orgID: msg.OrgID, payload: msg.Payload})
	})
	if err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("Relay bridge subscription stopped")
	}
}

// sendTo queues payload for a single client; false when it is gone or full.
func (manager *WebSocketManager) sendTo(client *Client, payload []byte) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if _, ok := manager.clients[client.ID]; !ok {
		return false
	}
	select {
	case client.Send <- payload:
		return true
	default:
		return false
	}
}

func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

func encode(event string, data interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if data != nil {
		raw, ok := data.(json.RawMessage)
		if !ok {
			b, err := json.Marshal(data)
			if err != nil {
				return nil, err
			}
			raw = b
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
