package realtime

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Hub fans events out to the matching set of connections. Each event is
// serialized once; enqueueing happens synchronously in the caller's
// goroutine, so two events for the same dashboard reach every subscriber in
// the order the repository layer produced them. Actual socket writes run on
// the per-connection writer goroutines, so fan-out never blocks a mutation
// and one broken subscriber never affects the rest of the batch.
type Hub struct {
	registry *Registry
	logger   *zap.Logger

	delivered int64
	dropped   int64
}

func NewHub(registry *Registry, logger *zap.Logger) *Hub {
	return &Hub{
		registry: registry,
		logger:   logger,
	}
}

// BroadcastGlobal delivers an event to every open connection, subscribed or not.
func (h *Hub) BroadcastGlobal(event string, payload any) {
	h.deliver(h.registry.AllOpenConnections(), event, payload)
}

// BroadcastToDashboard delivers an event to the dashboard's current subscribers.
func (h *Hub) BroadcastToDashboard(dashboardID string, event string, payload any) {
	h.deliver(h.registry.SubscribersOf(dashboardID), event, payload)
}

func (h *Hub) deliver(targets []string, event string, payload any) {
	if len(targets) == 0 {
		return
	}

	msg, err := json.Marshal(Envelope{
		Type:      event,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to serialize broadcast event",
			zap.String("event", event),
			zap.Error(err))
		return
	}

	for _, connID := range targets {
		conn, ok := h.registry.Get(connID)
		if !ok {
			// Disconnected between snapshot and delivery.
			continue
		}
		if err := conn.Enqueue(msg); err != nil {
			atomic.AddInt64(&h.dropped, 1)
			h.logger.Warn("dropping broadcast message",
				zap.String("event", event),
				zap.String("connection_id", connID),
				zap.Error(err))
			continue
		}
		atomic.AddInt64(&h.delivered, 1)
	}
}

// Stats reports delivery counters for the observability endpoint.
type Stats struct {
	OpenConnections int   `json:"open_connections"`
	Delivered       int64 `json:"delivered"`
	Dropped         int64 `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	return Stats{
		OpenConnections: h.registry.CountOpenConnections(),
		Delivered:       atomic.LoadInt64(&h.delivered),
		Dropped:         atomic.LoadInt64(&h.dropped),
	}
}
