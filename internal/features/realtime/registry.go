package realtime

import (
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"go-opsboard/internal/config"
)

// Registry tracks every open realtime connection and which dashboard (if any)
// each one is subscribed to. Both maps are sharded concurrent maps, so
// connect/disconnect traffic never serializes against broadcast fan-out.
type Registry struct {
	connections   *xsync.MapOf[string, *Connection] // connection id -> handle
	subscriptions *xsync.MapOf[string, string]      // connection id -> dashboard id

	bufferSize int
	logger     *zap.Logger
}

func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	return &Registry{
		connections:   xsync.NewMapOf[string, *Connection](),
		subscriptions: xsync.NewMapOf[string, string](),
		bufferSize:    cfg.SendBufferSize,
		logger:        logger,
	}
}

// Register creates an entry for a freshly opened connection and returns its
// handle. Connection ids are never reused.
func (r *Registry) Register(writer MessageWriter) *Connection {
	conn := newConnection(uuid.NewString(), writer, r.bufferSize, r.logger)
	r.connections.Store(conn.ID, conn)
	return conn
}

// Subscribe points the connection at a dashboard, replacing any prior
// subscription. At most one subscription per connection at any instant.
func (r *Registry) Subscribe(connectionID, dashboardID string) bool {
	if _, ok := r.connections.Load(connectionID); !ok {
		return false
	}
	r.subscriptions.Store(connectionID, dashboardID)
	return true
}

// Unsubscribe drops the subscription but leaves the connection registered.
func (r *Registry) Unsubscribe(connectionID string) {
	r.subscriptions.Delete(connectionID)
}

// Deregister removes the connection and its subscription. Idempotent: unknown
// or already-removed ids are a no-op.
func (r *Registry) Deregister(connectionID string) {
	r.subscriptions.Delete(connectionID)
	if conn, ok := r.connections.LoadAndDelete(connectionID); ok {
		conn.Close()
	}
}

// Get returns the live handle for a connection id.
func (r *Registry) Get(connectionID string) (*Connection, bool) {
	return r.connections.Load(connectionID)
}

// SubscribersOf returns a point-in-time snapshot of the connection ids
// subscribed to the dashboard. Entries may go stale between snapshot and
// delivery; the broadcast path tolerates that.
func (r *Registry) SubscribersOf(dashboardID string) []string {
	var ids []string
	r.subscriptions.Range(func(connID, dashID string) bool {
		if dashID == dashboardID {
			ids = append(ids, connID)
		}
		return true
	})
	return ids
}

// AllOpenConnections returns a snapshot of every registered connection id.
func (r *Registry) AllOpenConnections() []string {
	var ids []string
	r.connections.Range(func(connID string, _ *Connection) bool {
		ids = append(ids, connID)
		return true
	})
	return ids
}

func (r *Registry) CountSubscribers(dashboardID string) int {
	return len(r.SubscribersOf(dashboardID))
}

func (r *Registry) CountOpenConnections() int {
	return r.connections.Size()
}

// Shutdown closes every registered connection. Called on service stop.
func (r *Registry) Shutdown() {
	r.connections.Range(func(connID string, conn *Connection) bool {
		r.Deregister(connID)
		_ = conn
		return true
	})
}
