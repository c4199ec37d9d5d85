package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Broadcast event types. DASHBOARD_CREATED goes to every open connection,
// the rest only to the subscribers of the affected dashboard.
const (
	EventDashboardCreated = "DASHBOARD_CREATED"
	EventDashboardUpdate  = "DASHBOARD_UPDATE"
	EventDashboardDeleted = "DASHBOARD_DELETED"
	EventWidgetUpdate     = "WIDGET_UPDATE"
	EventWidgetDeleted    = "WIDGET_DELETED"
	EventDataUpdate       = "DATA_UPDATE"
)

// Inbound command types.
const (
	MsgSubscribeDashboard   = "SUBSCRIBE_DASHBOARD"
	MsgUnsubscribeDashboard = "UNSUBSCRIBE_DASHBOARD"
	MsgPing                 = "PING"
)

// Outbound control message types.
const (
	MsgConnectionEstablished   = "CONNECTION_ESTABLISHED"
	MsgSubscriptionConfirmed   = "SUBSCRIPTION_CONFIRMED"
	MsgUnsubscriptionConfirmed = "UNSUBSCRIPTION_CONFIRMED"
	MsgPong                    = "PONG"
	MsgError                   = "ERROR"
)

// Error codes carried by ERROR envelopes.
const (
	CodeInvalidDashboardID   = "INVALID_DASHBOARD_ID"
	CodeSubscriptionDenied   = "SUBSCRIPTION_DENIED"
	CodeUnknownMessageType   = "UNKNOWN_MESSAGE_TYPE"
	CodeMessageHandlingError = "MESSAGE_HANDLING_ERROR"
)

// Envelope is the wire format in both directions.
type Envelope struct {
	Type         string      `json:"type"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload,omitempty"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// ClientMessage is the inbound command shape.
type ClientMessage struct {
	Type        string `json:"type"`
	DashboardID string `json:"dashboard_id,omitempty"`
}

type ConnectionEstablishedPayload struct {
	ConnectionID string `json:"connection_id"`
}

type SubscriptionConfirmedPayload struct {
	DashboardID string `json:"dashboard_id"`
}

type DashboardCreatedPayload struct {
	DashboardID string `json:"dashboard_id"`
	Name        string `json:"name"`
}

type DashboardUpdatePayload struct {
	DashboardID   string   `json:"dashboard_id"`
	ChangedFields []string `json:"changed_fields,omitempty"`
}

type DashboardDeletedPayload struct {
	DashboardID string `json:"dashboard_id"`
}

type WidgetDeletedPayload struct {
	WidgetID    string `json:"widget_id"`
	DashboardID string `json:"dashboard_id"`
}

type DataUpdatePayload struct {
	DashboardID string      `json:"dashboard_id"`
	WidgetID    string      `json:"widget_id"`
	Data        interface{} `json:"data,omitempty"`
}

// State is the per-connection command state machine.
type State int

const (
	StateConnected State = iota
	StateSubscribed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MessageWriter is the slice of *websocket.Conn the outbound path needs.
// Tests substitute a fake.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Connection is one open realtime client link. Outbound messages go through a
// buffered channel drained by a single writer goroutine, so delivery order per
// connection matches enqueue order and slow clients never block a broadcast.
type Connection struct {
	ID          string
	ConnectedAt time.Time

	writer MessageWriter
	send   chan []byte
	done   chan struct{}

	mu        sync.RWMutex
	state     State
	closeOnce sync.Once
}

func newConnection(id string, writer MessageWriter, bufferSize int, log *zap.Logger) *Connection {
	c := &Connection{
		ID:          id,
		ConnectedAt: time.Now(),
		writer:      writer,
		send:        make(chan []byte, bufferSize),
		done:        make(chan struct{}),
		state:       StateConnected,
	}
	go c.writePump(log)
	return c
}

func (c *Connection) writePump(log *zap.Logger) {
	for {
		select {
		case msg := <-c.send:
			if err := c.writer.WriteMessage(websocket.TextMessage, msg); err != nil {
				// Failed deliveries are dropped; the next state-changing
				// event re-broadcasts current state anyway.
				log.Debug("websocket write failed",
					zap.String("connection_id", c.ID),
					zap.Error(err))
			}
		case <-c.done:
			return
		}
	}
}

// Enqueue hands a serialized message to the writer goroutine without
// blocking. Messages to closed connections or past a full buffer are dropped.
func (c *Connection) Enqueue(msg []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Connection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateClosed {
		c.state = s
	}
}

// Close stops the writer goroutine. Idempotent.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		close(c.done)
	})
}
