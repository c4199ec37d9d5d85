package realtime

import (
	"context"
	"encoding/json"
	"time"

	"go-opsboard/internal/apperrors"

	"github.com/gofiber/contrib/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DashboardAccess re-checks a requester's read access at subscribe time, so
// private-dashboard events are never leaked to unauthorized subscribers.
// Implemented by the dashboard service; wired as an adapter in main.
type DashboardAccess interface {
	CanView(ctx context.Context, dashboardID string, userID primitive.ObjectID) error
}

type RealtimeController struct {
	Registry *Registry
	Access   DashboardAccess
	Logger   *zap.Logger
}

func NewRealtimeController(registry *Registry, access DashboardAccess, logger *zap.Logger) *RealtimeController {
	return &RealtimeController{
		Registry: registry,
		Access:   access,
		Logger:   logger,
	}
}

// HandleWebSocket runs the per-connection read loop: register, announce the
// connection id, then dispatch commands until the socket drops.
func (ctrl *RealtimeController) HandleWebSocket(c *websocket.Conn) {
	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		ctrl.Logger.Warn("websocket connect without valid identity", zap.Error(err))
		c.Close()
		return
	}

	conn := ctrl.Registry.Register(c)
	defer func() {
		ctrl.Registry.Deregister(conn.ID)
		c.Close()
	}()

	ctrl.Logger.Info("websocket connected",
		zap.String("connection_id", conn.ID),
		zap.String("user_id", userIDStr))

	ctrl.reply(conn, Envelope{
		Type:    MsgConnectionEstablished,
		Payload: ConnectionEstablishedPayload{ConnectionID: conn.ID},
	})

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			break
		}
		ctrl.handleMessage(conn, userID, raw)
	}

	ctrl.Logger.Info("websocket disconnected", zap.String("connection_id", conn.ID))
}

// handleMessage dispatches one inbound command. A bad message answers with an
// ERROR envelope on this connection only; the connection stays open and no
// other connection is affected.
func (ctrl *RealtimeController) handleMessage(conn *Connection, userID primitive.ObjectID, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		ctrl.replyError(conn, CodeMessageHandlingError, "unparseable message: "+err.Error())
		return
	}

	switch msg.Type {
	case MsgPing:
		ctrl.reply(conn, Envelope{Type: MsgPong})

	case MsgSubscribeDashboard:
		ctrl.handleSubscribe(conn, userID, msg.DashboardID)

	case MsgUnsubscribeDashboard:
		ctrl.Registry.Unsubscribe(conn.ID)
		conn.setState(StateConnected)
		ctrl.reply(conn, Envelope{Type: MsgUnsubscriptionConfirmed})

	default:
		ctrl.replyError(conn, CodeUnknownMessageType, "unknown message type: "+msg.Type)
	}
}

func (ctrl *RealtimeController) handleSubscribe(conn *Connection, userID primitive.ObjectID, dashboardID string) {
	if dashboardID == "" {
		ctrl.replyError(conn, CodeInvalidDashboardID, "dashboard_id is required")
		return
	}

	if err := ctrl.Access.CanView(context.Background(), dashboardID, userID); err != nil {
		switch {
		case apperrors.IsValidation(err):
			ctrl.replyError(conn, CodeInvalidDashboardID, "malformed dashboard id")
		default:
			// AccessDenied and NotFound both read as a denied subscription.
			ctrl.replyError(conn, CodeSubscriptionDenied, "dashboard not accessible")
		}
		return
	}

	if !ctrl.Registry.Subscribe(conn.ID, dashboardID) {
		// Connection deregistered while the access check ran.
		return
	}
	conn.setState(StateSubscribed)
	ctrl.reply(conn, Envelope{
		Type:    MsgSubscriptionConfirmed,
		Payload: SubscriptionConfirmedPayload{DashboardID: dashboardID},
	})
}

func (ctrl *RealtimeController) reply(conn *Connection, env Envelope) {
	env.Timestamp = time.Now()
	msg, err := json.Marshal(env)
	if err != nil {
		ctrl.Logger.Error("failed to serialize reply", zap.Error(err))
		return
	}
	if err := conn.Enqueue(msg); err != nil {
		ctrl.Logger.Debug("reply dropped",
			zap.String("connection_id", conn.ID),
			zap.Error(err))
	}
}

func (ctrl *RealtimeController) replyError(conn *Connection, code, message string) {
	ctrl.reply(conn, Envelope{
		Type:         MsgError,
		ErrorCode:    code,
		ErrorMessage: message,
	})
}
