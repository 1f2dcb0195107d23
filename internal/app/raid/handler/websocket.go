package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aquaraid/go-raid-server/internal/app/raid"
	"github.com/aquaraid/go-raid-server/internal/app/raid/protocol"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	"github.com/aquaraid/go-raid-server/pkg/wss"
)

const (
	// tagSubscription 連線上附掛的房間訂閱
	tagSubscription = "room_subscription"

	// actionTimeout 單一行動的處理逾時
	actionTimeout = 5 * time.Second
)

// ensure interface compliance
var _ wss.Subscriber = (*WebsocketHandler)(nil)

// WebsocketHandler 實作 wss.Subscriber，是推播通道的邊界：
// 行動請求轉交 RaidService，訂閱請求掛上 broker 的狀態串流。
type WebsocketHandler struct {
	svc    *raid.Service
	logger *slog.Logger
}

// NewWebsocketHandler 建立 WebSocket 事件處理器
func NewWebsocketHandler(svc *raid.Service, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		svc:    svc,
		logger: logger.With("component", "ws_handler"),
	}
}

// OnConnect 當新連線建立時觸發
func (h *WebsocketHandler) OnConnect(conn wss.Client) {
	h.logger.Info("client connected", "id", conn.ID())
}

// OnDisconnect 當連線斷開時觸發，取消該連線掛著的房間訂閱
func (h *WebsocketHandler) OnDisconnect(conn wss.Client) {
	h.cancelSubscription(conn)
	h.logger.Info("client disconnected", "id", conn.ID())
}

// OnMessage 當收到訊息時觸發
func (h *WebsocketHandler) OnMessage(conn wss.Client, msg []byte) {
	var envelope protocol.Envelope
	if err := json.Unmarshal(msg, &envelope); err != nil {
		h.logger.Warn("invalid JSON envelope", "error", err)
		h.sendError(conn, "unknown", "invalid JSON format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	switch envelope.Action {
	case protocol.ActionJoin:
		h.handleJoin(ctx, conn, envelope.Payload)
	case protocol.ActionDrink:
		h.handleDrink(ctx, conn, envelope.Payload)
	case protocol.ActionGratitude:
		h.handleGratitude(ctx, conn, envelope.Payload)
	case protocol.ActionSubscribe:
		h.handleSubscribe(conn, envelope.Payload)
	case protocol.ActionUnsubscribe:
		h.cancelSubscription(conn)
		h.sendResponse(conn, protocol.Response{Action: protocol.ActionUnsubscribe})
	default:
		h.sendError(conn, envelope.Action, "unknown action")
	}
}

// -------------------------------------------------------------
// Handlers
// -------------------------------------------------------------

func (h *WebsocketHandler) handleJoin(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.JoinReq
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, protocol.ActionJoin, "invalid payload")
		return
	}

	state, err := h.svc.JoinRoom(ctx, req.RoomID, req.PlayerID, req.Name)
	if err != nil {
		h.sendError(conn, protocol.ActionJoin, err.Error())
		return
	}
	h.sendResponse(conn, protocol.Response{Action: protocol.ActionJoin, Data: state})
}

func (h *WebsocketHandler) handleDrink(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.DrinkReq
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, protocol.ActionDrink, "invalid payload")
		return
	}

	outcome, err := h.svc.DrinkWater(ctx, req.RoomID, req.PlayerID, req.Ml)
	if err != nil {
		h.sendError(conn, protocol.ActionDrink, err.Error())
		return
	}
	h.sendResponse(conn, protocol.Response{Action: protocol.ActionDrink, Data: outcome})
}

func (h *WebsocketHandler) handleGratitude(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.GratitudeReq
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, protocol.ActionGratitude, "invalid payload")
		return
	}

	buff, err := h.svc.SubmitGratitude(ctx, req.RoomID, req.PlayerID, req.Text)
	if err != nil {
		h.sendError(conn, protocol.ActionGratitude, err.Error())
		return
	}
	h.sendResponse(conn, protocol.Response{Action: protocol.ActionGratitude, Data: buff})
}

// handleSubscribe 將連線掛上房間的狀態串流。
// 一條連線同時只維持一個訂閱，重新訂閱會先取消舊的。
func (h *WebsocketHandler) handleSubscribe(conn wss.Client, payload []byte) {
	var req protocol.SubscribeReq
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		h.sendError(conn, protocol.ActionSubscribe, "invalid payload")
		return
	}

	h.cancelSubscription(conn)

	sub := h.svc.Subscribe(req.RoomID)
	conn.SetTag(tagSubscription, sub)

	// 訂閱期間由獨立 goroutine 轉送已提交的狀態；
	// Cancel 會關閉 sub.C，goroutine 隨之結束
	go func() {
		for state := range sub.C {
			data, err := json.Marshal(protocol.Response{Action: protocol.ActionRoomState, Data: state})
			if err != nil {
				h.logger.Error("marshal room state failed", "room_id", sub.RoomID, "error", err)
				continue
			}
			if err := conn.Send(data); err != nil {
				h.logger.Warn("push room state failed", "conn_id", conn.ID(), "error", err)
			}
		}
	}()

	h.sendResponse(conn, protocol.Response{Action: protocol.ActionSubscribe})
	h.logger.Info("subscribed", "conn_id", conn.ID(), "room_id", req.RoomID)
}

func (h *WebsocketHandler) cancelSubscription(conn wss.Client) {
	if v, ok := conn.GetTag(tagSubscription); ok {
		if sub, ok := v.(*ports.Subscription); ok {
			sub.Cancel()
		}
		conn.SetTag(tagSubscription, (*ports.Subscription)(nil))
	}
}

// -------------------------------------------------------------
// Helpers
// -------------------------------------------------------------

func (h *WebsocketHandler) sendResponse(conn wss.Client, resp protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("marshal response failed", "action", resp.Action, "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		h.logger.Warn("send response failed", "conn_id", conn.ID(), "error", err)
	}
}

func (h *WebsocketHandler) sendError(conn wss.Client, action protocol.RaidProtocol, message string) {
	h.sendResponse(conn, protocol.Response{Action: action, Error: message})
}
