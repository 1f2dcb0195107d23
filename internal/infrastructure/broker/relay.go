package broker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	pkgRedis "github.com/aquaraid/go-raid-server/pkg/redis"
)

// ChannelRoomState 是跨 Pod 派送房間狀態用的 Redis 頻道
const ChannelRoomState = "raid:room_state"

// ensure interface compliance
var _ ports.StatePublisher = (*Relay)(nil)

// envelope 是 Redis 頻道上的訊息格式
type envelope struct {
	RoomID string            `json:"roomId"`
	State  *domain.RoomState `json:"state"`
}

// Relay 透過 Redis Pub/Sub 將提交事件橋接到所有 Pod。
// 本地提交只發佈到 Redis 頻道；本地 Broker 統一由頻道訂閱回灌，
// 因此不論提交發生在哪個 Pod，每個 Pod 的觀察者看到的派送路徑都一致。
type Relay struct {
	rds    *pkgRedis.Client
	local  *Broker
	logger *slog.Logger
}

// NewRelay 建立 Relay
func NewRelay(rds *pkgRedis.Client, local *Broker, logger *slog.Logger) *Relay {
	return &Relay{
		rds:    rds,
		local:  local,
		logger: logger.With("component", "broker_relay"),
	}
}

// Start 訂閱 Redis 頻道並將收到的提交回灌給本地 Broker
func (r *Relay) Start(ctx context.Context) error {
	return r.rds.Subscribe(ctx, ChannelRoomState, func(payload string) {
		var msg envelope
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			r.logger.Warn("drop malformed room state message", "error", err)
			return
		}
		if msg.State == nil {
			return
		}
		msg.State.Normalize()
		r.local.Publish(ctx, msg.RoomID, msg.State)
	})
}

// Publish 將提交後的狀態發佈到 Redis 頻道
func (r *Relay) Publish(ctx context.Context, roomID string, state *domain.RoomState) {
	data, err := json.Marshal(envelope{RoomID: roomID, State: state})
	if err != nil {
		r.logger.Error("marshal room state failed", "room_id", roomID, "error", err)
		return
	}
	if err := r.rds.Publish(ctx, ChannelRoomState, data); err != nil {
		// 派送失敗不影響已提交的交易，訂閱端會在下一次提交時收到最新值
		r.logger.Warn("publish room state failed", "room_id", roomID, "error", err)
	}
}
