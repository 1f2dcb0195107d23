package ports

import (
	"context"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
)

// StatePublisher 在每次成功提交後收到該房間完整的新狀態。
// 它是提交事件的純觀察者，永遠不會變更狀態。
type StatePublisher interface {
	Publish(ctx context.Context, roomID string, state *domain.RoomState)
}

// StateBroker 管理每個房間的觀察者集合並派送已提交的狀態。
//
// 派送保證: 每個仍在訂閱中的觀察者最終會收到最新提交值 (最後一筆不會被永久丟棄)；
// 當提交速度超過觀察者消費速度時，中間的提交可以被合併 (last-value-wins)。
// 取消訂閱立即生效，之後不再有任何派送義務。
type StateBroker interface {
	StatePublisher

	// Subscribe 註冊一個房間觀察者
	Subscribe(roomID string) *Subscription
}

// Subscription 代表一個活躍的房間觀察者。
// 從 C 讀取已提交的 RoomState；用完呼叫 Cancel 停止派送。
type Subscription struct {
	RoomID string
	C      <-chan *domain.RoomState

	cancel func()
}

// NewSubscription 由 broker 實作建構訂閱控制代碼
func NewSubscription(roomID string, ch <-chan *domain.RoomState, cancel func()) *Subscription {
	return &Subscription{RoomID: roomID, C: ch, cancel: cancel}
}

// Cancel 取消訂閱，立即停止後續派送 (可重複呼叫)
func (s *Subscription) Cancel() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}
