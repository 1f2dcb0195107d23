package broker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
)

// ensure interface compliance
var _ ports.StateBroker = (*Broker)(nil)

// room 保存單一房間的觀察者集合與已派送的最高提交版本
type room struct {
	latest uint64
	subs   map[uint64]chan *domain.RoomState
}

// Broker 是行程內的訂閱派送器。
// 每個訂閱者持有一條容量為 1 的 channel；當提交速度超過消費速度時，
// 較舊的未消費值會被最新值取代 (last-value-wins)，
// 但仍在訂閱中的觀察者保證最終收到最新提交值。
//
// 提交在 store 釋放鎖之後才發佈，不同 goroutine 的 Publish 可能亂序抵達；
// Broker 以狀態上的 Revision 判斷先後，晚到的舊提交直接丟棄，
// 確保最新提交不會被過期值蓋掉。
type Broker struct {
	mu     sync.Mutex
	rooms  map[string]*room
	nextID uint64
	logger *slog.Logger
}

// New 建立 Broker
func New(logger *slog.Logger) *Broker {
	return &Broker{
		rooms:  make(map[string]*room),
		logger: logger.With("component", "broker"),
	}
}

// Subscribe 註冊一個房間觀察者並回傳訂閱控制代碼
func (b *Broker) Subscribe(roomID string) *ports.Subscription {
	ch := make(chan *domain.RoomState, 1)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	r, ok := b.rooms[roomID]
	if !ok {
		r = &room{subs: make(map[uint64]chan *domain.RoomState)}
		b.rooms[roomID] = r
	}
	r.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		r, ok := b.rooms[roomID]
		if !ok {
			return
		}
		if current, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(current)
		}
		if len(r.subs) == 0 {
			delete(b.rooms, roomID)
		}
	}
	return ports.NewSubscription(roomID, ch, cancel)
}

// Publish 將已提交的狀態派送給該房間所有觀察者。
// Revision 不高於已派送值的狀態視為晚到的舊提交，直接丟棄。
// 派送後的狀態應視為唯讀快照。
func (b *Broker) Publish(_ context.Context, roomID string, state *domain.RoomState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.rooms[roomID]
	if !ok {
		return
	}
	if state.Revision != 0 {
		if state.Revision <= r.latest {
			b.logger.Debug("drop stale commit", "room_id", roomID, "revision", state.Revision, "latest", r.latest)
			return
		}
		r.latest = state.Revision
	}

	for _, ch := range r.subs {
		offer(ch, state)
	}
}

// offer 以 last-value-wins 的方式投遞：channel 已滿時先丟棄舊值再放入新值，
// 全程不阻塞，慢速消費者不會拖住提交路徑。
// Publish 在鎖內依 Revision 遞增順序呼叫，因此被丟棄的必為較舊值。
func offer(ch chan *domain.RoomState, state *domain.RoomState) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- state:
	default:
	}
}
