package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
)

// maxCommitAttempts 樂觀交易的重試上限
const maxCommitAttempts = 10

// ensure interface compliance
var _ ports.RoomStore = (*Store)(nil)

// Store 是行程內的 ports.RoomStore 實作，供本機開發與測試使用。
// 與 Redis 後端採用相同的樂觀併發協定：fn 在鎖外以快照執行，
// 提交時以 Revision 比對偵測過期的 pre-image，過期則以新值重跑 fn。
// 所有進出 Store 的狀態都經過深拷貝，外部持有的值不會與內部儲存共享別名。
type Store struct {
	mu        sync.RWMutex
	rooms     map[string]*domain.RoomState
	publisher ports.StatePublisher
	logger    *slog.Logger
}

// NewStore 建立記憶體 RoomStore
func NewStore(publisher ports.StatePublisher, logger *slog.Logger) *Store {
	return &Store{
		rooms:     make(map[string]*domain.RoomState),
		publisher: publisher,
		logger:    logger.With("component", "roomstate_memory"),
	}
}

// Get 取得房間當前狀態的快照
func (s *Store) Get(_ context.Context, roomID string) (*domain.RoomState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[roomID]
	if !ok {
		return nil, ports.ErrRoomNotFound
	}
	return state.Clone(), nil
}

// Transact 以樂觀併發執行一次交易
func (s *Store) Transact(ctx context.Context, roomID string, fn ports.TxFunc) (*domain.RoomState, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		// 1. 讀取快照與版本；房間不存在時以確定性預設值物化 (Revision 0)
		s.mu.RLock()
		var baseRevision uint64
		var cur *domain.RoomState
		if state, ok := s.rooms[roomID]; ok {
			baseRevision = state.Revision
			cur = state.Clone()
		} else {
			cur = domain.NewRoomState()
		}
		s.mu.RUnlock()
		cur.Normalize()

		// 2. 在鎖外執行回呼；Abort 直接回傳，不產生變更
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		next.Normalize()

		// 3. 版本比對後提交；pre-image 已過期則重試。
		// Revision 由 store 指派，fn 對它的改動在此被覆寫
		s.mu.Lock()
		var curRevision uint64
		if state, ok := s.rooms[roomID]; ok {
			curRevision = state.Revision
		}
		if curRevision != baseRevision {
			s.mu.Unlock()
			s.logger.Debug("commit conflict, retrying", "room_id", roomID, "attempt", attempt)
			continue
		}
		next.Revision = baseRevision + 1
		s.rooms[roomID] = next.Clone()
		s.mu.Unlock()

		// 發佈獨立的深拷貝，訂閱者與交易呼叫者不共享別名
		s.publisher.Publish(ctx, roomID, next.Clone())
		return next, nil
	}

	s.logger.Warn("commit retry limit exhausted", "room_id", roomID, "attempts", maxCommitAttempts)
	return nil, ports.ErrTxConflict
}

// Close 釋放資源 (記憶體後端無外部資源)
func (s *Store) Close() error {
	return nil
}
