package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	pkgRedis "github.com/aquaraid/go-raid-server/pkg/redis"
)

const (
	// KeyRoomState 房間狀態的鍵格式
	KeyRoomState = "raid:room:%s:state"

	// maxCommitAttempts 樂觀交易的重試上限。
	// 同房間的併發行動會互相打斷 WATCH，重試對呼叫者不可見 (只增加延遲)；
	// 耗盡上限時以 ErrTxConflict 回報，狀態保證未被修改。
	maxCommitAttempts = 10
)

// ensure interface compliance
var _ ports.RoomStore = (*Store)(nil)

// Store 以 Redis WATCH/MULTI/EXEC 實作 ports.RoomStore。
// 每個房間一個鍵；WATCH 監看該鍵，若 fn 讀到的值在 EXEC 前被其他連線改寫，
// EXEC 會失敗，Store 便以最新值重新呼叫 fn，確保沒有兩筆提交基於同一個 pre-image。
type Store struct {
	rds       *pkgRedis.Client
	publisher ports.StatePublisher
	logger    *slog.Logger
}

// NewStore 建立 Redis RoomStore。
// Store 取得 client 的所有權，Close 時一併關閉連線。
func NewStore(rds *pkgRedis.Client, publisher ports.StatePublisher, logger *slog.Logger) *Store {
	return &Store{
		rds:       rds,
		publisher: publisher,
		logger:    logger.With("component", "roomstate_redis"),
	}
}

// Get 取得房間當前狀態的快照
func (s *Store) Get(ctx context.Context, roomID string) (*domain.RoomState, error) {
	key := fmt.Sprintf(KeyRoomState, roomID)

	var state domain.RoomState
	err := s.rds.GetStruct(ctx, key, &state)
	if err != nil {
		if pkgRedis.IsNil(err) {
			return nil, ports.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room %q: %w", roomID, err)
	}
	state.Normalize()
	return &state, nil
}

// Transact 以樂觀併發執行一次交易
func (s *Store) Transact(ctx context.Context, roomID string, fn ports.TxFunc) (*domain.RoomState, error) {
	key := fmt.Sprintf(KeyRoomState, roomID)

	var committed *domain.RoomState

	txf := func(tx *goredis.Tx) error {
		// 1. 讀取當前值；房間不存在時以確定性預設值物化
		cur := domain.NewRoomState()
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cur); err != nil {
				return fmt.Errorf("unmarshal room %q: %w", roomID, err)
			}
		case pkgRedis.IsNil(err):
			// 首次存取，使用預設狀態
		default:
			return fmt.Errorf("read room %q: %w", roomID, err)
		}
		cur.Normalize()

		// 2. 執行交易回呼；Abort 原封不動往外傳，不做任何寫入
		next, err := fn(cur)
		if err != nil {
			return err
		}
		next.Normalize()

		// Revision 由 store 指派，fn 對它的改動在此被覆寫；
		// WATCH 保證提交線性化，因此同房間的 Revision 嚴格遞增
		next.Revision = cur.Revision + 1

		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal room %q: %w", roomID, err)
		}

		// 3. MULTI/EXEC 提交；WATCH 的鍵被改寫時這裡會回傳 TxFailedErr
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		committed = next
		return nil
	}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		err := s.rds.Watch(ctx, txf, key)
		if err == nil {
			// 發佈獨立的深拷貝，訂閱者與交易呼叫者不共享別名
			s.publisher.Publish(ctx, roomID, committed.Clone())
			return committed, nil
		}
		if pkgRedis.IsTxFailed(err) {
			s.logger.Debug("commit conflict, retrying", "room_id", roomID, "attempt", attempt)
			continue
		}
		// Abort (驗證錯誤) 或 Redis 系統錯誤：不重試，狀態未被修改
		return nil, err
	}

	s.logger.Warn("commit retry limit exhausted", "room_id", roomID, "attempts", maxCommitAttempts)
	return nil, ports.ErrTxConflict
}

// Close 關閉底層 Redis 連線
func (s *Store) Close() error {
	return s.rds.Close()
}
