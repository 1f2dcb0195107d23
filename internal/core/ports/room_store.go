package ports

import (
	"context"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
)

// TxFunc 是交易回呼：輸入當前已物化的房間狀態，回傳欲提交的新狀態。
// 回傳 error 代表中止 (Abort)：不產生任何變更與通知，錯誤原封不動回傳給呼叫者。
// 發生寫入衝突時，fn 會以最新已提交的值被重新呼叫，因此 fn 不得保留對輸入的別名、
// 也不得依賴只能執行一次的副作用。
type TxFunc func(state *domain.RoomState) (*domain.RoomState, error)

// RoomStore 是唯一允許變更 RoomState 的地方，提供原子的 read-modify-write。
//
// 實作必須保證:
//   - Transact 在房間不存在時，先以確定性預設值物化狀態再呼叫 fn
//   - fn 的結果原子提交，且僅在成功後對所有後續讀者可見
//   - 偵測到 fn 讀到的值已非最新提交值時，改以新值重新呼叫 fn (樂觀併發重試)，
//     重試有上限，耗盡時回傳 ErrTxConflict 且狀態未被修改
//   - 單一房間的提交可線性化：不會有兩筆提交基於同一個 pre-image
//   - 成功提交後通知 StatePublisher
type RoomStore interface {
	// Get 取得房間當前狀態的快照 (不存在時回傳 ErrRoomNotFound)
	Get(ctx context.Context, roomID string) (*domain.RoomState, error)

	// Transact 以樂觀併發執行一次交易，回傳提交後的狀態
	Transact(ctx context.Context, roomID string, fn TxFunc) (*domain.RoomState, error)

	// Close 釋放底層資源
	Close() error
}
