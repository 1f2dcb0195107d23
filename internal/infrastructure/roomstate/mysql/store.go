package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	pkgMysql "github.com/aquaraid/go-raid-server/pkg/mysql"
)

// maxCommitAttempts 樂觀交易的重試上限
const maxCommitAttempts = 10

// ensure interface compliance
var _ ports.RoomStore = (*Store)(nil)

// roomRecord 是 room_states 資料表的映射。
// version 欄位承載樂觀鎖：提交時以 WHERE room_id = ? AND version = ? 做
// compare-and-swap，RowsAffected 為 0 代表 pre-image 已過期。
type roomRecord struct {
	RoomID    string    `gorm:"column:room_id;primaryKey;size:64"`
	Version   uint64    `gorm:"column:version;not null"`
	State     []byte    `gorm:"column:state;type:json;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定資料表名稱
func (roomRecord) TableName() string {
	return "room_states"
}

// Store 以 MySQL (gorm) 實作 ports.RoomStore，提供可持久化的後端。
type Store struct {
	client    *pkgMysql.Client
	publisher ports.StatePublisher
	logger    *slog.Logger
}

// NewStore 建立 MySQL RoomStore。
// Store 取得 client 的所有權，Close 時一併關閉連線。
func NewStore(client *pkgMysql.Client, publisher ports.StatePublisher, logger *slog.Logger) *Store {
	return &Store{
		client:    client,
		publisher: publisher,
		logger:    logger.With("component", "roomstate_mysql"),
	}
}

// AutoMigrate 建立 room_states 資料表
func (s *Store) AutoMigrate() error {
	return s.client.DB().AutoMigrate(&roomRecord{})
}

// Get 取得房間當前狀態的快照
func (s *Store) Get(ctx context.Context, roomID string) (*domain.RoomState, error) {
	var rec roomRecord
	err := s.client.DB().WithContext(ctx).First(&rec, "room_id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room %q: %w", roomID, err)
	}

	var state domain.RoomState
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return nil, fmt.Errorf("unmarshal room %q: %w", roomID, err)
	}
	state.Normalize()
	return &state, nil
}

// Transact 以樂觀併發執行一次交易
func (s *Store) Transact(ctx context.Context, roomID string, fn ports.TxFunc) (*domain.RoomState, error) {
	db := s.client.DB().WithContext(ctx)

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		// 1. 讀取當前列；不存在時以確定性預設值物化 (版本 0，提交走 INSERT)
		var baseVersion uint64
		cur := domain.NewRoomState()

		var rec roomRecord
		err := db.First(&rec, "room_id = ?", roomID).Error
		switch {
		case err == nil:
			baseVersion = rec.Version
			if err := json.Unmarshal(rec.State, cur); err != nil {
				return nil, fmt.Errorf("unmarshal room %q: %w", roomID, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 首次存取
		default:
			return nil, fmt.Errorf("read room %q: %w", roomID, err)
		}
		cur.Normalize()

		// 2. 執行交易回呼；Abort 原封不動往外傳
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		next.Normalize()

		// Revision 與 version 欄位同步遞增，fn 對它的改動在此被覆寫
		next.Revision = baseVersion + 1

		payload, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("marshal room %q: %w", roomID, err)
		}

		// 3. compare-and-swap 提交
		if baseVersion == 0 {
			err := db.Create(&roomRecord{
				RoomID:  roomID,
				Version: 1,
				State:   payload,
			}).Error
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// 另一個寫入者搶先物化了房間，以新值重跑
					s.logger.Debug("commit conflict on insert, retrying", "room_id", roomID, "attempt", attempt)
					continue
				}
				return nil, fmt.Errorf("insert room %q: %w", roomID, err)
			}
		} else {
			res := db.Model(&roomRecord{}).
				Where("room_id = ? AND version = ?", roomID, baseVersion).
				Updates(map[string]any{
					"version": baseVersion + 1,
					"state":   payload,
				})
			if res.Error != nil {
				return nil, fmt.Errorf("update room %q: %w", roomID, res.Error)
			}
			if res.RowsAffected == 0 {
				s.logger.Debug("commit conflict, retrying", "room_id", roomID, "attempt", attempt)
				continue
			}
		}

		// 發佈獨立的深拷貝，訂閱者與交易呼叫者不共享別名
		s.publisher.Publish(ctx, roomID, next.Clone())
		return next, nil
	}

	s.logger.Warn("commit retry limit exhausted", "room_id", roomID, "attempts", maxCommitAttempts)
	return nil, ports.ErrTxConflict
}

// Close 關閉底層 MySQL 連線
func (s *Store) Close() error {
	return s.client.Close()
}
