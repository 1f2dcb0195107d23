package raid

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/aquaraid/go-raid-server/internal/core/combat"
	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
)

// Service 是交易協調者：把 resolver 呼叫包進 RoomStore 的原子交易，
// 衝突由 store 透明重試，驗證失敗以 Abort 短路 (不重試、不變更)，
// 並將結果整形後回傳給呼叫者。
//
// 關於感恩 Buff 的隨機性：亂數在進入交易「之前」抽選一次，
// 重試時重放同一個結果，因此衝突重試不會改變玩家抽到的 Buff。
type Service struct {
	store    ports.RoomStore
	broker   ports.StateBroker
	resolver *combat.Resolver
	roll     func() float64
	logger   *slog.Logger
}

// Option 自訂 Service 行為 (測試用)
type Option func(*Service)

// WithRollSource 注入 [0,1) 均勻亂數來源
func WithRollSource(roll func() float64) Option {
	return func(s *Service) { s.roll = roll }
}

// NewService 建立 RaidService
func NewService(store ports.RoomStore, broker ports.StateBroker, resolver *combat.Resolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		broker:   broker,
		resolver: resolver,
		roll:     rand.Float64,
		logger:   logger.With("component", "raid_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// JoinRoom 將玩家加入房間。
// 玩家已存在時為冪等操作：既有的統計、生命與 Buff 一律保留。
func (s *Service) JoinRoom(ctx context.Context, roomID, playerID, name string) (*domain.RoomState, error) {
	if playerID == "" {
		return nil, fmt.Errorf("join room %q: player id must not be empty", roomID)
	}

	state, err := s.store.Transact(ctx, roomID, func(state *domain.RoomState) (*domain.RoomState, error) {
		if _, ok := state.Players[playerID]; ok {
			return state, nil
		}
		next := state.Clone()
		next.Players[playerID] = domain.NewPlayer(playerID, name)
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player joined", "room_id", roomID, "player_id", playerID)
	return state, nil
}

// DrinkWater 提交一次飲水攻擊
func (s *Service) DrinkWater(ctx context.Context, roomID, playerID string, ml int) (*domain.DrinkOutcome, error) {
	if ml <= 0 {
		return nil, fmt.Errorf("drink %dml: %w", ml, ports.ErrInvalidAmount)
	}

	var outcome *domain.DrinkOutcome
	_, err := s.store.Transact(ctx, roomID, func(state *domain.RoomState) (*domain.RoomState, error) {
		next, out, err := s.resolver.ResolveDrink(state, playerID, ml)
		if err != nil {
			return nil, err
		}
		outcome = out
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("drink resolved",
		"room_id", roomID,
		"player_id", playerID,
		"ml", ml,
		"damage", outcome.DamageDealt,
		"healed", outcome.Healed,
		"boss_defeated", outcome.BossDefeated,
	)
	return outcome, nil
}

// SubmitGratitude 提交一篇感恩日記並抽選 Buff
func (s *Service) SubmitGratitude(ctx context.Context, roomID, playerID, text string) (domain.BuffType, error) {
	if strings.TrimSpace(text) == "" {
		return domain.BuffNone, fmt.Errorf("submit gratitude: %w", ports.ErrEmptyGratitude)
	}

	// 只抽一次，交易重試時重放同一個 roll
	roll := s.roll()

	var buff domain.BuffType
	_, err := s.store.Transact(ctx, roomID, func(state *domain.RoomState) (*domain.RoomState, error) {
		next, granted, err := s.resolver.ResolveGratitude(state, playerID, text, roll)
		if err != nil {
			return nil, err
		}
		buff = granted
		return next, nil
	})
	if err != nil {
		return domain.BuffNone, err
	}

	s.logger.Info("gratitude resolved", "room_id", roomID, "player_id", playerID, "buff", buff)
	return buff, nil
}

// ResetRoom 以確定性預設狀態覆寫房間 (管理/除錯用，非正常遊戲流程)
func (s *Service) ResetRoom(ctx context.Context, roomID string) (*domain.RoomState, error) {
	state, err := s.store.Transact(ctx, roomID, func(_ *domain.RoomState) (*domain.RoomState, error) {
		return domain.NewRoomState(), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("room reset", "room_id", roomID)
	return state, nil
}

// SetDailyEvent 設定房間的每日事件 (倍率 0 視為 1，負倍率拒絕)
func (s *Service) SetDailyEvent(ctx context.Context, roomID string, event domain.DailyEvent) (*domain.RoomState, error) {
	if event.Multiplier < 0 {
		return nil, fmt.Errorf("set daily event with multiplier %v: %w", event.Multiplier, ports.ErrInvalidMultiplier)
	}
	if event.Multiplier == 0 {
		event.Multiplier = 1
	}

	state, err := s.store.Transact(ctx, roomID, func(state *domain.RoomState) (*domain.RoomState, error) {
		next := state.Clone()
		ev := event
		next.DailyEvent = &ev
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("daily event set", "room_id", roomID, "type", event.Type, "multiplier", event.Multiplier)
	return state, nil
}

// Room 取得房間當前狀態的唯讀快照
func (s *Service) Room(ctx context.Context, roomID string) (*domain.RoomState, error) {
	return s.store.Get(ctx, roomID)
}

// Subscribe 訂閱房間的已提交狀態串流
func (s *Service) Subscribe(roomID string) *ports.Subscription {
	return s.broker.Subscribe(roomID)
}
