package combat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
)

const (
	// BaseDamage 一次飲水攻擊的基礎傷害
	BaseDamage = 100

	// Buff 抽選的機率區間: roll < 0.2 -> HEAL_LIFE, roll < 0.5 -> CRITICAL_X3, 其餘 -> DOUBLE_DMG
	healRollUpper = 0.2
	critRollUpper = 0.5
)

// Resolver 是純粹的戰鬥結算邏輯：給定狀態與行動，計算下一個狀態與結果。
// 時鐘與日誌 ID 來源皆為顯式注入，隨機 roll 由呼叫者傳入，
// 因此對相同輸入的結算結果是確定性的，方便測試與交易重放。
// Resolver 不會就地修改輸入狀態，一律回傳深拷貝後的新值。
type Resolver struct {
	now   func() time.Time
	newID func() string
}

// Option 自訂 Resolver 的時間與 ID 來源 (測試用)
type Option func(*Resolver)

// WithClock 注入時鐘
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithIDSource 注入日誌 ID 產生器
func WithIDSource(newID func() string) Option {
	return func(r *Resolver) { r.newID = newID }
}

// NewResolver 建立 Resolver，預設使用系統時鐘與 UUID
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveDrink 結算一次飲水攻擊。
//
// 流程:
//  1. 玩家不存在或 Boss 已被擊倒 -> 拒絕 (零變更、零日誌)
//  2. 基礎傷害 100，套用並無條件清除玩家當前 Buff
//  3. 未觸發回復時套用每日事件倍率 (floor)
//  4. 傷害以 Boss 剩餘血量截斷後扣血，並累計玩家統計
//  5. 附加一筆日誌後回傳新狀態與結果
func (r *Resolver) ResolveDrink(state *domain.RoomState, playerID string, ml int) (*domain.RoomState, *domain.DrinkOutcome, error) {
	if _, ok := state.Players[playerID]; !ok {
		return nil, nil, fmt.Errorf("resolve drink for %q: %w", playerID, ports.ErrPlayerNotFound)
	}
	if state.Boss.Defeated() {
		return nil, nil, fmt.Errorf("resolve drink for %q: %w", playerID, ports.ErrBossDefeated)
	}

	next := state.Clone()
	player := next.Players[playerID]

	damage := BaseDamage
	healed := false
	priorBuff := player.ActiveBuff

	// Buff 是單次消耗品：不論效果為何，這裡一律清除，絕不留下「半消耗」狀態
	switch priorBuff {
	case domain.BuffCriticalX3:
		damage *= 3
	case domain.BuffDoubleDmg:
		damage *= 2
	case domain.BuffHealLife:
		damage = 0
		if player.HP < domain.PlayerMaxHP {
			player.HP++
			healed = true
		}
	}
	player.ActiveBuff = domain.BuffNone

	if !healed {
		damage = applyMultiplier(damage, next.DailyEvent)
	}

	// 傷害以剩餘血量截斷，日誌與統計記錄的都是實際扣除的數值
	effective := damage
	if effective > next.Boss.CurrentHP {
		effective = next.Boss.CurrentHP
	}
	next.Boss.CurrentHP -= effective

	player.TodayWaterMl += ml
	player.TotalDamageDealt += effective
	player.AttackCount++

	var message string
	if priorBuff == domain.BuffHealLife {
		message = fmt.Sprintf("%s drank %dml and recovered strength (HP %d/%d)", player.Name, ml, player.HP, domain.PlayerMaxHP)
	} else {
		message = fmt.Sprintf("%s drank %dml and dealt %d damage", player.Name, ml, effective)
	}

	entry := domain.LogEntry{
		ID:          r.newID(),
		Timestamp:   r.now(),
		UserID:      playerID,
		ActionType:  domain.ActionDrink,
		Value:       fmt.Sprintf("%d", ml),
		DamageDealt: effective,
		Message:     message,
	}
	next.Logs[entry.ID] = entry

	outcome := &domain.DrinkOutcome{
		DamageDealt:  effective,
		Healed:       healed,
		BuffConsumed: priorBuff,
		BossDefeated: next.Boss.Defeated(),
	}
	return next, outcome, nil
}

// ResolveGratitude 結算一次感恩日記並授予 Buff。
//
// roll 必須落在 [0,1)，由呼叫者抽選後傳入。
// 玩家既有的未使用 Buff 會被無條件覆蓋 (last-call-wins，屬定義行為而非錯誤)。
func (r *Resolver) ResolveGratitude(state *domain.RoomState, playerID string, text string, roll float64) (*domain.RoomState, domain.BuffType, error) {
	if _, ok := state.Players[playerID]; !ok {
		return nil, domain.BuffNone, fmt.Errorf("resolve gratitude for %q: %w", playerID, ports.ErrPlayerNotFound)
	}

	next := state.Clone()
	player := next.Players[playerID]

	buff := rollBuff(roll)
	player.ActiveBuff = buff

	entry := domain.LogEntry{
		ID:         r.newID(),
		Timestamp:  r.now(),
		UserID:     playerID,
		ActionType: domain.ActionGratitude,
		Value:      text,
		Message:    fmt.Sprintf("%s wrote a gratitude entry and received %s", player.Name, buff),
	}
	next.Logs[entry.ID] = entry

	return next, buff, nil
}

// rollBuff 將 [0,1) 的亂數映射為 Buff
func rollBuff(roll float64) domain.BuffType {
	switch {
	case roll < healRollUpper:
		return domain.BuffHealLife
	case roll < critRollUpper:
		return domain.BuffCriticalX3
	default:
		return domain.BuffDoubleDmg
	}
}

// applyMultiplier 套用每日事件倍率並向下取整。
// 使用 decimal 避免浮點數累積誤差 (例如 100*3*1.5 必須精確等於 450)。
// 結果下限為 0：傷害絕不為負，Boss 血量與玩家累計傷害維持單調。
func applyMultiplier(damage int, event *domain.DailyEvent) int {
	if event == nil || event.Multiplier == 0 || event.Multiplier == 1 {
		return damage
	}
	result := decimal.NewFromInt(int64(damage)).
		Mul(decimal.NewFromFloat(event.Multiplier)).
		Floor()
	if result.IsNegative() {
		return 0
	}
	return int(result.IntPart())
}
