package domain

import "time"

// ActionType 代表戰鬥日誌記錄的行動種類
type ActionType string

const (
	// ActionDrink 飲水攻擊
	ActionDrink ActionType = "DRINK"
	// ActionGratitude 感恩日記
	ActionGratitude ActionType = "GRATITUDE"
)

// LogEntry 代表一筆不可變的戰鬥日誌。
// ID 必須全域唯一 (並發寫入下不得碰撞)，寫入後永不修改或刪除。
type LogEntry struct {
	ID          string     `json:"id"`          // 全域唯一 ID (UUID)
	Timestamp   time.Time  `json:"timestamp"`   // 寫入時間
	UserID      string     `json:"userId"`      // 行動者
	ActionType  ActionType `json:"actionType"`  // DRINK / GRATITUDE
	Value       string     `json:"value"`       // 飲水量 (ml) 或感恩文字
	DamageDealt int        `json:"damageDealt"` // 實際造成的傷害
	Message     string     `json:"message"`     // 人類可讀摘要
}
