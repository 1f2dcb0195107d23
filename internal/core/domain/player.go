package domain

const (
	// PlayerMaxHP 玩家生命上限
	PlayerMaxHP = 3
)

// Player 代表房間內的一名玩家。
// ID 在房間內唯一且不透明 (如何由名稱+裝置推導是外部關注點)。
// 玩家一旦加入就不會被刪除。
type Player struct {
	ID               string   `json:"id"`               // 房間內唯一標識符
	Name             string   `json:"name"`             // 顯示名稱
	HP               int      `json:"hp"`               // 生命值 (0..3)
	ActiveBuff       BuffType `json:"activeBuff"`       // 當前持有的單次 Buff
	TodayWaterMl     int      `json:"todayWaterMl"`     // 今日累計飲水量 (ml，單日內單調遞增)
	TotalDamageDealt int      `json:"totalDamageDealt"` // 生涯累計傷害 (單調遞增)
	AttackCount      int      `json:"attackCount"`      // 累計攻擊次數
	Inventory        []string `json:"inventory"`        // 道具欄
	ClearedQuests    []string `json:"clearedQuests"`    // 已完成任務
}

// NewPlayer 建立一名滿血的新玩家
func NewPlayer(id string, name string) *Player {
	return &Player{
		ID:            id,
		Name:          name,
		HP:            PlayerMaxHP,
		ActiveBuff:    BuffNone,
		Inventory:     make([]string, 0),
		ClearedQuests: make([]string, 0),
	}
}

// Clone 回傳 Player 的深拷貝
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Inventory = append([]string(nil), p.Inventory...)
	cp.ClearedQuests = append([]string(nil), p.ClearedQuests...)
	return &cp
}
