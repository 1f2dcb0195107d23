package domain

const (
	// DefaultBossName 新房間的預設 Boss 名稱
	DefaultBossName = "Thirst King"
	// DefaultBossMaxHP 新房間的預設 Boss 血量上限
	DefaultBossMaxHP = 10000
)

// Boss 代表房間共享的 Boss。
// MaxHP 在房間生命週期內固定 (除非透過 Reset 重建房間)。
type Boss struct {
	Name      string `json:"name"`      // Boss 名稱
	CurrentHP int    `json:"currentHp"` // 當前血量 (0..MaxHP)
	MaxHP     int    `json:"maxHp"`     // 血量上限
}

// Defeated 回傳 Boss 是否已被擊倒
func (b Boss) Defeated() bool {
	return b.CurrentHP <= 0
}

// DailyEvent 代表房間層級的每日事件修正 (例如傷害倍率)。
// Multiplier 缺席時視為 1。
type DailyEvent struct {
	Type        string  `json:"type"`        // 事件種類
	Description string  `json:"description"` // 事件描述
	Multiplier  float64 `json:"multiplier"`  // 傷害倍率 (預設 1)
}

// RoomState 代表一個房間的完整共享狀態：一隻 Boss、一份玩家名冊、一條日誌流。
// 它是系統中唯一的共享可變資源，只能經由 RoomStore 的交易路徑變更。
//
// Revision 是由 RoomStore 維護的提交計數器：每次成功提交遞增 1，
// 交易回呼對它的任何改動都會被 store 覆寫。派送端依此判斷提交先後，
// 晚到的舊提交不會蓋過較新的提交。
type RoomState struct {
	Revision   uint64              `json:"revision"`
	Boss       Boss                `json:"boss"`
	Players    map[string]*Player  `json:"players"`
	Logs       map[string]LogEntry `json:"logs"`
	DailyEvent *DailyEvent         `json:"dailyEvent,omitempty"`
}

// NewRoomState 建立確定性的預設房間狀態 (滿血 Boss、空名冊、空日誌)。
// 房間在首次存取時以此狀態惰性建立。
func NewRoomState() *RoomState {
	return &RoomState{
		Boss: Boss{
			Name:      DefaultBossName,
			CurrentHP: DefaultBossMaxHP,
			MaxHP:     DefaultBossMaxHP,
		},
		Players: make(map[string]*Player),
		Logs:    make(map[string]LogEntry),
	}
}

// Normalize 將狀態補齊為完整物化的形式。
// 反序列化或 bootstrap 階段可能缺少子結構 (players / logs / boss)，
// 在任何 resolver 或觀察者看到狀態之前，必須先經過這一步，
// 之後不再於各呼叫點做 ad hoc 的缺值防禦。
func (s *RoomState) Normalize() {
	if s.Boss.MaxHP <= 0 {
		s.Boss = Boss{
			Name:      DefaultBossName,
			CurrentHP: DefaultBossMaxHP,
			MaxHP:     DefaultBossMaxHP,
		}
	}
	if s.Boss.CurrentHP < 0 {
		s.Boss.CurrentHP = 0
	}
	if s.Boss.CurrentHP > s.Boss.MaxHP {
		s.Boss.CurrentHP = s.Boss.MaxHP
	}
	if s.Players == nil {
		s.Players = make(map[string]*Player)
	}
	if s.Logs == nil {
		s.Logs = make(map[string]LogEntry)
	}
	for _, p := range s.Players {
		if p.HP < 0 {
			p.HP = 0
		}
		if p.HP > PlayerMaxHP {
			p.HP = PlayerMaxHP
		}
		if !p.ActiveBuff.Valid() {
			p.ActiveBuff = BuffNone
		}
	}
}

// Clone 回傳 RoomState 的深拷貝。
// 交易重試時 fn 會被以新值重新呼叫，深拷貝消除了別名共用造成的危險。
func (s *RoomState) Clone() *RoomState {
	if s == nil {
		return nil
	}
	cp := &RoomState{
		Revision: s.Revision,
		Boss:     s.Boss,
		Players:  make(map[string]*Player, len(s.Players)),
		Logs:     make(map[string]LogEntry, len(s.Logs)),
	}
	for id, p := range s.Players {
		cp.Players[id] = p.Clone()
	}
	for id, entry := range s.Logs {
		cp.Logs[id] = entry
	}
	if s.DailyEvent != nil {
		ev := *s.DailyEvent
		cp.DailyEvent = &ev
	}
	return cp
}
