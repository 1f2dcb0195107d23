package domain

// BuffType 代表玩家身上的單次強化效果。
// Buff 為一次性消耗品：下一次符合條件的攻擊行動會消耗它，消耗後必定歸零為 BuffNone。
type BuffType string

const (
	// BuffNone 無任何強化
	BuffNone BuffType = "NONE"
	// BuffCriticalX3 下一次攻擊傷害 x3
	BuffCriticalX3 BuffType = "CRITICAL_X3"
	// BuffHealLife 下一次攻擊不造成傷害，改為回復 1 點生命 (上限 3)
	BuffHealLife BuffType = "HEAL_LIFE"
	// BuffDoubleDmg 下一次攻擊傷害 x2
	BuffDoubleDmg BuffType = "DOUBLE_DMG"
)

// Valid 檢查 BuffType 是否為已定義的值
func (b BuffType) Valid() bool {
	switch b {
	case BuffNone, BuffCriticalX3, BuffHealLife, BuffDoubleDmg:
		return true
	}
	return false
}
