package domain

// DrinkOutcome 描述一次飲水攻擊的結算結果
type DrinkOutcome struct {
	DamageDealt  int      `json:"damageDealt"`  // 實際造成的傷害 (已套用 Buff、事件倍率與 Boss 血量上限截斷)
	Healed       bool     `json:"healed"`       // 是否觸發 HEAL_LIFE 回復
	BuffConsumed BuffType `json:"buffConsumed"` // 本次消耗的 Buff (行動前的持有值)
	BossDefeated bool     `json:"bossDefeated"` // 此擊是否擊倒 Boss
}
