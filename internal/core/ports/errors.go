package ports

import "errors"

// 定義 Ports 層級通用的錯誤
var (
	// ErrRoomNotFound 房間尚未建立 (僅 Get 會回報；Transact 會自動物化預設狀態)
	ErrRoomNotFound = errors.New("room not found")

	// ErrPlayerNotFound 玩家不在房間名冊內
	ErrPlayerNotFound = errors.New("player not found in room")

	// ErrBossDefeated Boss 已被擊倒，不再接受攻擊行動
	ErrBossDefeated = errors.New("boss already defeated")

	// ErrInvalidAmount 飲水量必須為正整數
	ErrInvalidAmount = errors.New("drink amount must be positive")

	// ErrEmptyGratitude 感恩內容不得為空
	ErrEmptyGratitude = errors.New("gratitude text must not be empty")

	// ErrInvalidMultiplier 每日事件倍率不得為負 (負倍率會產生負傷害，破壞單調性)
	ErrInvalidMultiplier = errors.New("daily event multiplier must not be negative")

	// ErrTxConflict 樂觀交易重試次數耗盡 (暫時性錯誤，狀態保證未被修改)
	ErrTxConflict = errors.New("transaction conflict: retry limit exhausted")
)

// IsValidation 回傳 err 是否屬於驗證類錯誤。
// 驗證錯誤在 resolver 路徑內就地處理：零變更、零日誌、不重試。
func IsValidation(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrBossDefeated) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyGratitude) ||
		errors.Is(err, ErrInvalidMultiplier)
}
