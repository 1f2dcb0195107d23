package protocol

import "encoding/json"

// RaidProtocol 定義指令代碼 (使用 string 方便前端對接)
type RaidProtocol string

const (
	ActionJoin        RaidProtocol = "join"        // 加入房間
	ActionDrink       RaidProtocol = "drink"       // 飲水攻擊
	ActionGratitude   RaidProtocol = "gratitude"   // 感恩日記
	ActionSubscribe   RaidProtocol = "subscribe"   // 訂閱房間狀態
	ActionUnsubscribe RaidProtocol = "unsubscribe" // 取消訂閱
	ActionRoomState   RaidProtocol = "room_state"  // 伺服器推播：房間狀態快照
)

// Envelope 基礎封包結構 (所有請求的外層包裝)
type Envelope struct {
	Action  RaidProtocol    `json:"action"`            // 指令代碼
	Payload json.RawMessage `json:"payload,omitempty"` // 具體請求內容
}

// Response 通用回應結構 (所有回應的外層包裝)
type Response struct {
	Action RaidProtocol `json:"action"`          // 對應的指令代碼
	Data   any          `json:"data,omitempty"`  // 成功時的資料
	Error  string       `json:"error,omitempty"` // 失敗時的錯誤訊息
}

// JoinReq 加入房間請求
type JoinReq struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// DrinkReq 飲水攻擊請求
type DrinkReq struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Ml       int    `json:"ml"`
}

// GratitudeReq 感恩日記請求
type GratitudeReq struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// SubscribeReq 訂閱房間狀態請求
type SubscribeReq struct {
	RoomID string `json:"room_id"`
}
