package wss

import "time"

// Config 定義 WebSocket 伺服器的設定參數
type Config struct {
	AllowedOrigins  []string      // 允許的跨域來源 ("*" 表示全部允許)
	ReadBufferSize  int           // 讀取緩衝區大小 (bytes)
	WriteBufferSize int           // 寫入緩衝區大小 (bytes)
	WriteWait       time.Duration // 單次寫入的逾時時間
	PongWait        time.Duration // 等待 Pong 回應的逾時時間
	PingPeriod      time.Duration // Ping 發送週期 (未設定時由 PongWait 推算)
	MaxMessageSize  int64         // 單一訊息的大小上限 (bytes)
}

// Subscriber 是業務邏輯對 WebSocket 事件的訂閱介面。
// OnConnect/OnDisconnect 在 hub 的事件迴圈中被呼叫，
// OnMessage 在各連線的讀取 goroutine 中被呼叫，實作內不應長時間阻塞。
type Subscriber interface {
	// OnConnect 當新連線建立時觸發
	OnConnect(client Client)
	// OnDisconnect 當連線斷開時觸發
	OnDisconnect(client Client)
	// OnMessage 當收到訊息時觸發
	OnMessage(client Client, msg []byte)
}

// Client 是 hub 對外暴露的連線操作介面
type Client interface {
	// ID 回傳連線的唯一標識符
	ID() string
	// Send 發送二進位/文字訊息給客戶端
	Send(payload []byte) error
	// SendMessage 發送字串訊息給客戶端
	SendMessage(msg string) error
	// Kick 主動中斷連線
	Kick(reason string) error
	// SetTag 在連線上附掛業務資料 (thread-safe)
	SetTag(key string, value any)
	// GetTag 取得附掛的業務資料
	GetTag(key string) (any, bool)
}
