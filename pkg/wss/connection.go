package wss

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBufferSize 單一連線的發送佇列長度
const sendBufferSize = 256

// ErrSendBufferFull 連線的發送佇列已滿 (消費過慢)
var ErrSendBufferFull = errors.New("wss: send buffer full")

// 確保 connection 實現了 Client 介面
var _ Client = (*connection)(nil)

// connection 是單一 WebSocket 連線的封裝。
// 寫入統一經過 send channel 由 writePump 序列化，避免多個 goroutine 同時寫 conn。
type connection struct {
	id     string
	hub    *hub
	conn   *websocket.Conn
	send   chan []byte
	tags   sync.Map
	logger *slog.Logger

	closeOnce sync.Once
}

// newConnection 建立連線封裝
func newConnection(h *hub, conn *websocket.Conn, _ *http.Request, logger *slog.Logger) *connection {
	id := uuid.NewString()
	return &connection{
		id:     id,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With("conn_id", id),
	}
}

// ID 回傳連線的唯一標識符
func (c *connection) ID() string {
	return c.id
}

// Send 將訊息放入發送佇列 (非阻塞，佇列滿時回傳 ErrSendBufferFull)
func (c *connection) Send(payload []byte) error {
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendMessage 發送字串訊息
func (c *connection) SendMessage(msg string) error {
	return c.Send([]byte(msg))
}

// Kick 主動中斷連線，reason 會透過 Close Frame 告知客戶端
func (c *connection) Kick(reason string) error {
	var err error
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, message, deadline)
		err = c.conn.Close()
	})
	return err
}

// SetTag 在連線上附掛業務資料
func (c *connection) SetTag(key string, value any) {
	c.tags.Store(key, value)
}

// GetTag 取得附掛的業務資料
func (c *connection) GetTag(key string) (any, bool) {
	return c.tags.Load(key)
}

// readPump 持續讀取客戶端訊息並交給 hub 派送。
// 連線中斷時負責向 hub 註銷自己。
func (c *connection) readPump(cfg *Config) {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(cfg.MaxMessageSize)
	}
	if cfg.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		})
	}

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", "error", err)
			}
			return
		}
		c.hub.handleMessage(c, msg)
	}
}

// writePump 將發送佇列的訊息寫入連線，並定期發送 Ping 維持連線
func (c *connection) writePump(cfg *Config) {
	period := cfg.PingPeriod
	if period <= 0 {
		period = 54 * time.Second
	}
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if cfg.WriteWait > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			}
			if !ok {
				// hub 已關閉此連線的佇列
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			if cfg.WriteWait > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
