package wss

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server 是 wss package 的對外門面，實作 http.Handler：
// 升級成功的連線交由 hub 管理，事件派送給已註冊的 Subscriber。
type Server struct {
	hub      *hub
	cfg      *Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// 確保 Server 實現了 http.Handler 介面
var _ http.Handler = (*Server)(nil)

// NewServer 建立 WebSocket 伺服器並啟動 hub 事件迴圈。
//
// 參數:
//
//	ctx: context.Context - 控制伺服器生命週期，取消時關閉所有連線
//	cfg: *Config - 伺服器設定；PingPeriod 未設定時由 PongWait 推算
//	logger: *slog.Logger - 日誌實例
//
// 回傳值:
//
//	*Server: 初始化完成的伺服器實例
func NewServer(ctx context.Context, cfg *Config, logger *slog.Logger) *Server {
	if cfg.PingPeriod == 0 && cfg.PongWait > 0 {
		cfg.PingPeriod = (cfg.PongWait * 9) / 10
	}

	h := newHub(ctx, logger.With("component", "hub"))
	go h.run()

	s := &Server{
		hub:    h,
		cfg:    cfg,
		logger: logger.With("component", "wss_server"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.originAllowed,
	}
	return s
}

// Register 註冊一個業務邏輯處理器 (Subscriber)
func (s *Server) Register(subscriber Subscriber) {
	s.hub.registerSubscriber(subscriber)
}

// ServeHTTP 處理 WebSocket 升級請求，成功後啟動讀寫 pump 並向 hub 註冊連線
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newConnection(s.hub, conn, r, s.logger.With("component", "client"))
	s.hub.register <- client

	go client.writePump(s.cfg)
	go client.readPump(s.cfg)
}

// originAllowed 檢查跨域來源。
// 未設定 AllowedOrigins 時一律拒絕跨域；
// 無 Origin 標頭的請求 (非瀏覽器，例如 server-to-server) 放行。
func (s *Server) originAllowed(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return false
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
