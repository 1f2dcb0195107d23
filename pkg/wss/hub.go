package wss

import (
	"context"
	"log/slog"
	"sync"
)

// hub 管理所有活躍連線並將事件派送給已註冊的 Subscriber。
// 連線的註冊/註銷統一經由 channel 進入事件迴圈，避免對 clients map 併發讀寫。
type hub struct {
	ctx        context.Context
	register   chan *connection
	unregister chan *connection
	clients    map[*connection]struct{}

	mu          sync.RWMutex
	subscribers []Subscriber

	logger *slog.Logger
}

// newHub 建立 hub
func newHub(ctx context.Context, logger *slog.Logger) *hub {
	return &hub{
		ctx:        ctx,
		register:   make(chan *connection),
		unregister: make(chan *connection),
		clients:    make(map[*connection]struct{}),
		logger:     logger,
	}
}

// registerSubscriber 註冊事件訂閱者
func (h *hub) registerSubscriber(subscriber Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, subscriber)
}

// run 事件迴圈，ctx 取消時結束
func (h *hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("hub shutting down", "clients", len(h.clients))
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.notifyConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.notifyDisconnect(client)
			}
		}
	}
}

// handleMessage 由 readPump 呼叫，將訊息派送給所有訂閱者
func (h *hub) handleMessage(client *connection, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subscriber := range h.subscribers {
		subscriber.OnMessage(client, msg)
	}
}

func (h *hub) notifyConnect(client *connection) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subscriber := range h.subscribers {
		subscriber.OnConnect(client)
	}
}

func (h *hub) notifyDisconnect(client *connection) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subscriber := range h.subscribers {
		subscriber.OnDisconnect(client)
	}
}
