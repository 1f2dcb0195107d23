package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aquaraid/go-raid-server/internal/app/raid"
	"github.com/aquaraid/go-raid-server/internal/app/raid/protocol"
	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
)

// HTTPHandler 提供行動提交與狀態查詢的 REST 邊界。
// 這層只做解析與錯誤碼映射，所有狀態變更仍走 RaidService 的交易路徑。
type HTTPHandler struct {
	svc    *raid.Service
	logger *slog.Logger
}

// NewHTTPHandler 建立 HTTP 處理器
func NewHTTPHandler(svc *raid.Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With("component", "http_handler"),
	}
}

// RegisterRoutes 註冊路由
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rooms/{roomID}", h.handleGetRoom)
	mux.HandleFunc("POST /api/rooms/{roomID}/join", h.handleJoin)
	mux.HandleFunc("POST /api/rooms/{roomID}/drink", h.handleDrink)
	mux.HandleFunc("POST /api/rooms/{roomID}/gratitude", h.handleGratitude)
	mux.HandleFunc("POST /api/rooms/{roomID}/reset", h.handleReset)
	mux.HandleFunc("POST /api/rooms/{roomID}/event", h.handleSetEvent)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *HTTPHandler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	state, err := h.svc.Room(r.Context(), roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	var req protocol.JoinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, protocol.Response{Action: protocol.ActionJoin, Error: "invalid JSON body"})
		return
	}

	state, err := h.svc.JoinRoom(r.Context(), roomID, req.PlayerID, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleDrink(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	var req protocol.DrinkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, protocol.Response{Action: protocol.ActionDrink, Error: "invalid JSON body"})
		return
	}

	outcome, err := h.svc.DrinkWater(r.Context(), roomID, req.PlayerID, req.Ml)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

func (h *HTTPHandler) handleGratitude(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	var req protocol.GratitudeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, protocol.Response{Action: protocol.ActionGratitude, Error: "invalid JSON body"})
		return
	}

	buff, err := h.svc.SubmitGratitude(r.Context(), roomID, req.PlayerID, req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]domain.BuffType{"buff": buff})
}

func (h *HTTPHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	state, err := h.svc.ResetRoom(r.Context(), roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleSetEvent(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	var event domain.DailyEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeJSON(w, http.StatusBadRequest, protocol.Response{Error: "invalid JSON body"})
		return
	}

	state, err := h.svc.SetDailyEvent(r.Context(), roomID, event)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError 將核心錯誤映射為 HTTP 狀態碼
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, ports.ErrRoomNotFound), errors.Is(err, ports.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrBossDefeated):
		status = http.StatusConflict
	case errors.Is(err, ports.ErrInvalidAmount), errors.Is(err, ports.ErrEmptyGratitude), errors.Is(err, ports.ErrInvalidMultiplier):
		status = http.StatusBadRequest
	case errors.Is(err, ports.ErrTxConflict):
		// 暫時性失敗，狀態保證未被修改，呼叫端可重試
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("request failed", "error", err)
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, protocol.Response{Error: err.Error()})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("write response failed", "error", err)
	}
}
