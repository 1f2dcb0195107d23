package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/aquaraid/go-raid-server/internal/app/raid"
	"github.com/aquaraid/go-raid-server/internal/core/combat"
	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	mock_ports "github.com/aquaraid/go-raid-server/test/mocks/core/ports"
)

func newTestMux(t *testing.T) (*http.ServeMux, *mock_ports.MockRoomStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockStore := mock_ports.NewMockRoomStore(ctrl)
	mockBroker := mock_ports.NewMockStateBroker(ctrl)
	svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default())

	mux := http.NewServeMux()
	NewHTTPHandler(svc, slog.Default()).RegisterRoutes(mux)
	return mux, mockStore
}

func TestHTTPHandler_GetRoom(t *testing.T) {
	mux, mockStore := newTestMux(t)

	t.Run("Found", func(t *testing.T) {
		state := domain.NewRoomState()
		state.Boss.CurrentHP = 8200
		mockStore.EXPECT().Get(gomock.Any(), "room-1").Return(state, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/room-1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"currentHp":8200`)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockStore.EXPECT().Get(gomock.Any(), "missing").Return(nil, ports.ErrRoomNotFound)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHTTPHandler_Drink(t *testing.T) {
	mux, mockStore := newTestMux(t)

	t.Run("Success", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, fn ports.TxFunc) (*domain.RoomState, error) {
				state := domain.NewRoomState()
				state.Players["p1"] = domain.NewPlayer("p1", "Alice")
				return fn(state)
			})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/drink", strings.NewReader(`{"player_id":"p1","ml":500}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"damageDealt":100`)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/drink", strings.NewReader(`{"player_id":"p1","ml":0}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Boss Defeated", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, fn ports.TxFunc) (*domain.RoomState, error) {
				state := domain.NewRoomState()
				state.Boss.CurrentHP = 0
				state.Players["p1"] = domain.NewPlayer("p1", "Alice")
				return fn(state)
			})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/drink", strings.NewReader(`{"player_id":"p1","ml":500}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Commit Conflict Maps To 503", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			Return(nil, ports.ErrTxConflict)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/drink", strings.NewReader(`{"player_id":"p1","ml":500}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHTTPHandler_Gratitude(t *testing.T) {
	mux, mockStore := newTestMux(t)

	t.Run("Empty Text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/gratitude", strings.NewReader(`{"player_id":"p1","text":"  "}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Success Returns Buff", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, fn ports.TxFunc) (*domain.RoomState, error) {
				state := domain.NewRoomState()
				state.Players["p1"] = domain.NewPlayer("p1", "Alice")
				return fn(state)
			})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/gratitude", strings.NewReader(`{"player_id":"p1","text":"thanks"}`))
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"buff"`)
	})
}
