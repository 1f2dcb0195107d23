package raid_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/aquaraid/go-raid-server/internal/app/raid"
	"github.com/aquaraid/go-raid-server/internal/core/combat"
	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	mock_ports "github.com/aquaraid/go-raid-server/test/mocks/core/ports"
)

// transactOnFresh simulates a store running fn once against a fresh default room.
func transactOnFresh(seed func(*domain.RoomState)) func(ctx context.Context, roomID string, fn ports.TxFunc) (*domain.RoomState, error) {
	return func(_ context.Context, _ string, fn ports.TxFunc) (*domain.RoomState, error) {
		state := domain.NewRoomState()
		if seed != nil {
			seed(state)
		}
		return fn(state)
	}
}

func TestService_JoinRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_ports.NewMockRoomStore(ctrl)
	mockBroker := mock_ports.NewMockStateBroker(ctrl)

	svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default())

	t.Run("Join Adds Player With Full HP", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(transactOnFresh(nil))

		state, err := svc.JoinRoom(context.Background(), "room-1", "p1", "Alice")
		if err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
		p, ok := state.Players["p1"]
		if !ok {
			t.Fatal("Expected player p1 in roster")
		}
		if p.HP != domain.PlayerMaxHP || p.ActiveBuff != domain.BuffNone {
			t.Errorf("Unexpected new player: %+v", p)
		}
	})

	t.Run("Join Is Idempotent For Existing Player", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(transactOnFresh(func(state *domain.RoomState) {
				existing := domain.NewPlayer("p1", "Alice")
				existing.HP = 1
				existing.TotalDamageDealt = 700
				existing.ActiveBuff = domain.BuffDoubleDmg
				state.Players["p1"] = existing
			}))

		state, err := svc.JoinRoom(context.Background(), "room-1", "p1", "Alice")
		if err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
		p := state.Players["p1"]
		if p.HP != 1 || p.TotalDamageDealt != 700 || p.ActiveBuff != domain.BuffDoubleDmg {
			t.Errorf("Rejoin must preserve existing player, got %+v", p)
		}
	})

	t.Run("Join Rejected For Empty Player ID", func(t *testing.T) {
		_, err := svc.JoinRoom(context.Background(), "room-1", "", "Alice")
		if err == nil {
			t.Error("Expected error for empty player id")
		}
	})
}

func TestService_DrinkWater(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_ports.NewMockRoomStore(ctrl)
	mockBroker := mock_ports.NewMockStateBroker(ctrl)

	svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default())

	t.Run("Drink Resolves Damage", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(transactOnFresh(func(state *domain.RoomState) {
				state.Players["p1"] = domain.NewPlayer("p1", "Alice")
			}))

		outcome, err := svc.DrinkWater(context.Background(), "room-1", "p1", 500)
		if err != nil {
			t.Fatalf("DrinkWater failed: %v", err)
		}
		if outcome.DamageDealt != 100 {
			t.Errorf("Expected damage 100, got %d", outcome.DamageDealt)
		}
	})

	t.Run("Invalid Amount Short-Circuits Before Store", func(t *testing.T) {
		// No Transact expectation: touching the store fails the test.
		_, err := svc.DrinkWater(context.Background(), "room-1", "p1", 0)
		if !errors.Is(err, ports.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("Resolver Abort Propagates Unchanged", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(transactOnFresh(nil)) // empty roster -> ErrPlayerNotFound

		_, err := svc.DrinkWater(context.Background(), "room-1", "ghost", 500)
		if !errors.Is(err, ports.ErrPlayerNotFound) {
			t.Errorf("Expected ErrPlayerNotFound, got %v", err)
		}
	})
}

func TestService_SubmitGratitude(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_ports.NewMockRoomStore(ctrl)
	mockBroker := mock_ports.NewMockStateBroker(ctrl)

	t.Run("Empty Text Short-Circuits Before Store", func(t *testing.T) {
		svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default())

		_, err := svc.SubmitGratitude(context.Background(), "room-1", "p1", "   ")
		if !errors.Is(err, ports.ErrEmptyGratitude) {
			t.Errorf("Expected ErrEmptyGratitude, got %v", err)
		}
	})

	t.Run("Roll Drawn Once And Replayed Across Retries", func(t *testing.T) {
		rollCalls := 0
		svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default(),
			raid.WithRollSource(func() float64 {
				rollCalls++
				return 0.1 // HEAL_LIFE
			}))

		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, fn ports.TxFunc) (*domain.RoomState, error) {
				// Run fn twice to simulate a commit conflict retry.
				var last *domain.RoomState
				for i := 0; i < 2; i++ {
					state := domain.NewRoomState()
					state.Players["p1"] = domain.NewPlayer("p1", "Alice")
					next, err := fn(state)
					if err != nil {
						return nil, err
					}
					last = next
				}
				return last, nil
			})

		buff, err := svc.SubmitGratitude(context.Background(), "room-1", "p1", "thanks")
		if err != nil {
			t.Fatalf("SubmitGratitude failed: %v", err)
		}
		if buff != domain.BuffHealLife {
			t.Errorf("Expected HEAL_LIFE, got %s", buff)
		}
		if rollCalls != 1 {
			t.Errorf("Expected roll drawn exactly once, got %d", rollCalls)
		}
	})
}

func TestService_SetDailyEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_ports.NewMockRoomStore(ctrl)
	mockBroker := mock_ports.NewMockStateBroker(ctrl)

	svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default())

	t.Run("Negative Multiplier Rejected Before Store", func(t *testing.T) {
		// No Transact expectation: touching the store fails the test.
		_, err := svc.SetDailyEvent(context.Background(), "room-1", domain.DailyEvent{Type: "CURSED_DAY", Multiplier: -1})
		if !errors.Is(err, ports.ErrInvalidMultiplier) {
			t.Errorf("Expected ErrInvalidMultiplier, got %v", err)
		}
	})

	t.Run("Zero Multiplier Defaults To One", func(t *testing.T) {
		mockStore.EXPECT().
			Transact(gomock.Any(), "room-1", gomock.Any()).
			DoAndReturn(transactOnFresh(nil))

		state, err := svc.SetDailyEvent(context.Background(), "room-1", domain.DailyEvent{Type: "PLAIN_DAY"})
		if err != nil {
			t.Fatalf("SetDailyEvent failed: %v", err)
		}
		if state.DailyEvent == nil || state.DailyEvent.Multiplier != 1 {
			t.Errorf("Expected multiplier defaulted to 1, got %+v", state.DailyEvent)
		}
	})
}

func TestService_ResetRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_ports.NewMockRoomStore(ctrl)
	mockBroker := mock_ports.NewMockStateBroker(ctrl)

	svc := raid.NewService(mockStore, mockBroker, combat.NewResolver(), slog.Default())

	mockStore.EXPECT().
		Transact(gomock.Any(), "room-1", gomock.Any()).
		DoAndReturn(transactOnFresh(func(state *domain.RoomState) {
			state.Boss.CurrentHP = 42
			state.Players["p1"] = domain.NewPlayer("p1", "Alice")
		}))

	state, err := svc.ResetRoom(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("ResetRoom failed: %v", err)
	}
	if state.Boss.CurrentHP != domain.DefaultBossMaxHP {
		t.Errorf("Expected boss restored to %d, got %d", domain.DefaultBossMaxHP, state.Boss.CurrentHP)
	}
	if len(state.Players) != 0 {
		t.Errorf("Expected empty roster after reset, got %d players", len(state.Players))
	}
}
