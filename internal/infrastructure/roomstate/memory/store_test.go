package memory_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/aquaraid/go-raid-server/internal/core/combat"
	"github.com/aquaraid/go-raid-server/internal/core/domain"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	"github.com/aquaraid/go-raid-server/internal/infrastructure/roomstate/memory"
	mock_ports "github.com/aquaraid/go-raid-server/test/mocks/core/ports"
)

func TestStore_MaterializesDefaultRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	mockPub.EXPECT().Publish(gomock.Any(), "room-1", gomock.Any()).Times(1)

	store := memory.NewStore(mockPub, slog.Default())

	var seen *domain.RoomState
	_, err := store.Transact(context.Background(), "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		seen = state.Clone()
		return state, nil
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if seen.Boss.CurrentHP != domain.DefaultBossMaxHP || seen.Boss.Name != domain.DefaultBossName {
		t.Errorf("Expected default boss, got %+v", seen.Boss)
	}
	if len(seen.Players) != 0 || len(seen.Logs) != 0 {
		t.Errorf("Expected empty roster and logs, got %d players %d logs", len(seen.Players), len(seen.Logs))
	}
}

func TestStore_GetUnknownRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := memory.NewStore(mock_ports.NewMockStatePublisher(ctrl), slog.Default())

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ports.ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestStore_AbortLeavesNoTrace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	// Only the seeding commit may publish; the aborted transaction must not.
	mockPub.EXPECT().Publish(gomock.Any(), "room-1", gomock.Any()).Times(1)

	store := memory.NewStore(mockPub, slog.Default())

	_, err := store.Transact(context.Background(), "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		next := state.Clone()
		next.Boss.CurrentHP = 5000
		return next, nil
	})
	if err != nil {
		t.Fatalf("Seeding commit failed: %v", err)
	}

	abortErr := errors.New("validation failed")
	_, err = store.Transact(context.Background(), "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		state.Boss.CurrentHP = 1 // mutating the snapshot must not leak either
		return nil, abortErr
	})
	if !errors.Is(err, abortErr) {
		t.Errorf("Expected abort error returned unchanged, got %v", err)
	}

	state, err := store.Get(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Boss.CurrentHP != 5000 {
		t.Errorf("Aborted transaction leaked a change: boss HP %d", state.Boss.CurrentHP)
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	mockPub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	store := memory.NewStore(mockPub, slog.Default())

	committed, err := store.Transact(context.Background(), "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		next := state.Clone()
		next.Players["p1"] = domain.NewPlayer("p1", "Alice")
		return next, nil
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	// Mutating the value handed back must not reach the store.
	committed.Players["p1"].HP = 0
	committed.Boss.CurrentHP = 1

	state, err := store.Get(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Players["p1"].HP != domain.PlayerMaxHP {
		t.Errorf("External mutation leaked into store: HP %d", state.Players["p1"].HP)
	}
	if state.Boss.CurrentHP != domain.DefaultBossMaxHP {
		t.Errorf("External mutation leaked into store: boss HP %d", state.Boss.CurrentHP)
	}
}

func TestStore_RevisionAssignedInCommitOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	var published []*domain.RoomState
	mockPub.EXPECT().
		Publish(gomock.Any(), "room-1", gomock.Any()).
		Do(func(_ context.Context, _ string, state *domain.RoomState) {
			published = append(published, state)
		}).
		Times(2)

	store := memory.NewStore(mockPub, slog.Default())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		committed, err := store.Transact(ctx, "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
			next := state.Clone()
			next.Boss.CurrentHP -= 100
			next.Revision = 777 // callbacks cannot forge the revision
			return next, nil
		})
		if err != nil {
			t.Fatalf("Commit %d failed: %v", i+1, err)
		}
		if committed.Revision != uint64(i+1) {
			t.Errorf("Commit %d: expected revision %d, got %d", i+1, i+1, committed.Revision)
		}
	}

	state, err := store.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Revision != 2 {
		t.Errorf("Expected stored revision 2, got %d", state.Revision)
	}
	for i, p := range published {
		if p.Revision != uint64(i+1) {
			t.Errorf("Publish %d: expected revision %d, got %d", i+1, i+1, p.Revision)
		}
	}
}

func TestStore_PublishedStateIsIndependentCopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	var published *domain.RoomState
	mockPub.EXPECT().
		Publish(gomock.Any(), "room-1", gomock.Any()).
		Do(func(_ context.Context, _ string, state *domain.RoomState) {
			published = state
		})

	store := memory.NewStore(mockPub, slog.Default())

	committed, err := store.Transact(context.Background(), "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		next := state.Clone()
		next.Players["p1"] = domain.NewPlayer("p1", "Alice")
		return next, nil
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	// The caller mutating its return value must not reach subscribers.
	committed.Players["p1"].HP = 0
	committed.Boss.CurrentHP = 1

	if published.Players["p1"].HP != domain.PlayerMaxHP {
		t.Errorf("Published state aliases the caller's: HP %d", published.Players["p1"].HP)
	}
	if published.Boss.CurrentHP != domain.DefaultBossMaxHP {
		t.Errorf("Published state aliases the caller's: boss HP %d", published.Boss.CurrentHP)
	}
}

func TestStore_ConflictRerunsWithFreshValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	mockPub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	store := memory.NewStore(mockPub, slog.Default())
	ctx := context.Background()

	calls := 0
	var secondSeen int
	_, err := store.Transact(ctx, "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		calls++
		if calls == 1 {
			// Interleave another commit so this one's pre-image goes stale.
			_, err := store.Transact(ctx, "room-1", func(inner *domain.RoomState) (*domain.RoomState, error) {
				next := inner.Clone()
				next.Boss.CurrentHP = 7777
				return next, nil
			})
			if err != nil {
				t.Fatalf("Interleaved commit failed: %v", err)
			}
		} else {
			secondSeen = state.Boss.CurrentHP
		}
		next := state.Clone()
		next.Boss.CurrentHP -= 100
		return next, nil
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("Expected fn rerun once after conflict, ran %d times", calls)
	}
	if secondSeen != 7777 {
		t.Errorf("Retry must observe the interleaved commit, saw boss HP %d", secondSeen)
	}

	state, err := store.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Boss.CurrentHP != 7677 {
		t.Errorf("Expected boss HP 7677 after both commits, got %d", state.Boss.CurrentHP)
	}
}

func TestStore_ConcurrentDrinksNeverOverdrawBoss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := mock_ports.NewMockStatePublisher(ctrl)
	mockPub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	store := memory.NewStore(mockPub, slog.Default())
	resolver := combat.NewResolver()
	ctx := context.Background()

	_, err := store.Transact(ctx, "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
		next := state.Clone()
		next.Boss.CurrentHP = 150
		next.Players["p1"] = domain.NewPlayer("p1", "Alice")
		next.Players["p2"] = domain.NewPlayer("p2", "Bob")
		return next, nil
	})
	if err != nil {
		t.Fatalf("Seeding commit failed: %v", err)
	}

	var wg sync.WaitGroup
	for _, playerID := range []string{"p1", "p2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.Transact(ctx, "room-1", func(state *domain.RoomState) (*domain.RoomState, error) {
				next, _, err := resolver.ResolveDrink(state, id, 300)
				if err != nil {
					return nil, err
				}
				return next, nil
			})
			if err != nil {
				t.Errorf("Drink for %s failed: %v", id, err)
			}
		}(playerID)
	}
	wg.Wait()

	state, err := store.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Boss.CurrentHP != 0 {
		t.Errorf("Expected boss HP exactly 0, got %d", state.Boss.CurrentHP)
	}
	if len(state.Logs) != 2 {
		t.Errorf("Expected 2 attack logs, got %d", len(state.Logs))
	}

	total := 0
	for _, entry := range state.Logs {
		total += entry.DamageDealt
	}
	if total != 150 {
		t.Errorf("Recorded damage must sum to the boss's starting HP 150, got %d", total)
	}
}
