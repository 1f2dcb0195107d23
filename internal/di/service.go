package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aquaraid/go-raid-server/internal/config"
	"github.com/aquaraid/go-raid-server/internal/core/ports"
	"github.com/aquaraid/go-raid-server/internal/infrastructure/broker"
	memorystore "github.com/aquaraid/go-raid-server/internal/infrastructure/roomstate/memory"
	mysqlstore "github.com/aquaraid/go-raid-server/internal/infrastructure/roomstate/mysql"
	redisstore "github.com/aquaraid/go-raid-server/internal/infrastructure/roomstate/redis"
	pkgMysql "github.com/aquaraid/go-raid-server/pkg/mysql"
	pkgRedis "github.com/aquaraid/go-raid-server/pkg/redis"
)

// ProvideBroker creates the in-process subscription broker
func ProvideBroker(logger *slog.Logger) *broker.Broker {
	return broker.New(logger)
}

// ProvideStatePublisher selects the publisher stores notify on commit.
// With the redis backend, commits fan out through Redis Pub/Sub so every
// pod's local broker sees them; other backends publish straight to the
// local broker. The returned cleanup closes the relay's connection.
func ProvideStatePublisher(ctx context.Context, cfg *config.Config, local *broker.Broker, logger *slog.Logger) (ports.StatePublisher, func() error, error) {
	if cfg.Store.Backend != config.StoreBackendRedis {
		return local, nil, nil
	}

	client, err := pkgRedis.NewClient(pkgRedis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init pubsub redis client: %w", err)
	}

	relay := broker.NewRelay(client, local, logger)
	if err := relay.Start(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("start broker relay: %w", err)
	}
	return relay, client.Close, nil
}

// ProvideRoomStore creates the RoomStore implementation selected by config.
// The store takes ownership of its backing connection; callers must Close it.
func ProvideRoomStore(cfg *config.Config, publisher ports.StatePublisher, logger *slog.Logger) (ports.RoomStore, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return memorystore.NewStore(publisher, logger), nil

	case config.StoreBackendRedis:
		client, err := pkgRedis.NewClient(pkgRedis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("init store redis client: %w", err)
		}
		return redisstore.NewStore(client, publisher, logger), nil

	case config.StoreBackendMySQL:
		client, err := pkgMysql.NewClient(pkgMysql.Config{
			Host:     cfg.MySQL.Host,
			Port:     cfg.MySQL.Port,
			User:     cfg.MySQL.User,
			Password: cfg.MySQL.Password,
			DBName:   cfg.MySQL.DBName,
		})
		if err != nil {
			return nil, fmt.Errorf("init store mysql client: %w", err)
		}
		store := mysqlstore.NewStore(client, publisher, logger)
		if err := store.AutoMigrate(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("migrate room_states: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
