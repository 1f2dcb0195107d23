package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aquaraid/go-raid-server/internal/app/raid"
	"github.com/aquaraid/go-raid-server/internal/app/raid/handler"
	"github.com/aquaraid/go-raid-server/internal/core/combat"
	"github.com/aquaraid/go-raid-server/internal/di"
	"github.com/aquaraid/go-raid-server/internal/kit/bootstrap"
	"github.com/aquaraid/go-raid-server/pkg/wss"
)

func main() {
	// 1. 初始化 App (Logger + Config)
	app := bootstrap.NewApp("raid-server")
	cfg := app.Config
	logger := app.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 組裝核心依賴: Broker -> Publisher -> Store -> Service
	localBroker := di.ProvideBroker(logger)

	publisher, pubCleanup, err := di.ProvideStatePublisher(ctx, cfg, localBroker, logger)
	if err != nil {
		logger.Error("Failed to init state publisher", "error", err)
		os.Exit(1)
	}

	store, err := di.ProvideRoomStore(cfg, publisher, logger)
	if err != nil {
		logger.Error("Failed to init room store", "error", err)
		os.Exit(1)
	}

	svc := raid.NewService(store, localBroker, combat.NewResolver(), logger)

	// 3. 初始化 HTTP + WebSocket 邊界
	mux := http.NewServeMux()

	httpHandler := handler.NewHTTPHandler(svc, logger)
	httpHandler.RegisterRoutes(mux)

	wsConfig := &wss.Config{
		AllowedOrigins:  cfg.WSS.AllowedOrigins,
		ReadBufferSize:  cfg.WSS.ReadBufferSize,
		WriteBufferSize: cfg.WSS.WriteBufferSize,
		WriteWait:       time.Duration(cfg.WSS.WriteWaitSec) * time.Second,
		PongWait:        time.Duration(cfg.WSS.PongWaitSec) * time.Second,
		MaxMessageSize:  cfg.WSS.MaxMessageSize,
	}
	wsServer := wss.NewServer(ctx, wsConfig, logger)
	wsServer.Register(handler.NewWebsocketHandler(svc, logger))

	path := cfg.WSS.Path
	if path == "" {
		path = "/ws"
	}
	mux.Handle(path, wsServer)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: mux,
	}

	// 4. 啟動並等待停止信號
	app.Run(func() error {
		logger.Info("Listening on", "addr", srv.Addr, "ws_path", path, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		_ = srv.Shutdown(shutdownCtx)
		cancel()

		if err := store.Close(); err != nil {
			logger.Warn("Failed to close room store", "error", err)
		}
		if pubCleanup != nil {
			if err := pubCleanup(); err != nil {
				logger.Warn("Failed to close publisher", "error", err)
			}
		}
	})
}
