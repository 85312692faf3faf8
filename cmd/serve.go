package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/call-service/config"
	"github.com/cwrk-planet/call-service/internal/events"
	"github.com/cwrk-planet/call-service/internal/memstore"
	"github.com/cwrk-planet/call-service/internal/postgres"
	"github.com/cwrk-planet/call-service/internal/service"
	grpcx "github.com/cwrk-planet/call-service/internal/transport/grpc"
	httpx "github.com/cwrk-planet/call-service/internal/transport/http"
	"github.com/cwrk-planet/call-service/internal/transport/ws"
	"github.com/cwrk-planet/call-service/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the websocket coordinator with http and grpc endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
}

func postgresConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		MaxConnLifetime: time.Hour,
		ApplicationName: cfg.Logging.Service,
	}
}

type storage struct {
	rooms   service.RoomRepository
	calls   service.CallHistoryRepository
	devices service.DeviceRepository
	pinger  httpx.Pinger
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, postgresConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			rooms:   postgres.NewRoomRepository(db.Pool),
			calls:   postgres.NewCallHistoryRepository(db.Pool),
			devices: postgres.NewDeviceRepository(db.Pool),
			pinger:  db,
			close:   db.Close,
		}, nil
	default:
		rooms := memstore.NewRoomStore()
		return &storage{
			rooms:   rooms,
			calls:   memstore.NewCallHistory(),
			devices: memstore.NewDeviceStore(),
			pinger:  rooms,
			close:   func() {},
		}, nil
	}
}

func runServe(ctx context.Context) error {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	defer logger.Sync()
	slog.Info("starting call-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "storage", cfg.Storage.Driver)

	// --- storage ---
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	// --- events ---
	pub, err := events.New(ctx, events.Config{
		Addr:    cfg.Redis.Addr,
		DB:      cfg.Redis.DB,
		Channel: cfg.Redis.Channel,
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = pub.Close() }()

	// --- services ---
	roomSvc := service.NewRoomService(store.rooms, store.calls, pub)
	deviceSvc := service.NewDeviceService(store.devices, pub)

	// --- WS coordinator ---
	coord := ws.NewCoordinator(roomSvc, deviceSvc)
	wsServer := ws.NewServer(coord, ws.Options{
		PingPeriod: cfg.WS.PingPeriodOr(15 * time.Second),
		WriteWait:  cfg.WS.WriteWaitOr(5 * time.Second),
		ReadLimit:  cfg.WS.ReadLimit,
	})

	// --- HTTP ---
	handler := httpx.NewHandler(coord, roomSvc, deviceSvc, store.pinger)
	router := httpx.NewRouter(handler, wsServer.HandleWS, httpx.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeoutOr(10 * time.Second),
		WriteTimeout: cfg.HTTP.WriteTimeoutOr(15 * time.Second),
		IdleTimeout:  cfg.HTTP.IdleTimeoutOr(60 * time.Second),
	}

	// --- gRPC ---
	grpcSrv := grpcx.NewServer()

	// --- run both servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			errCh <- err
			return
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-sigCtx.Done():
		slog.Info("shutdown signal received")
	case runErr = <-errCh:
		slog.Error("server error", "err", runErr)
	}

	grpcSrv.SetReady(false)

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// сначала сокеты: leave/offline должны попасть в хранилище до закрытия пула и redis
	if err := coord.Close(ctxShutdown); err != nil {
		slog.Warn("coordinator shutdown", "err", err)
	}
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	grpcSrv.Stop()

	slog.Info("stopped")
	return runErr
}
