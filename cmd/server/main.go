package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/seafarer/internal/api"
	"github.com/annel0/seafarer/internal/config"
	"github.com/annel0/seafarer/internal/eventbus"
	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/network"
	"github.com/annel0/seafarer/internal/sim"
	"github.com/annel0/seafarer/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или GAME_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		os.Exit(1)
	}
	logging.SetDefaultLevels(logging.ParseLevel(cfg.Logging.Console), logging.ParseLevel(cfg.Logging.File))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ Сервер завершился с ошибкой: %v", err)
		os.Exit(1)
	}
	logging.Info("✅ Сервер корректно остановлен")
}

func run(ctx context.Context, cfg *config.Config) error {
	logging.Info("🎮 Запуск сервера океана: UDP=%s, legacy=%d, admin=%d",
		cfg.Server.UDPAddr(), cfg.Server.GetLegacyPort(), cfg.Server.GetAdminPort())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// === ХРАНИЛИЩА ===
	tiles, err := openTileStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer tiles.Close()

	grid, err := storage.LoadOrGenerate(ctx, tiles, cfg.Ocean.Seed, cfg.Ocean.Width, cfg.Ocean.Height, cfg.Ocean.TileSize)
	if err != nil {
		return fmt.Errorf("сетка океана: %w", err)
	}
	logging.Info("🌊 Океан %dx%d готов (сид %d)", grid.Width, grid.Height, cfg.Ocean.Seed)

	repo, closeRepo, err := openPlayerRepo(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	bus, err := openEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		logging.Warn("Не удалось подписать логгер событий: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, registry)

	// === СИМУЛЯЦИЯ И СЕТЬ ===
	opts := sim.DefaultOptions()
	opts.Role = sim.RoleServer
	opts.Seed = cfg.Simulation.Seed
	opts.Ocean = grid
	opts.IFrames = cfg.Simulation.IFrames
	opts.HazardInterval = cfg.Simulation.HazardInterval
	opts.MaxHazards = cfg.Simulation.MaxHazards
	opts.Boat.WindInfluence = cfg.Simulation.WindInfluence
	opts.Metrics = sim.NewMetrics(registry)

	server, err := network.NewServer(network.ServerConfig{
		Addr:          cfg.Server.UDPAddr(),
		MaxPlayers:    cfg.Server.MaxPlayers,
		TickRate:      cfg.Simulation.TickRate,
		BroadcastRate: cfg.Server.BroadcastRate,
		IdleTimeout:   cfg.Server.IdleTimeout,
		RateLimit:     cfg.Server.RateLimit,
		RateBurst:     cfg.Server.RateBurst,
	}, sim.New(opts), grid,
		network.WithPlayerRepo(repo),
		network.WithEventBus(bus),
		network.WithMetrics(network.NewMetrics(registry)),
	)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}

	legacyAddr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GetLegacyPort()))
	legacy := network.NewLegacyListener(legacyAddr, server.Lobby(), cfg.Server.UDPAddr())

	admin := api.NewAdminServer(api.Config{
		Addr:     net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GetAdminPort())),
		Lobby:    server.Lobby(),
		Repo:     repo,
		Registry: registry,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return legacy.Run(gctx) })
	g.Go(func() error { return admin.Run(gctx) })
	g.Go(func() error { return exporter.Run(gctx) })
	return g.Wait()
}

func openTileStore(cfg config.StorageConfig) (storage.TileStore, error) {
	if cfg.BadgerPath == "" {
		logging.Info("💾 Клетки океана хранятся в памяти")
		return storage.NewMemoryTileStore(), nil
	}
	store, err := storage.NewBadgerTileStore(cfg.BadgerPath)
	if err != nil {
		return nil, fmt.Errorf("хранилище океана: %w", err)
	}
	logging.Info("💾 Клетки океана хранятся в BadgerDB: %s", cfg.BadgerPath)
	return store, nil
}

func openPlayerRepo(ctx context.Context, cfg config.StorageConfig) (storage.PlayerRepo, func(), error) {
	if cfg.RedisAddr == "" {
		logging.Warn("⚠️ Снимки игроков хранятся в памяти и теряются при перезапуске")
		return storage.NewMemoryPlayerRepo(), func() {}, nil
	}

	redisCfg := storage.DefaultRedisConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.DB = cfg.RedisDB

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	repo, err := storage.NewRedisPlayerRepo(pingCtx, redisCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	logging.Info("💾 Снимки игроков хранятся в Redis: %s", cfg.RedisAddr)
	return repo, func() { repo.Close() }, nil
}

func openEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	logging.Info("📨 События публикуются в JetStream %s (стрим %s)", cfg.URL, cfg.Stream)
	return bus, nil
}
