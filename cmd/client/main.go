package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/seafarer/internal/config"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/network"
	"github.com/annel0/seafarer/internal/sim"
)

// Безголовый клиент: подключается к океану, плывёт по кругу и стреляет,
// пока не получит сигнал или не истечёт -duration.
func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или GAME_CONFIG)")
	serverAddr := flag.String("server", "", "Адрес UDP-сервера (по умолчанию из конфигурации)")
	duration := flag.Duration("duration", 0, "Время игры, 0: до сигнала")
	flag.Parse()

	if err := logging.InitDefaultLogger("client"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		os.Exit(1)
	}
	if *serverAddr != "" {
		cfg.Client.ServerAddr = *serverAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := network.Dial(network.ClientConfig{
		ServerAddr:       cfg.Client.ServerAddr,
		BindHost:         cfg.Client.BindHost,
		HandshakeTimeout: cfg.Client.HandshakeTimeout,
		LeaveTimeout:     cfg.Client.LeaveTimeout,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	// Полное лобби и таймаут рукопожатия завершают клиент до начала цикла
	if err := client.Join(ctx); err != nil {
		var full *network.LobbyFullError
		if errors.As(err, &full) {
			logging.Error("Лобби заполнено: %s", full.Reason)
		}
		return err
	}

	opts := sim.DefaultOptions()
	opts.Role = sim.RoleClient
	opts.Seed = time.Now().UnixNano()
	opts.Ocean = client.Grid(cfg.Ocean.Width, cfg.Ocean.Height, cfg.Ocean.TileSize)
	opts.IFrames = cfg.Simulation.IFrames
	opts.Boat.WindInfluence = cfg.Simulation.WindInfluence

	world := sim.New(opts)
	world.SetNetID(client.ID())
	world.EnterRegion(entity.RegionOcean)
	world.SpawnLocalPlayer()

	input := sim.NewInputState()
	input.Press(sim.ControlUp)
	input.Press(sim.ControlLeft)

	ticker := time.NewTicker(cfg.Simulation.TickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return leave(client)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if _, err := client.Poll(world); err != nil {
				return err
			}

			if p, ok := world.Player(); ok {
				input.Pointer = p.Position2().Add(p.Forward().Mul(200))
			}
			if world.Ticks()%30 == 0 {
				input.Press(sim.ControlAttack)
			} else {
				input.Release(sim.ControlAttack)
			}
			world.Tick(input, dt)
			input.EndFrame()

			for _, ev := range world.Events() {
				logging.Info("Событие %s: класс=%s золото=%d", ev.Kind, ev.Class, ev.Gold)
			}
			if err := client.SendState(world); err != nil {
				logging.Warn("player_update: %v", err)
			}
			if err := client.SendHits(world); err != nil {
				logging.Warn("enemy_hit: %v", err)
			}
		}
	}
}

func leave(client *network.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Leave(ctx); err != nil {
		logging.Warn("Выход не подтверждён: %v", err)
	}
	return nil
}
