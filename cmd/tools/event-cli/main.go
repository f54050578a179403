package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/annel0/seafarer/internal/eventbus"
)

const (
	defaultNatsURL = "nats://127.0.0.1:4222"
	timeFormat     = "2006-01-02T15:04:05Z"
)

// event-cli выводит игровые события из JetStream в реальном времени
func main() {
	var (
		natsURL    = flag.String("nats", defaultNatsURL, "NATS server URL")
		stream     = flag.String("stream", "SEAFARER", "JetStream stream name")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		limit      = flag.Int("limit", 0, "Stop after N events (0: follow forever)")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Printf("🎬 Tailing events from %s (stream %s)\n", *natsURL, *stream)

	var count int64
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: parseStringList(*eventTypes)}, func(ctx context.Context, ev *eventbus.Envelope) {
		printEvent(ev)
		if n := atomic.AddInt64(&count, 1); *limit > 0 && n >= int64(*limit) {
			cancel()
		}
	})
	if err != nil {
		log.Fatalf("❌ Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	fmt.Printf("\n📊 Total events: %d\n", atomic.LoadInt64(&count))
}

// printEvent выводит событие в читаемом виде
func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %-15s src=%s id=%s\n", ev.Timestamp.Format(timeFormat), ev.EventType, ev.Source, ev.ID)

	switch ev.EventType {
	case eventbus.TypeEnemyKilled:
		if p, err := eventbus.Decode[eventbus.EnemyKilled](ev); err == nil {
			fmt.Printf("    ⚔️  %s #%d убит игроком %d (+%d золота) в (%.0f, %.0f)\n", p.Class, p.EnemyID, p.Killer, p.Gold, p.X, p.Y)
			return
		}
	case eventbus.TypePlayerJoined:
		if p, err := eventbus.Decode[eventbus.PlayerJoined](ev); err == nil {
			fmt.Printf("    👤 игрок %d с %s (вернулся: %v)\n", p.ID, p.Addr, p.Returned)
			return
		}
	case eventbus.TypePlayerLeft:
		if p, err := eventbus.Decode[eventbus.PlayerLeft](ev); err == nil {
			fmt.Printf("    👋 игрок %d с %s (%s)\n", p.ID, p.Addr, p.Reason)
			return
		}
	}
	fmt.Printf("    %s\n", ev.Payload)
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
