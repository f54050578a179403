package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("server", TypeEnemyKilled, 5, EnemyKilled{EnemyID: 7, Class: "kraken", Killer: 1, Gold: 8})
	require.NoError(t, err)
	assert.Len(t, ev.ID, 36)
	assert.Equal(t, TypeEnemyKilled, ev.EventType)
	assert.Equal(t, 1, ev.Version)

	payload, err := Decode[EnemyKilled](ev)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), payload.EnemyID)
	assert.Equal(t, 1, payload.Killer)

	other, err := NewEvent("server", TypeEnemyKilled, 5, nil)
	require.NoError(t, err)
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestMemoryBus_FilterDelivery(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypePlayerJoined}}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		got = append(got, ev.EventType)
		mu.Unlock()
	})
	require.NoError(t, err)

	joined, _ := NewEvent("server", TypePlayerJoined, 5, PlayerJoined{ID: 0, Addr: "127.0.0.1:51000"})
	left, _ := NewEvent("server", TypePlayerLeft, 5, PlayerLeft{ID: 0, Reason: "leave"})
	require.NoError(t, bus.Publish(context.Background(), left))
	require.NoError(t, bus.Publish(context.Background(), joined))

	require.Eventually(t, func() bool {
		return bus.Metrics().Consumed == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{TypePlayerJoined}, got)
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	calls := make(chan struct{}, 4)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		calls <- struct{}{}
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEvent("server", TypeHazardSpawned, 1, Hazard{EnemyID: 3, Class: "storm"})
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	assert.Len(t, calls, 0)
}

func TestMemoryBus_ClosedRejectsPublish(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, _ := NewEvent("server", TypePlayerLeft, 5, PlayerLeft{})
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestMetricsExporter_Collect(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	reg := prometheus.NewRegistry()
	exporter := NewMetricsExporter(bus, reg)

	for i := 0; i < 3; i++ {
		ev, _ := NewEvent("server", TypeEnemyKilled, 5, EnemyKilled{EnemyID: uint64(i)})
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	exporter.Collect()
	assert.Equal(t, 3.0, testutil.ToFloat64(exporter.published))

	// Повторный сбор без новых событий не меняет счётчик
	exporter.Collect()
	assert.Equal(t, 3.0, testutil.ToFloat64(exporter.published))
}
