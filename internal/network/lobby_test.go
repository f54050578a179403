package network

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/protocol"
	"github.com/annel0/seafarer/internal/vec"
)

func udpAddr(t *testing.T, s string) *net.UDPAddr {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", s)
	require.NoError(t, err)
	return addr
}

func TestLobby_JoinAssignsLowestFreeID(t *testing.T) {
	lobby := NewLobby(2)
	now := time.Now()

	first, rejoined, err := lobby.Join(udpAddr(t, "127.0.0.1:51000"), "a", now)
	require.NoError(t, err)
	assert.False(t, rejoined)
	assert.Equal(t, 0, first.ID)

	second, _, err := lobby.Join(udpAddr(t, "127.0.0.1:51001"), "b", now)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ID)

	_, _, err = lobby.Join(udpAddr(t, "127.0.0.1:51002"), "c", now)
	assert.True(t, errors.Is(err, ErrLobbyFull))

	_, ok := lobby.Leave("127.0.0.1:51000")
	require.True(t, ok)
	third, _, err := lobby.Join(udpAddr(t, "127.0.0.1:51002"), "c", now)
	require.NoError(t, err)
	assert.Equal(t, 0, third.ID, "освободившееся место 0 занимается первым")
}

func TestLobby_Rejoin(t *testing.T) {
	lobby := NewLobby(4)
	addr := udpAddr(t, "127.0.0.1:51000")
	now := time.Now()

	m, _, err := lobby.Join(addr, "token", now)
	require.NoError(t, err)
	_, ok := lobby.Update(addr.String(), protocol.PlayerRecord{Seq: 3}, now)
	require.True(t, ok)

	again, rejoined, err := lobby.Join(addr, "token", now)
	require.NoError(t, err)
	assert.True(t, rejoined)
	assert.Equal(t, m.ID, again.ID)
	assert.True(t, again.Updated, "повторный new_player не сбрасывает состояние")

	fresh, rejoined, err := lobby.Join(addr, "other", now)
	require.NoError(t, err)
	assert.False(t, rejoined)
	assert.Equal(t, m.ID, fresh.ID)
	assert.False(t, fresh.Updated, "новая сессия начинается заново")
	assert.Equal(t, 1, lobby.Size())
}

func TestLobby_UpdateSeqGate(t *testing.T) {
	lobby := NewLobby(4)
	addr := udpAddr(t, "127.0.0.1:51000")
	now := time.Now()
	_, _, err := lobby.Join(addr, "", now)
	require.NoError(t, err)

	rec, ok := lobby.Update(addr.String(), protocol.PlayerRecord{ID: 9, Position: vec.Vec3{X: 10, Y: 5}, Seq: 2}, now)
	require.True(t, ok)
	assert.Equal(t, 0, rec.ID, "id подменяется выданным лобби")
	assert.Equal(t, addr.String(), rec.Addr)

	_, ok = lobby.Update(addr.String(), protocol.PlayerRecord{Position: vec.Vec3{X: 99}, Seq: 1}, now)
	assert.False(t, ok, "устаревшая запись отбрасывается")
	_, ok = lobby.Update(addr.String(), protocol.PlayerRecord{Seq: 2}, now)
	assert.False(t, ok, "повтор отбрасывается")

	records := lobby.Records()
	require.Len(t, records, 1)
	assert.Equal(t, vec.Vec3{X: 10, Y: 5}, records[0].Position)

	_, ok = lobby.Update("10.0.0.1:1", protocol.PlayerRecord{Seq: 5}, now)
	assert.False(t, ok, "чужой адрес")
}

func TestLobby_AcceptHit(t *testing.T) {
	lobby := NewLobby(4)
	addr := udpAddr(t, "127.0.0.1:51000")
	now := time.Now()
	_, _, err := lobby.Join(addr, "", now)
	require.NoError(t, err)

	id, ok := lobby.AcceptHit(addr.String(), 1, now)
	assert.True(t, ok)
	assert.Equal(t, 0, id)
	_, ok = lobby.AcceptHit(addr.String(), 1, now)
	assert.False(t, ok)
	id, ok = lobby.AcceptHit("10.0.0.1:1", 1, now)
	assert.False(t, ok)
	assert.Equal(t, -1, id)
}

func TestLobby_EvictIdle(t *testing.T) {
	lobby := NewLobby(4)
	start := time.Now()
	_, _, err := lobby.Join(udpAddr(t, "127.0.0.1:51000"), "", start)
	require.NoError(t, err)
	_, _, err = lobby.Join(udpAddr(t, "127.0.0.1:51001"), "", start)
	require.NoError(t, err)

	later := start.Add(5 * time.Second)
	_, ok := lobby.Update("127.0.0.1:51001", protocol.PlayerRecord{Seq: 1}, later)
	require.True(t, ok)

	evicted := lobby.Evict(later.Add(time.Second), 3*time.Second)
	require.Len(t, evicted, 1)
	assert.Equal(t, 0, evicted[0].ID)
	assert.Equal(t, 1, lobby.Size())
}

func TestLobbyFullError(t *testing.T) {
	var err error = &LobbyFullError{Reason: "все 4 мест заняты"}
	assert.True(t, errors.Is(err, ErrLobbyFull))

	var full *LobbyFullError
	require.True(t, errors.As(err, &full))
	assert.Contains(t, err.Error(), full.Reason)
}

func TestLobby_NewSessionStampsRecords(t *testing.T) {
	lobby := NewLobby(4)
	addr := udpAddr(t, "127.0.0.1:51000")
	first := time.Now()

	_, _, err := lobby.Join(addr, "a", first)
	require.NoError(t, err)
	old, ok := lobby.Update(addr.String(), protocol.PlayerRecord{Seq: 50}, first)
	require.True(t, ok)
	assert.Equal(t, first.UnixNano(), old.Session)

	second := first.Add(time.Second)
	_, rejoined, err := lobby.Join(addr, "b", second)
	require.NoError(t, err)
	require.False(t, rejoined)

	fresh, ok := lobby.Update(addr.String(), protocol.PlayerRecord{Seq: 1}, second)
	require.True(t, ok, "после сброса сессии seq начинается заново")
	assert.Greater(t, fresh.Session, old.Session)
}
