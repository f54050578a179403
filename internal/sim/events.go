package sim

import "github.com/annel0/seafarer/internal/vec"

// EventKind тип игрового события
type EventKind uint8

const (
	EventEnemyKilled EventKind = iota
	EventPlayerDied
	EventPlayerRespawned
	EventHazardSpawned
	EventHazardExpired
	EventGoldAwarded
)

var eventNames = [...]string{
	"enemy_killed", "player_died", "player_respawned",
	"hazard_spawned", "hazard_expired", "gold_awarded",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event игровое событие тика. Забирается вызывающим кодом через Simulation.Events.
type Event struct {
	Kind     EventKind
	Entity   uint64
	NetID    uint64 // Сетевой идентификатор врага
	Class    string
	Killer   int // Сетевой id игрока-убийцы, -1 если неизвестен
	Gold     int
	Position vec.Vec2
}

// HitReport урон, нанесённый зеркалу океанского врага. Отправляется серверу как enemy_hit.
type HitReport struct {
	NetID  uint64
	Damage float64
}
