package protocol

import (
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/ocean"
	"github.com/annel0/seafarer/internal/vec"
)

// PlayerRecord сетевая реплика игрока (player_update, update_players)
type PlayerRecord struct {
	ID       int      `json:"id"`
	Addr     string   `json:"addr"`
	Position vec.Vec3 `json:"position"`
	Rotation vec.Quat `json:"rotation"`
	Boat     bool     `json:"boat"`
	Used     bool     `json:"used"`
	Seq      uint64   `json:"seq"`
	Session  int64    `json:"session,omitempty"` // Время входа в лобби; seq сравнивается только внутри сессии
}

// JoinRequest полезная нагрузка new_player
type JoinRequest struct {
	Addr  string `json:"addr"`
	Token string `json:"token"` // Сессионный токен клиента (UUID)
}

// JoinReply полезная нагрузка joined_lobby
type JoinReply struct {
	ID    int    `json:"id"`
	Tiles int    `json:"tiles"` // Сколько клеток океана последует
	Token string `json:"token"`
}

// LobbyFull полезная нагрузка full_lobby
type LobbyFull struct {
	Reason string `json:"reason"`
}

// OceanTile полезная нагрузка load_ocean: одна клетка за сообщение
type OceanTile = ocean.Tile

// EnemyRecord сетевая реплика океанского врага
type EnemyRecord struct {
	ID       uint64            `json:"id"`
	Class    entity.EnemyClass `json:"class"`
	Position vec.Vec2          `json:"position"`
	Rotation vec.Quat          `json:"rotation"`
	HP       float64           `json:"hp"`
}

// EnemyBatch полезная нагрузка update_enemies: полное состояние врагов
type EnemyBatch struct {
	Seq     uint64        `json:"seq"`
	Enemies []EnemyRecord `json:"enemies"`
}

// EnemyHit полезная нагрузка enemy_hit: урон, нанесённый клиентом зеркалу врага
type EnemyHit struct {
	EnemyID uint64  `json:"enemy_id"`
	Damage  float64 `json:"damage"`
	Seq     uint64  `json:"seq"`
}

// EnemyDespawn полезная нагрузка despawn_enemy
type EnemyDespawn struct {
	EnemyID uint64 `json:"enemy_id"`
	Class   string `json:"class"`
	Killer  int    `json:"killer"` // -1: враг исчез сам
}

// Leave полезная нагрузка player_leave и leave_success
type Leave struct {
	ID   int    `json:"id"`
	Addr string `json:"addr"`
}
