// Package protocol описывает формат UDP-сообщений: внешний конверт
// {"message": тег, "packet": строка} и пакет {"payload": T} внутри строки.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tag тип сообщения
type Tag string

const (
	TagNewPlayer     Tag = "new_player"
	TagJoinedLobby   Tag = "joined_lobby"
	TagFullLobby     Tag = "full_lobby"
	TagLoadOcean     Tag = "load_ocean"
	TagPlayerUpdate  Tag = "player_update"
	TagUpdatePlayers Tag = "update_players"
	TagUpdateEnemies Tag = "update_enemies"
	TagSpawnEnemy    Tag = "spawn_enemy"
	TagPlayerLeave   Tag = "player_leave"
	TagLeaveSuccess  Tag = "leave_success"
	TagEnemyHit      Tag = "enemy_hit"
	TagDespawnEnemy  Tag = "despawn_enemy"
)

var knownTags = map[Tag]bool{
	TagNewPlayer: true, TagJoinedLobby: true, TagFullLobby: true, TagLoadOcean: true,
	TagPlayerUpdate: true, TagUpdatePlayers: true, TagUpdateEnemies: true, TagSpawnEnemy: true,
	TagPlayerLeave: true, TagLeaveSuccess: true, TagEnemyHit: true, TagDespawnEnemy: true,
}

// Known входит ли тег в протокол
func (t Tag) Known() bool {
	return knownTags[t]
}

var (
	// ErrMalformed датаграмма не разбирается как конверт или пакет
	ErrMalformed = errors.New("некорректное сообщение")
	// ErrUnknownMessage тег не входит в протокол
	ErrUnknownMessage = errors.New("неизвестный тип сообщения")
)

// Envelope внешний конверт
type Envelope struct {
	Message Tag    `json:"message"`
	Packet  string `json:"packet"`
}

// Packet внутренний пакет с полезной нагрузкой
type Packet[T any] struct {
	Payload T `json:"payload"`
}

// Encode упаковывает полезную нагрузку в конверт с тегом
func Encode[T any](tag Tag, payload T) ([]byte, error) {
	inner, err := json.Marshal(Packet[T]{Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("сериализация пакета %s: %w", tag, err)
	}
	data, err := json.Marshal(Envelope{Message: tag, Packet: string(inner)})
	if err != nil {
		return nil, fmt.Errorf("сериализация конверта %s: %w", tag, err)
	}
	return data, nil
}

// Decode разбирает внешний конверт и проверяет тег
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Message == "" {
		return Envelope{}, fmt.Errorf("%w: пустой тег", ErrMalformed)
	}
	if !env.Message.Known() {
		return env, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Message)
	}
	return env, nil
}

// Unpack разбирает строку пакета в полезную нагрузку типа T
func Unpack[T any](env Envelope) (T, error) {
	var p Packet[T]
	if err := json.Unmarshal([]byte(env.Packet), &p); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: пакет %s: %v", ErrMalformed, env.Message, err)
	}
	return p.Payload, nil
}
