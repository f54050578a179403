package entity

import (
	"github.com/annel0/seafarer/internal/combat"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// Transform положение сущности в мире
type Transform struct {
	Position vec.Vec3 // Z — только порядок отрисовки
	Rotation vec.Quat
	Scale    vec.Vec3
}

// Health здоровье
type Health struct {
	Current float64
	Max     float64
}

// Alive жива ли сущность
func (h *Health) Alive() bool {
	return h.Current > 0
}

// Item предмет инвентаря
type Item struct {
	Weapon WeaponClass
	Level  int
	Price  int
}

// Player данные игрока
type Player struct {
	Weapon       WeaponClass
	WeaponEntity uint64 // Дочерняя сущность оружия (0: нет)
	Inventory    []Item
	Gold         int
	Dead         bool
	Respawn      combat.Timer
}

// ItemLevel уровень улучшения оружия в инвентаре (0: не куплено)
func (p *Player) ItemLevel(w WeaponClass) int {
	for _, it := range p.Inventory {
		if it.Weapon == w {
			return it.Level
		}
	}
	return 0
}

// Boat данные корабля
type Boat struct {
	NetID         int     // Идентификатор игрока, выданный сервером
	Acceleration  float64 // Нарастающая добавка к скорости, пока удерживается «вперёд»
	RotationSpeed float64 // Радиан в секунду
	Seq           uint64  // Последняя применённая версия сетевой записи
	Session       int64   // Сессия, к которой относится Seq
}

// Enemy данные врага
type Enemy struct {
	Class    EnemyClass
	Mirrored bool   // Состояние приходит по сети, ИИ движения не выполняется
	NetID    uint64 // Идентификатор на сервере
	Seq      uint64 // Последняя применённая версия состояния
}

// Weapon оружие, прикреплённое к владельцу
type Weapon struct {
	Class  WeaponClass
	Level  int
	Damage float64
	Offset vec.Vec2 // Смещение относительно владельца
}

// Entity сущность симуляции. Необязательные компоненты — nil-указатели.
type Entity struct {
	ID        uint64
	Kind      Kind
	Transform Transform
	Velocity  vec.Vec2
	Footprint vec.Vec2     // Размер для столкновений с миром
	Bounds    physics.AABB // Синхронизируется с Transform при каждом перемещении
	Parent    uint64       // Владелец (для оружия)
	Remote    bool         // Зеркало сущности другого узла

	Hitbox   *combat.Hitbox
	Hurtbox  *combat.Hurtbox
	Cooldown *combat.Cooldown
	Lifetime *combat.Timer
	Health   *Health
	Player   *Player
	Boat     *Boat
	Enemy    *Enemy
	Weapon   *Weapon
}

// New создаёт сущность в точке pos
func New(kind Kind, pos vec.Vec2, footprint vec.Vec2) *Entity {
	e := &Entity{
		Kind: kind,
		Transform: Transform{
			Position: pos.Extend(zOrder(kind)),
			Rotation: vec.QuatIdentity,
			Scale:    vec.One3,
		},
		Footprint: footprint,
	}
	e.Bounds = physics.FromSize(pos, footprint)
	return e
}

// Position2 позиция на плоскости
func (e *Entity) Position2() vec.Vec2 {
	return e.Transform.Position.Truncate()
}

// SetPosition2 перемещает сущность и синхронизирует AABB
func (e *Entity) SetPosition2(p vec.Vec2) {
	e.Transform.Position = e.Transform.Position.WithXY(p)
	e.SyncBounds()
}

// SyncBounds подтягивает центр AABB к Transform
func (e *Entity) SyncBounds() {
	e.Bounds = physics.FromSize(e.Position2(), e.Footprint)
}

// Angle текущий угол поворота
func (e *Entity) Angle() float64 {
	return e.Transform.Rotation.Angle()
}

// SetAngle задаёт угол поворота
func (e *Entity) SetAngle(angle float64) {
	e.Transform.Rotation = vec.QuatFromAngle(vec.NormalizeAngle(angle))
}

// Forward направление «вперёд»
func (e *Entity) Forward() vec.Vec2 {
	return vec.Forward(e.Angle())
}

// HalfFootprint половина размера
func (e *Entity) HalfFootprint() vec.Vec2 {
	return e.Footprint.Mul(0.5)
}

func zOrder(kind Kind) float64 {
	switch kind {
	case KindHazard:
		return 1
	case KindEnemy:
		return 2
	case KindPlayer, KindBoat:
		return 3
	case KindWeapon, KindSwing:
		return 4
	case KindProjectile:
		return 5
	}
	return 0
}
