package agent

import (
	"fmt"

	"github.com/annel0/seafarer/internal/combat"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

// Параметры игрока
const (
	PlayerSize          = 32
	PlayerMaxHealth     = 5
	BoatSize            = 64
	BoatRotationSpeed   = 2.5
	PlayerRespawnDelay  = 3
	PlayerRespawnIFrame = 2
)

// SpawnEnemy создаёт врага или стихию указанного класса
func SpawnEnemy(reg *entity.Registry, class entity.EnemyClass, pos vec.Vec2) (*entity.Entity, error) {
	stats, ok := Enemy(class)
	if !ok {
		return nil, fmt.Errorf("нет характеристик для класса %s", class)
	}

	kind := entity.KindEnemy
	if stats.Hazard {
		kind = entity.KindHazard
	}
	e := entity.New(kind, pos, stats.Footprint())
	e.Enemy = &entity.Enemy{Class: class}

	if stats.Hurtable() {
		e.Health = &entity.Health{Current: stats.MaxHP, Max: stats.MaxHP}
		e.Hurtbox = combat.NewHurtbox(stats.Footprint(), class.String(), true)
	}
	if stats.BodyDamage > 0 {
		e.Hitbox = &combat.Hitbox{
			Size:    stats.Footprint(),
			Class:   class.String(),
			Enemy:   true,
			Damage:  stats.BodyDamage,
			IFrames: stats.IFrames,
		}
	}
	if stats.Attack != AttackNone {
		e.Cooldown = combat.NewCooldown(stats.Cooldown)
	}
	if stats.Lifetime > 0 {
		e.Lifetime = combat.NewTimer(stats.Lifetime)
	}

	reg.Spawn(e)
	if e.Hitbox != nil {
		e.Hitbox.Attacker = e.ID
	}
	return e, nil
}

// SpawnPlayer создаёт пешего игрока с мечом
func SpawnPlayer(reg *entity.Registry, pos vec.Vec2) *entity.Entity {
	size := vec.Vec2{X: PlayerSize, Y: PlayerSize}
	e := entity.New(entity.KindPlayer, pos, size)
	e.Health = &entity.Health{Current: PlayerMaxHealth, Max: PlayerMaxHealth}
	e.Hurtbox = combat.NewHurtbox(size, "player", false)
	e.Player = &entity.Player{
		Weapon:    entity.WeaponSword,
		Inventory: []entity.Item{NewItem(entity.WeaponSword, 0)},
	}
	reg.Spawn(e)
	EquipWeapon(reg, e, entity.WeaponSword)
	return e
}

// Embark сажает игрока на корабль: меняет размер, хёртбокс и оружие на пушку
func Embark(reg *entity.Registry, e *entity.Entity, netID int) {
	size := vec.Vec2{X: BoatSize, Y: BoatSize}
	e.Kind = entity.KindBoat
	e.Footprint = size
	e.SyncBounds()
	e.Boat = &entity.Boat{NetID: netID, RotationSpeed: BoatRotationSpeed}
	if e.Hurtbox != nil {
		e.Hurtbox.Size = size
		e.Hurtbox.Class = "boat"
	}
	if e.Player != nil {
		if !hasItem(e.Player, entity.WeaponCannon) {
			e.Player.Inventory = append(e.Player.Inventory, NewItem(entity.WeaponCannon, 0))
		}
		EquipWeapon(reg, e, entity.WeaponCannon)
	}
}

// Disembark высаживает игрока на берег
func Disembark(reg *entity.Registry, e *entity.Entity) {
	size := vec.Vec2{X: PlayerSize, Y: PlayerSize}
	e.Kind = entity.KindPlayer
	e.Footprint = size
	e.SyncBounds()
	e.Boat = nil
	e.Velocity = vec.Vec2{}
	if e.Hurtbox != nil {
		e.Hurtbox.Size = size
		e.Hurtbox.Class = "player"
	}
	if e.Player != nil {
		EquipWeapon(reg, e, entity.WeaponSword)
	}
}

// SpawnRemoteBoat создаёт зеркало корабля другого игрока
func SpawnRemoteBoat(reg *entity.Registry, netID int, pos vec.Vec2) *entity.Entity {
	size := vec.Vec2{X: BoatSize, Y: BoatSize}
	e := entity.New(entity.KindBoat, pos, size)
	e.Remote = true
	e.Boat = &entity.Boat{NetID: netID, RotationSpeed: BoatRotationSpeed}
	e.Hurtbox = combat.NewHurtbox(size, "boat", false)
	reg.Spawn(e)
	return e
}

func hasItem(p *entity.Player, w entity.WeaponClass) bool {
	for _, it := range p.Inventory {
		if it.Weapon == w {
			return true
		}
	}
	return false
}
