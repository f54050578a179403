package agent

import (
	"github.com/annel0/seafarer/internal/combat"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

// ProjectileSpec параметры выпускаемого снаряда
type ProjectileSpec struct {
	Speed    float64
	Lifetime float64
	Size     float64
	Damage   float64
	Class    string
	Enemy    bool
	Attacker uint64
}

// SpawnProjectile создаёт снаряд из origin в направлении dir
func SpawnProjectile(reg *entity.Registry, origin, dir vec.Vec2, spec ProjectileSpec) *entity.Entity {
	heading := dir.Normalized()
	if heading.IsZero() {
		heading = vec.Vec2{Y: 1}
	}
	size := vec.Vec2{X: spec.Size, Y: spec.Size}

	e := entity.New(entity.KindProjectile, origin, size)
	e.Velocity = heading.Mul(spec.Speed)
	e.SetAngle(vec.Vec2{Y: 1}.AngleTo(heading))
	e.Lifetime = combat.NewTimer(spec.Lifetime)
	e.Hitbox = &combat.Hitbox{
		Size:       size,
		Class:      spec.Class,
		Projectile: true,
		Enemy:      spec.Enemy,
		Damage:     spec.Damage,
		Attacker:   spec.Attacker,
	}
	reg.Spawn(e)
	return e
}

// SwingSpec параметры взмаха ближнего боя
type SwingSpec struct {
	Size     float64
	Reach    float64
	Hitbox   float64 // Время жизни хитбокса
	Duration float64 // Время жизни сущности взмаха
	Damage   float64
	Class    string
	Attacker uint64
}

// SpawnSwing создаёт неподвижный хитбокс, смещённый от владельца в направлении dir
func SpawnSwing(reg *entity.Registry, owner vec.Vec2, dir vec.Vec2, spec SwingSpec) *entity.Entity {
	heading := dir.Normalized()
	size := vec.Vec2{X: spec.Size, Y: spec.Size}

	e := entity.New(entity.KindSwing, owner.Add(heading.Mul(spec.Reach)), size)
	e.Lifetime = combat.NewTimer(spec.Duration)
	e.Hitbox = &combat.Hitbox{
		Size:     size,
		Lifetime: combat.NewTimer(spec.Hitbox),
		Class:    spec.Class,
		Damage:   spec.Damage,
		Attacker: spec.Attacker,
	}
	reg.Spawn(e)
	return e
}

// attackFunc поведение атаки класса врага
type attackFunc func(reg *entity.Registry, e *entity.Entity, stats EnemyStats, target vec.Vec2)

var attackTable = map[AttackKind]attackFunc{
	AttackProjectile: fireSingle,
	AttackSpread:     fireSpread,
}

func enemyProjectile(e *entity.Entity, stats EnemyStats) ProjectileSpec {
	return ProjectileSpec{
		Speed:    stats.ProjectileSpeed,
		Lifetime: stats.ProjectileLifetime,
		Size:     stats.ProjectileSize,
		Damage:   stats.Damage,
		Class:    e.Enemy.Class.String(),
		Enemy:    true,
		Attacker: e.ID,
	}
}

func fireSingle(reg *entity.Registry, e *entity.Entity, stats EnemyStats, target vec.Vec2) {
	SpawnProjectile(reg, e.Position2(), target.Sub(e.Position2()), enemyProjectile(e, stats))
}

func fireSpread(reg *entity.Registry, e *entity.Entity, stats EnemyStats, target vec.Vec2) {
	dir := target.Sub(e.Position2()).Normalized()
	n := stats.Volley
	if n < 1 {
		n = 1
	}
	start := -stats.VolleyArc * float64(n-1) / 2
	for i := 0; i < n; i++ {
		heading := dir.Rotated(start + stats.VolleyArc*float64(i))
		SpawnProjectile(reg, e.Position2(), heading, enemyProjectile(e, stats))
	}
}

// EnemyAttack автомат атаки врага: Ready и цель в пределах AttackDistance → выстрел → Cooldown.
// Возвращает true, если атака произошла.
func EnemyAttack(reg *entity.Registry, e *entity.Entity, target vec.Vec2) bool {
	if e.Enemy == nil || e.Cooldown == nil {
		return false
	}
	stats, ok := Enemy(e.Enemy.Class)
	if !ok {
		return false
	}
	fire, ok := attackTable[stats.Attack]
	if !ok {
		return false
	}
	if e.Position2().DistanceTo(target) > stats.AttackDistance {
		return false
	}
	if !e.Cooldown.TryTrigger() {
		return false
	}

	fire(reg, e, stats, target)
	return true
}

// PlayerAttack автомат атаки игрока: нажатие и Ready → взмах или выстрел в сторону курсора → Cooldown
func PlayerAttack(reg *entity.Registry, e *entity.Entity, cursor vec.Vec2, pressed bool) bool {
	if !pressed || e.Player == nil || e.Cooldown == nil || e.Player.Dead {
		return false
	}
	weapon, ok := reg.Get(e.Player.WeaponEntity)
	if !ok || weapon.Weapon == nil {
		return false
	}
	stats, ok := Weapon(weapon.Weapon.Class)
	if !ok {
		return false
	}
	if !e.Cooldown.TryTrigger() {
		return false
	}

	dir := cursor.Sub(e.Position2())
	if dir.IsZero() {
		dir = e.Forward()
	}

	if stats.Melee {
		SpawnSwing(reg, e.Position2(), dir, SwingSpec{
			Size:     stats.HitboxSize,
			Reach:    stats.Reach,
			Hitbox:   stats.SwingLifetime,
			Duration: stats.SwingDuration,
			Damage:   weapon.Weapon.Damage,
			Class:    weapon.Weapon.Class.String(),
			Attacker: e.ID,
		})
		return true
	}

	SpawnProjectile(reg, e.Position2(), dir, ProjectileSpec{
		Speed:    stats.ProjectileSpeed,
		Lifetime: stats.ProjectileLifetime,
		Size:     stats.HitboxSize,
		Damage:   weapon.Weapon.Damage,
		Class:    weapon.Weapon.Class.String(),
		Attacker: e.ID,
	})
	return true
}

// EquipWeapon заменяет дочернюю сущность оружия. У игрока всегда не больше одного оружия.
func EquipWeapon(reg *entity.Registry, e *entity.Entity, class entity.WeaponClass) bool {
	if e.Player == nil {
		return false
	}
	stats, ok := Weapon(class)
	if !ok {
		return false
	}
	if !hasItem(e.Player, class) {
		return false
	}
	if stats.Naval != (e.Boat != nil) {
		return false
	}

	if e.Player.WeaponEntity != 0 {
		reg.Despawn(e.Player.WeaponEntity)
		e.Player.WeaponEntity = 0
	}

	level := e.Player.ItemLevel(class)
	offset := vec.Vec2{X: e.Footprint.X / 2}
	w := entity.New(entity.KindWeapon, e.Position2().Add(offset), vec.Vec2{})
	w.Parent = e.ID
	w.Weapon = &entity.Weapon{
		Class:  class,
		Level:  level,
		Damage: WeaponDamage(class, level),
		Offset: offset,
	}
	reg.Spawn(w)

	e.Player.Weapon = class
	e.Player.WeaponEntity = w.ID
	if e.Cooldown == nil {
		e.Cooldown = combat.NewCooldown(stats.Cooldown)
	}
	e.Cooldown.Duration = stats.Cooldown
	return true
}

// SyncWeapon ставит оружие рядом с владельцем
func SyncWeapon(reg *entity.Registry, e *entity.Entity) {
	if e.Player == nil || e.Player.WeaponEntity == 0 {
		return
	}
	w, ok := reg.Get(e.Player.WeaponEntity)
	if !ok || w.Weapon == nil {
		return
	}
	w.SetPosition2(e.Position2().Add(w.Weapon.Offset))
	w.Transform.Rotation = e.Transform.Rotation
}
