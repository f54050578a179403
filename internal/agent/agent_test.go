package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

func TestWeaponDamage_LevelScaling(t *testing.T) {
	assert.Equal(t, 1.0, WeaponDamage(entity.WeaponSword, 0))
	assert.Equal(t, 1.5, WeaponDamage(entity.WeaponSword, 2))
	assert.Equal(t, 0.9375, WeaponDamage(entity.WeaponDagger, 1))
}

func TestEquipWeapon_SingleChild(t *testing.T) {
	reg := entity.NewRegistry()
	p := SpawnPlayer(reg, vec.Vec2{})
	p.Player.Inventory = append(p.Player.Inventory, NewItem(entity.WeaponDagger, 2))

	first := p.Player.WeaponEntity
	require.NotZero(t, first)

	require.True(t, EquipWeapon(reg, p, entity.WeaponDagger))
	_, exists := reg.Get(first)
	assert.False(t, exists, "старое оружие удалено")
	assert.Len(t, reg.OfKind(entity.KindWeapon), 1)

	w, ok := reg.Get(p.Player.WeaponEntity)
	require.True(t, ok)
	assert.Equal(t, entity.WeaponDagger, w.Weapon.Class)
	assert.Equal(t, 1.125, w.Weapon.Damage)
	assert.Equal(t, 0.25, p.Cooldown.Duration)

	assert.False(t, EquipWeapon(reg, p, entity.WeaponBow), "не куплено")
	assert.False(t, EquipWeapon(reg, p, entity.WeaponCannon), "пушка только на корабле")
}

func TestPlayerAttack_MeleeSpawnsSwing(t *testing.T) {
	reg := entity.NewRegistry()
	p := SpawnPlayer(reg, vec.Vec2{})

	require.True(t, PlayerAttack(reg, p, vec.Vec2{X: 100}, true))
	swings := reg.OfKind(entity.KindSwing)
	require.Len(t, swings, 1)

	s := swings[0]
	assert.InDelta(t, 36, s.Position2().X, 1e-9)
	assert.Equal(t, 1.0, s.Hitbox.Damage)
	assert.False(t, s.Hitbox.Projectile)
	assert.False(t, s.Hitbox.Enemy)
	assert.Equal(t, p.ID, s.Hitbox.Attacker)
	require.NotNil(t, s.Hitbox.Lifetime)
	assert.Equal(t, 0.1, s.Hitbox.Lifetime.Remaining)

	assert.False(t, PlayerAttack(reg, p, vec.Vec2{X: 100}, true), "кулдаун")
	assert.False(t, PlayerAttack(reg, p, vec.Vec2{X: 100}, false))
}

func TestPlayerAttack_RangedTowardsCursor(t *testing.T) {
	reg := entity.NewRegistry()
	p := SpawnPlayer(reg, vec.Vec2{})
	p.Player.Inventory = append(p.Player.Inventory, NewItem(entity.WeaponBow, 0))
	require.True(t, EquipWeapon(reg, p, entity.WeaponBow))

	require.True(t, PlayerAttack(reg, p, vec.Vec2{X: 0, Y: -50}, true))
	arrows := reg.OfKind(entity.KindProjectile)
	require.Len(t, arrows, 1)
	assert.InDelta(t, -500, arrows[0].Velocity.Y, 1e-9)
	assert.True(t, arrows[0].Hitbox.Projectile)
	assert.Equal(t, 1.5, arrows[0].Lifetime.Remaining)
}

func TestEnemyAttack_RequiresDistanceAndCooldown(t *testing.T) {
	reg := entity.NewRegistry()
	skel, err := SpawnEnemy(reg, entity.ClassSkeleton, vec.Vec2{})
	require.NoError(t, err)

	assert.False(t, EnemyAttack(reg, skel, vec.Vec2{X: 451}), "цель дальше дистанции атаки")
	assert.True(t, EnemyAttack(reg, skel, vec.Vec2{X: 450}))
	assert.False(t, EnemyAttack(reg, skel, vec.Vec2{X: 100}), "кулдаун")

	projectiles := reg.OfKind(entity.KindProjectile)
	require.Len(t, projectiles, 1)
	assert.True(t, projectiles[0].Hitbox.Enemy)
	assert.InDelta(t, 300, projectiles[0].Velocity.X, 1e-9)

	skel.Cooldown.Tick(2)
	assert.True(t, EnemyAttack(reg, skel, vec.Vec2{X: 100}), "ровно по истечении кулдауна")
}

func TestEnemyAttack_SpreadVolley(t *testing.T) {
	reg := entity.NewRegistry()
	boss, err := SpawnEnemy(reg, entity.ClassBoss, vec.Vec2{})
	require.NoError(t, err)

	require.True(t, EnemyAttack(reg, boss, vec.Vec2{Y: 300}))
	assert.Len(t, reg.OfKind(entity.KindProjectile), 3)
}

func TestSpawnEnemy_ClassComponents(t *testing.T) {
	reg := entity.NewRegistry()

	bat, err := SpawnEnemy(reg, entity.ClassBat, vec.Vec2{})
	require.NoError(t, err)
	assert.NotNil(t, bat.Hurtbox)
	assert.NotNil(t, bat.Hitbox, "летучая мышь ранит касанием")
	assert.Nil(t, bat.Cooldown)
	assert.Equal(t, 2.0, bat.Health.Current)

	rock, err := SpawnEnemy(reg, entity.ClassRock, vec.Vec2{})
	require.NoError(t, err)
	assert.Nil(t, rock.Hurtbox)
	assert.Nil(t, rock.Lifetime)

	storm, err := SpawnEnemy(reg, entity.ClassStorm, vec.Vec2{})
	require.NoError(t, err)
	assert.Equal(t, entity.KindHazard, storm.Kind)
	require.NotNil(t, storm.Lifetime)
	assert.Equal(t, 15.0, storm.Lifetime.Remaining)
	assert.Equal(t, 2.0, storm.Hitbox.IFrames)
}

func TestEmbark_SwapsToCannon(t *testing.T) {
	reg := entity.NewRegistry()
	p := SpawnPlayer(reg, vec.Vec2{})

	Embark(reg, p, 3)
	require.NotNil(t, p.Boat)
	assert.Equal(t, 3, p.Boat.NetID)
	assert.Equal(t, entity.WeaponCannon, p.Player.Weapon)
	assert.Len(t, reg.OfKind(entity.KindWeapon), 1)

	Disembark(reg, p)
	assert.Nil(t, p.Boat)
	assert.Equal(t, entity.WeaponSword, p.Player.Weapon)
}

func TestRegionClasses(t *testing.T) {
	assert.ElementsMatch(t,
		[]entity.EnemyClass{entity.ClassKraken, entity.ClassGhostShip, entity.ClassRock},
		RegionClasses(entity.RegionOcean))
	assert.ElementsMatch(t,
		[]entity.EnemyClass{entity.ClassBat, entity.ClassSkeleton, entity.ClassBoss},
		RegionClasses(entity.RegionDungeon))
}
