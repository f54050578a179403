package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/vec"
)

type recordingObserver struct {
	spawned, despawned []uint64
}

func (o *recordingObserver) EntitySpawned(e *Entity)   { o.spawned = append(o.spawned, e.ID) }
func (o *recordingObserver) EntityDespawned(e *Entity) { o.despawned = append(o.despawned, e.ID) }

func TestRegistry_DespawnRemovesChildren(t *testing.T) {
	r := NewRegistry()
	obs := &recordingObserver{}
	r.SetObserver(obs)

	owner := r.Spawn(New(KindPlayer, vec.Vec2{}, vec.Vec2{X: 10, Y: 10}))
	weapon := New(KindWeapon, vec.Vec2{}, vec.Vec2{})
	weapon.Parent = owner
	weaponID := r.Spawn(weapon)

	require.True(t, r.Despawn(owner))
	_, exists := r.Get(weaponID)
	assert.False(t, exists, "оружие удаляется вместе с владельцем")
	assert.ElementsMatch(t, []uint64{owner, weaponID}, obs.despawned)

	assert.False(t, r.Despawn(owner), "повторное удаление игнорируется")
}

func TestRegistry_EachOrderedAndSafe(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		r.Spawn(New(KindEnemy, vec.Vec2{}, vec.Vec2{}))
	}

	var seen []uint64
	r.Each(func(e *Entity) {
		seen = append(seen, e.ID)
		r.Despawn(e.ID + 1)
	})
	assert.Equal(t, []uint64{1, 3, 5}, seen)
}

func TestRegistry_ExplicitID(t *testing.T) {
	r := NewRegistry()
	e := New(KindBoat, vec.Vec2{}, vec.Vec2{})
	e.ID = 40
	r.Spawn(e)

	next := r.Spawn(New(KindBoat, vec.Vec2{}, vec.Vec2{}))
	assert.Equal(t, uint64(41), next)
	assert.Equal(t, 2, r.Stats()["kind_boat"])
}

func TestEntity_SetPositionSyncsBounds(t *testing.T) {
	e := New(KindPlayer, vec.Vec2{}, vec.Vec2{X: 4, Y: 6})
	e.SetPosition2(vec.Vec2{X: 10, Y: 5})

	assert.Equal(t, vec.Vec2{X: 10, Y: 5}, e.Bounds.Center)
	assert.Equal(t, vec.Vec2{X: 8, Y: 2}, e.Bounds.Min)
	assert.Equal(t, 3.0, e.Transform.Position.Z)
}

func TestEnemyClass_TextRoundTrip(t *testing.T) {
	for _, c := range EnemyClasses {
		text, err := c.MarshalText()
		require.NoError(t, err)
		var back EnemyClass
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}
	_, err := ParseEnemyClass("dragon")
	assert.Error(t, err)
}
