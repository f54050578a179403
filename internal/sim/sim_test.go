package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/agent"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/vec"
)

const dt = 0.03125

// arena области без случайного населения
func arena(role Role) Options {
	opts := DefaultOptions()
	opts.Role = role
	opts.Regions = map[entity.Region]RegionSpec{
		entity.RegionTown:    {Region: entity.RegionTown, Extent: vec.Vec2{X: 1280, Y: 960}},
		entity.RegionDungeon: {Region: entity.RegionDungeon, Extent: vec.Vec2{X: 1600, Y: 1200}, Spawn: vec.Vec2{Y: -400}},
		entity.RegionOcean:   {Region: entity.RegionOcean, Extent: vec.Vec2{X: 2048, Y: 2048}, Naval: true},
	}
	return opts
}

func newDungeon(t *testing.T) (*Simulation, *entity.Entity) {
	t.Helper()
	s := New(arena(RoleStandalone))
	s.EnterRegion(entity.RegionDungeon)
	p := s.SpawnLocalPlayer()
	p.SetPosition2(vec.Vec2{})
	return s, p
}

func eventsOf(events []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestTick_MeleeSwingPersistsUntilLifetime(t *testing.T) {
	s, _ := newDungeon(t)
	bat := s.spawnEnemy(entity.ClassBat, vec.Vec2{X: 40})
	require.NotNil(t, bat)

	in := NewInputState()
	in.Pointer = vec.Vec2{X: 100}
	in.Press(ControlAttack)
	s.Tick(in, dt)

	assert.Equal(t, 1.0, bat.Health.Current, "урон меча 1, здоровье летучей мыши 2 → 1")
	swings := s.Registry().OfKind(entity.KindSwing)
	require.Len(t, swings, 1)
	swing := swings[0]
	require.NotNil(t, swing.Hitbox)
	assert.False(t, swing.Hitbox.Projectile)

	in.Release(ControlAttack)
	for i := 0; i < 2; i++ {
		s.Tick(in, dt)
		require.NotNil(t, swing.Hitbox, "хитбокс живёт 0.1 с, тик %d", i+2)
	}
	assert.Equal(t, 1.0, bat.Health.Current, "повторного попадания нет")

	s.Tick(in, dt)
	assert.Nil(t, swing.Hitbox, "хитбокс снят по истечении времени жизни")
	_, exists := s.Registry().Get(swing.ID)
	assert.True(t, exists, "удаляется только компонент, сущность взмаха остаётся")
}

func TestTick_ProjectileKillAwardsGold(t *testing.T) {
	s, p := newDungeon(t)
	s.SetNetID(2)
	bat := s.spawnEnemy(entity.ClassBat, vec.Vec2{X: 200})
	require.NotNil(t, bat)

	arrow := agent.SpawnProjectile(s.Registry(), vec.Vec2{X: 200}, vec.Vec2{X: 1}, agent.ProjectileSpec{
		Speed: 1, Lifetime: 1, Size: 10, Damage: 5, Class: "bow", Attacker: p.ID,
	})

	s.Tick(nil, dt)

	_, exists := s.Registry().Get(bat.ID)
	assert.False(t, exists, "враг удалён при нулевом здоровье")
	_, exists = s.Registry().Get(arrow.ID)
	assert.False(t, exists, "снаряд удалён при попадании")
	assert.Equal(t, 1, p.Player.Gold)

	events := s.Events()
	kills := eventsOf(events, EventEnemyKilled)
	require.Len(t, kills, 1)
	assert.Equal(t, "bat", kills[0].Class)
	assert.Equal(t, 2, kills[0].Killer)
	assert.Len(t, eventsOf(events, EventGoldAwarded), 1)
	assert.Empty(t, s.Events(), "события забираются один раз")
}

func TestTick_PlayerDeathAndRespawn(t *testing.T) {
	s, p := newDungeon(t)
	p.Health.Current = 1

	agent.SpawnProjectile(s.Registry(), vec.Vec2{}, vec.Vec2{X: 1}, agent.ProjectileSpec{
		Speed: 1, Lifetime: 1, Size: 10, Damage: 1, Class: "skeleton", Enemy: true,
	})
	s.Tick(nil, 0.25)

	require.True(t, p.Player.Dead)
	assert.Len(t, eventsOf(s.Events(), EventPlayerDied), 1)

	in := NewInputState()
	in.Press(ControlRight)
	p.SetPosition2(vec.Vec2{X: 100, Y: 100})
	for i := 0; i < 11; i++ {
		s.Tick(in, 0.25)
	}
	assert.True(t, p.Player.Dead, "ввод мёртвого игрока игнорируется")
	assert.Equal(t, vec.Vec2{X: 100, Y: 100}, p.Position2())

	s.Tick(nil, 0.25)
	assert.False(t, p.Player.Dead)
	assert.Equal(t, 5.0, p.Health.Current)
	assert.Equal(t, vec.Vec2{Y: -400}, p.Position2())
	assert.True(t, p.Hurtbox.Invulnerable())
	assert.Len(t, eventsOf(s.Events(), EventPlayerRespawned), 1)
}

func TestTick_WeaponSwitchRequiresItem(t *testing.T) {
	s, p := newDungeon(t)
	in := NewInputState()

	in.Press(ControlDagger)
	s.Tick(in, dt)
	assert.Equal(t, entity.WeaponSword, p.Player.Weapon)
	in.Release(ControlDagger)

	p.Player.Inventory = append(p.Player.Inventory, agent.NewItem(entity.WeaponDagger, 0))
	in.Press(ControlDagger)
	s.Tick(in, dt)
	assert.Equal(t, entity.WeaponDagger, p.Player.Weapon)
	assert.Len(t, s.Registry().OfKind(entity.KindWeapon), 1)
}

func TestEnterRegion_SwapsPopulationAndVehicle(t *testing.T) {
	s := New(Options{Seed: 7})
	p := s.SpawnLocalPlayer()

	s.EnterRegion(entity.RegionOcean)
	assert.NotNil(t, p.Boat)
	assert.Equal(t, entity.WeaponCannon, p.Player.Weapon)

	s.EnterRegion(entity.RegionDungeon)
	assert.Nil(t, p.Boat)
	assert.Equal(t, entity.WeaponSword, p.Player.Weapon)

	enemies := s.Registry().OfKind(entity.KindEnemy)
	require.NotEmpty(t, enemies)
	for _, e := range enemies {
		stats, ok := agent.Enemy(e.Enemy.Class)
		require.True(t, ok)
		assert.Equal(t, entity.RegionDungeon, stats.Region, "класс %s", e.Enemy.Class)
		assert.True(t, s.Bounds().Clamp(e.Position2(), e.HalfFootprint()) == e.Position2())
	}
}

func TestServer_HazardsSpawnAndExpire(t *testing.T) {
	opts := arena(RoleServer)
	opts.HazardInterval = 1
	opts.MaxHazards = 1
	s := New(opts)
	require.Equal(t, entity.RegionOcean, s.Region())

	var events []Event
	for i := 0; i < 100; i++ {
		s.Tick(nil, 0.25)
		events = append(events, s.Events()...)
	}

	spawned := eventsOf(events, EventHazardSpawned)
	expired := eventsOf(events, EventHazardExpired)
	require.NotEmpty(t, spawned)
	require.NotEmpty(t, expired)
	assert.Equal(t, spawned[0].NetID, expired[0].NetID)
	assert.LessOrEqual(t, len(s.Registry().OfKind(entity.KindHazard)), 1)
}

func newOceanClient(t *testing.T) (*Simulation, *entity.Entity) {
	t.Helper()
	s := New(arena(RoleClient))
	s.EnterRegion(entity.RegionOcean)
	p := s.SpawnLocalPlayer()
	s.SetNetID(0)
	return s, p
}

func TestClient_ApplyEnemiesSeqGate(t *testing.T) {
	s, _ := newOceanClient(t)
	assert.Empty(t, s.Registry().OfKind(entity.KindEnemy), "клиент не создаёт врагов океана сам")

	kraken := EnemyState{NetID: 100, Class: entity.ClassKraken, Position: vec.Vec2{X: 500}, Rotation: vec.QuatIdentity, HP: 7}
	require.True(t, s.ApplyEnemies(1, []EnemyState{kraken}))

	enemies := s.Registry().OfKind(entity.KindEnemy)
	require.Len(t, enemies, 1)
	mirror := enemies[0]
	assert.True(t, mirror.Enemy.Mirrored)
	assert.Equal(t, uint64(100), mirror.Enemy.NetID)
	assert.Equal(t, 7.0, mirror.Health.Current)

	s.Tick(nil, dt)
	assert.Equal(t, vec.Vec2{X: 500}, mirror.Position2(), "зеркало не двигается само")

	moved := kraken
	moved.Position = vec.Vec2{X: 10}
	assert.False(t, s.ApplyEnemies(1, []EnemyState{moved}), "устаревшая пачка")
	assert.Equal(t, vec.Vec2{X: 500}, mirror.Position2())

	require.True(t, s.ApplyEnemies(2, nil))
	assert.Empty(t, s.Registry().OfKind(entity.KindEnemy), "полная перезапись удаляет отсутствующих")
}

func TestClient_MirrorHitsAreReported(t *testing.T) {
	s, p := newOceanClient(t)
	require.True(t, s.SpawnMirror(EnemyState{NetID: 5, Class: entity.ClassGhostShip, Position: vec.Vec2{X: 900, Y: 900}, HP: 8}))

	agent.SpawnProjectile(s.Registry(), vec.Vec2{X: 900, Y: 900}, vec.Vec2{X: 1}, agent.ProjectileSpec{
		Speed: 1, Lifetime: 1, Size: 14, Damage: 2, Class: "cannon", Attacker: p.ID,
	})
	s.Tick(nil, dt)

	reports := s.HitReports()
	require.Len(t, reports, 1)
	assert.Equal(t, HitReport{NetID: 5, Damage: 2}, reports[0])
	assert.Len(t, s.Registry().OfKind(entity.KindEnemy), 1, "смерть зеркала решает сервер")

	require.True(t, s.RemoveMirror(5, 0))
	assert.Empty(t, s.Registry().OfKind(entity.KindEnemy))
	assert.Equal(t, 8, p.Player.Gold)
}

func TestApplyPlayer_MirrorsVerbatim(t *testing.T) {
	s, _ := newOceanClient(t)

	self := PlayerState{NetID: 0, Position: vec.Vec3{X: 1}, Used: true, Boat: true, Seq: 1}
	assert.False(t, s.ApplyPlayer(self), "собственная запись пропускается")

	st := PlayerState{NetID: 1, Position: vec.Vec3{X: 10, Y: 5, Z: 0}, Rotation: vec.QuatIdentity, Boat: true, Used: true, Seq: 3}
	require.True(t, s.ApplyPlayer(st))
	remotes := s.RemotePlayers()
	require.Len(t, remotes, 1)
	assert.Equal(t, vec.Vec3{X: 10, Y: 5, Z: 0}, remotes[0].Transform.Position)
	assert.Equal(t, vec.QuatIdentity, remotes[0].Transform.Rotation)

	stale := st
	stale.Seq = 2
	stale.Position = vec.Vec3{X: 99}
	assert.False(t, s.ApplyPlayer(stale))
	assert.Equal(t, vec.Vec3{X: 10, Y: 5, Z: 0}, remotes[0].Transform.Position)

	gone := st
	gone.Seq = 4
	gone.Used = false
	assert.True(t, s.ApplyPlayer(gone))
	assert.Empty(t, s.RemotePlayers())
}

func TestServer_HitReportKillsWithAttribution(t *testing.T) {
	s := New(arena(RoleServer))
	kraken := s.spawnEnemy(entity.ClassKraken, vec.Vec2{X: 900, Y: 900})
	require.NotNil(t, kraken)
	require.True(t, s.ApplyPlayer(PlayerState{NetID: 0, Boat: true, Used: true, Seq: 1}))

	assert.False(t, s.ApplyHitReport(9999, 5, 0), "несуществующая цель")
	require.True(t, s.ApplyHitReport(kraken.ID, 20, 0))
	s.Tick(nil, dt)

	kills := eventsOf(s.Events(), EventEnemyKilled)
	require.Len(t, kills, 1)
	assert.Equal(t, kraken.ID, kills[0].NetID)
	assert.Equal(t, 0, kills[0].Killer)

	states := s.EnemyStates()
	for _, st := range states {
		assert.NotEqual(t, kraken.ID, st.NetID)
	}
}

func TestTick_WalkingFollowsHeldKeys(t *testing.T) {
	s, p := newDungeon(t)
	in := NewInputState()
	in.Press(ControlRight)
	in.Press(ControlUp)

	for i := 0; i < 10; i++ {
		s.Tick(in, dt)
		in.EndFrame()
	}
	pos := p.Position2()
	assert.Greater(t, pos.X, 0.0)
	assert.Greater(t, pos.Y, 0.0)
	assert.InDelta(t, pos.X, pos.Y, 1e-9, "диагональ: обе оси одинаково")

	in.Release(ControlRight)
	in.Release(ControlUp)
	for i := 0; i < 20; i++ {
		s.Tick(in, dt)
	}
	assert.Equal(t, vec.Vec2{}, p.Velocity, "без ввода скорость гасится до нуля")

	in.Press(ControlLeft)
	before := p.Position2().X
	s.Tick(in, dt)
	assert.Less(t, p.Position2().X, before)
}

func TestApplyPlayer_NewSessionRestartsSeq(t *testing.T) {
	for _, role := range []Role{RoleClient, RoleServer} {
		s := New(arena(role))
		s.EnterRegion(entity.RegionOcean)
		s.SetNetID(0)

		old := PlayerState{NetID: 1, Position: vec.Vec3{X: 100, Y: 100}, Rotation: vec.QuatIdentity, Boat: true, Used: true, Seq: 50, Session: 10}
		require.True(t, s.ApplyPlayer(old))

		fresh := PlayerState{NetID: 1, Position: vec.Vec3{X: 7, Y: 7}, Rotation: vec.QuatIdentity, Boat: true, Used: true, Seq: 1, Session: 20}
		require.True(t, s.ApplyPlayer(fresh), "новая сессия начинает seq заново")

		late := old
		late.Seq = 51
		assert.False(t, s.ApplyPlayer(late), "запись прошлой сессии отбрасывается")

		remotes := s.RemotePlayers()
		require.Len(t, remotes, 1)
		assert.Equal(t, vec.Vec3{X: 7, Y: 7}, remotes[0].Transform.Position)

		next := fresh
		next.Seq = 2
		next.Position = vec.Vec3{X: 8, Y: 8}
		require.True(t, s.ApplyPlayer(next))
		assert.Equal(t, vec.Vec3{X: 8, Y: 8}, remotes[0].Transform.Position)
	}
}

func TestClient_SpawnAfterBatchKeepsSingleHazardMirror(t *testing.T) {
	s, _ := newOceanClient(t)
	storm := EnemyState{NetID: 42, Class: entity.ClassStorm, Position: vec.Vec2{X: 700, Y: 700}, Rotation: vec.QuatIdentity}

	require.True(t, s.ApplyEnemies(1, []EnemyState{storm}))
	assert.False(t, s.SpawnMirror(storm), "spawn_enemy после update_enemies не дублирует зеркало")
	require.Len(t, s.Registry().OfKind(entity.KindHazard), 1)

	require.True(t, s.ApplyEnemies(2, nil))
	assert.Empty(t, s.Registry().OfKind(entity.KindHazard))
}

func TestClient_RemoveMirrorDropsEveryCopy(t *testing.T) {
	s, _ := newOceanClient(t)
	storm := EnemyState{NetID: 42, Class: entity.ClassStorm, Position: vec.Vec2{X: 700, Y: 700}}
	require.NotNil(t, s.spawnMirror(storm))
	require.NotNil(t, s.spawnMirror(storm))

	assert.True(t, s.RemoveMirror(42, -1))
	assert.Empty(t, s.Registry().OfKind(entity.KindHazard))
}

func TestNew_UsesSimComponentLogger(t *testing.T) {
	s := New(arena(RoleStandalone))
	assert.Same(t, logging.GetSimLogger(), s.logger)
	assert.Contains(t, logging.GetLoggerManager().ListComponents(), "sim")
}
