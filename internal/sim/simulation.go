package sim

import (
	"math/rand"
	"time"

	"github.com/annel0/seafarer/internal/agent"
	"github.com/annel0/seafarer/internal/combat"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/movement"
	"github.com/annel0/seafarer/internal/ocean"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// Role определяет, какие части мира симулируются локально
type Role uint8

const (
	RoleStandalone Role = iota // Весь мир локальный
	RoleClient                 // Враги океана приходят с сервера, подземелье локальное
	RoleServer                 // Только океан, без локального игрока
)

// Options параметры симуляции
type Options struct {
	Role           Role
	Seed           int64
	Regions        map[entity.Region]RegionSpec
	Ocean          *ocean.Grid // Ветер и рифы; nil — штиль
	Walk           movement.Params
	Boat           movement.BoatParams
	IFrames        float64 // Неуязвимость после попадания по умолчанию
	HazardInterval float64
	MaxHazards     int
	Metrics        *Metrics
}

// DefaultOptions значения по умолчанию
func DefaultOptions() Options {
	return Options{
		Regions: DefaultRegions(),
		Walk:    movement.Params{Acceleration: 1200, MaxSpeed: 240},
		Boat: movement.BoatParams{
			Params:          movement.Params{Acceleration: 300, MaxSpeed: 180},
			RampRate:        40,
			MaxAcceleration: 80,
			WindInfluence:   0.3,
		},
		IFrames:        combat.DefaultIFrames,
		HazardInterval: 8,
		MaxHazards:     3,
	}
}

// Simulation явное состояние игрового мира. Все системы получают его через методы,
// глобального состояния нет.
type Simulation struct {
	opts    Options
	reg     *entity.Registry
	queue   combat.EventQueue
	rng     *rand.Rand
	region  entity.Region
	player  uint64 // Локальный игрок (0: нет)
	netID   int    // Сетевой id локального игрока (-1: не назначен)
	hazards combat.Timer

	events   []Event
	reports  []HitReport
	enemySeq uint64 // Последняя применённая пачка update_enemies
	ticks    uint64
	logger   *logging.Logger
}

// New создаёт симуляцию. Сервер сразу находится в океане.
func New(opts Options) *Simulation {
	def := DefaultOptions()
	if opts.Regions == nil {
		opts.Regions = def.Regions
	}
	if opts.Walk.Acceleration == 0 {
		opts.Walk = def.Walk
	}
	if opts.Boat.Acceleration == 0 {
		opts.Boat = def.Boat
	}
	if opts.IFrames <= 0 {
		opts.IFrames = def.IFrames
	}
	if opts.HazardInterval <= 0 {
		opts.HazardInterval = def.HazardInterval
	}
	if opts.Ocean != nil {
		spec := opts.Regions[entity.RegionOcean]
		spec.Extent = opts.Ocean.Extent()
		opts.Regions[entity.RegionOcean] = spec
	}

	s := &Simulation{
		opts:    opts,
		reg:     entity.NewRegistry(),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		region:  entity.RegionTown,
		netID:   -1,
		hazards: combat.Timer{Duration: opts.HazardInterval, Remaining: opts.HazardInterval},
		logger:  logging.GetSimLogger(),
	}
	if opts.Role == RoleServer {
		s.EnterRegion(entity.RegionOcean)
	}
	return s
}

// Registry реестр сущностей
func (s *Simulation) Registry() *entity.Registry { return s.reg }

// Region текущая область
func (s *Simulation) Region() entity.Region { return s.region }

// Role роль симуляции
func (s *Simulation) Role() Role { return s.opts.Role }

// Ticks количество выполненных тиков
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Spec описание текущей области
func (s *Simulation) Spec() RegionSpec {
	return s.opts.Regions[s.region]
}

// Bounds границы текущей области
func (s *Simulation) Bounds() physics.Bounds {
	return s.Spec().Bounds()
}

// Wind ветер в точке; вне океана штиль
func (s *Simulation) Wind(pos vec.Vec2) vec.Vec2 {
	if s.region != entity.RegionOcean || s.opts.Ocean == nil {
		return vec.Vec2{}
	}
	return s.opts.Ocean.WindAt(pos)
}

// Player локальный игрок
func (s *Simulation) Player() (*entity.Entity, bool) {
	if s.player == 0 {
		return nil, false
	}
	return s.reg.Get(s.player)
}

// SetNetID запоминает выданный сервером id локального игрока
func (s *Simulation) SetNetID(id int) {
	s.netID = id
	if p, ok := s.Player(); ok && p.Boat != nil {
		p.Boat.NetID = id
	}
}

// NetID сетевой id локального игрока
func (s *Simulation) NetID() int { return s.netID }

// SpawnLocalPlayer создаёт управляемого игрока в точке появления текущей области
func (s *Simulation) SpawnLocalPlayer() *entity.Entity {
	if p, ok := s.Player(); ok {
		return p
	}
	spec := s.Spec()
	p := agent.SpawnPlayer(s.reg, spec.Spawn)
	p.Hurtbox.IFrames = s.opts.IFrames
	s.player = p.ID
	if spec.Naval {
		agent.Embark(s.reg, p, s.netID)
	}
	return p
}

// Events забирает накопленные события
func (s *Simulation) Events() []Event {
	out := s.events
	s.events = nil
	return out
}

// HitReports забирает урон, нанесённый зеркалам врагов
func (s *Simulation) HitReports() []HitReport {
	out := s.reports
	s.reports = nil
	return out
}

func (s *Simulation) emit(ev Event) {
	s.events = append(s.events, ev)
}

// EnterRegion переводит игрока в другую область: враги и снаряды прежней
// области удаляются, население новой создаётся заново
func (s *Simulation) EnterRegion(region entity.Region) {
	spec, ok := s.opts.Regions[region]
	if !ok {
		s.logger.Warn("неизвестная область %s", region)
		return
	}
	leavingOcean := s.region == entity.RegionOcean && region != entity.RegionOcean

	for _, e := range s.reg.Filter(func(e *entity.Entity) bool {
		switch e.Kind {
		case entity.KindEnemy, entity.KindHazard, entity.KindProjectile, entity.KindSwing:
			return true
		}
		return leavingOcean && e.Remote
	}) {
		s.reg.Despawn(e.ID)
	}
	s.region = region
	s.queue.Drain()
	s.hazards.Reset()

	if p, ok := s.Player(); ok {
		p.SetPosition2(spec.Spawn)
		p.Velocity = vec.Vec2{}
		switch {
		case spec.Naval && p.Boat == nil:
			agent.Embark(s.reg, p, s.netID)
		case !spec.Naval && p.Boat != nil:
			agent.Disembark(s.reg, p)
		}
		agent.SyncWeapon(s.reg, p)
	}

	if s.simulatesEnemies() {
		s.populate(spec)
	}
	s.logger.Debug("вход в область %s, сущностей: %d", region, s.reg.Count())
}

// simulatesEnemies ведёт ли симуляция ИИ текущей области
func (s *Simulation) simulatesEnemies() bool {
	return !(s.opts.Role == RoleClient && s.region == entity.RegionOcean)
}

func (s *Simulation) populate(spec RegionSpec) {
	for _, class := range spec.Classes() {
		for i := 0; i < spec.Population[class]; i++ {
			pos, ok := s.placement(class)
			if !ok {
				continue
			}
			s.spawnEnemy(class, pos)
		}
	}
}

func (s *Simulation) spawnEnemy(class entity.EnemyClass, pos vec.Vec2) *entity.Entity {
	e, err := agent.SpawnEnemy(s.reg, class, pos)
	if err != nil {
		s.logger.Warn("не удалось создать врага: %v", err)
		return nil
	}
	e.Enemy.NetID = e.ID
	if e.Hurtbox != nil {
		e.Hurtbox.IFrames = s.opts.IFrames
	}
	return e
}

// placement подбирает свободную позицию: рифовые клетки для скал,
// случайные точки в стороне от точки появления для остальных
func (s *Simulation) placement(class entity.EnemyClass) (vec.Vec2, bool) {
	stats, _ := agent.Enemy(class)
	spec := s.Spec()
	limit := spec.Bounds().Limit(stats.Footprint().Mul(0.5))

	var reefs []ocean.Tile
	if class == entity.ClassRock && s.opts.Ocean != nil {
		reefs = s.opts.Ocean.OfKind(ocean.TileReef)
	}

	for attempt := 0; attempt < 16; attempt++ {
		var pos vec.Vec2
		if len(reefs) > 0 {
			pos = s.opts.Ocean.Center(reefs[s.rng.Intn(len(reefs))])
			pos = spec.Bounds().Clamp(pos, stats.Footprint().Mul(0.5))
		} else {
			pos = vec.Vec2{
				X: (s.rng.Float64()*2 - 1) * limit.X,
				Y: (s.rng.Float64()*2 - 1) * limit.Y,
			}
		}
		if pos.DistanceTo(spec.Spawn) < 300 {
			continue
		}
		if s.occupied(pos, stats.Footprint()) {
			continue
		}
		return pos, true
	}
	return vec.Vec2{}, false
}

func (s *Simulation) occupied(pos, size vec.Vec2) bool {
	box := physics.FromSize(pos, size)
	busy := false
	s.reg.Each(func(e *entity.Entity) {
		if !busy && e.Footprint.LengthSquared() > 0 && e.Bounds.Overlaps(box) {
			busy = true
		}
	})
	return busy
}

// Tick продвигает мир на dt секунд. Удалённое состояние применяется
// вызывающим кодом до Tick.
func (s *Simulation) Tick(in Input, dt float64) {
	start := time.Now()
	if in == nil {
		in = idle{}
	}

	s.tickTimers(dt)
	s.tickPlayer(in, dt)
	s.tickEnemies(dt)
	s.tickMotion(dt)
	s.syncTransforms()
	s.resolveCollisions()
	s.applyDamage()
	s.expire(dt)
	s.spawnHazards(dt)

	s.ticks++
	s.opts.Metrics.observeTick(start, s.reg.Count())
}

func (s *Simulation) tickTimers(dt float64) {
	s.reg.Each(func(e *entity.Entity) {
		if e.Cooldown != nil {
			e.Cooldown.Tick(dt)
		}
		if e.Hurtbox != nil {
			e.Hurtbox.Invuln.Tick(dt)
		}
		if e.Player != nil && e.Player.Dead && e.Player.Respawn.Tick(dt) {
			s.respawn(e)
		}
	})
}

func (s *Simulation) tickPlayer(in Input, dt float64) {
	p, ok := s.Player()
	if !ok || p.Player.Dead {
		return
	}

	for _, wc := range weaponControls {
		if in.JustPressed(wc.control) {
			agent.EquipWeapon(s.reg, p, wc.class)
		}
	}

	bounds := s.Bounds()
	if p.Boat != nil {
		turn := axis(in.Pressed(ControlLeft)) - axis(in.Pressed(ControlRight))
		boat := movement.BoatInput{Forward: in.Pressed(ControlUp), Turn: turn}
		movement.MoveBoat(p, boat, s.Wind(p.Position2()), s.opts.Boat, bounds, dt)
	} else {
		walk := movement.Input{
			Up:    axis(in.Pressed(ControlUp)),
			Down:  axis(in.Pressed(ControlDown)),
			Left:  axis(in.Pressed(ControlLeft)),
			Right: axis(in.Pressed(ControlRight)),
		}
		movement.MovePlayer(p, walk, s.opts.Walk, bounds, dt)
		movement.FaceTowards(p, in.Cursor())
	}

	agent.PlayerAttack(s.reg, p, in.Cursor(), in.Pressed(ControlAttack))
}

// axis величина оси для цифровой клавиши
func axis(pressed bool) float64 {
	if pressed {
		return 1
	}
	return 0
}

var weaponControls = []struct {
	control Control
	class   entity.WeaponClass
}{
	{ControlSword, entity.WeaponSword},
	{ControlDagger, entity.WeaponDagger},
	{ControlBow, entity.WeaponBow},
	{ControlCannon, entity.WeaponCannon},
}

func (s *Simulation) tickEnemies(dt float64) {
	bounds := s.Bounds()
	for _, e := range s.reg.OfKind(entity.KindEnemy) {
		if e.Enemy == nil {
			continue
		}
		target, ok := s.nearestTarget(e.Position2())
		if !ok {
			e.Velocity = vec.Vec2{}
			continue
		}
		if !e.Enemy.Mirrored {
			stats, _ := agent.Enemy(e.Enemy.Class)
			movement.SteerTowards(e, target, stats.RotationSpeed, dt)
			movement.Chase(e, target, movement.ChaseBand{
				AgroRange:  stats.AgroRange,
				StopRadius: stats.StopRadius,
				Speed:      stats.Speed,
			}, bounds, dt)
		}
		agent.EnemyAttack(s.reg, e, target)
	}
}

// nearestTarget ближайший живой игрок. На сервере целями служат зеркала кораблей.
func (s *Simulation) nearestTarget(from vec.Vec2) (vec.Vec2, bool) {
	var best vec.Vec2
	bestDist := -1.0
	consider := func(e *entity.Entity) {
		if e.Player != nil && e.Player.Dead {
			return
		}
		d := from.DistanceTo(e.Position2())
		if bestDist < 0 || d < bestDist {
			best, bestDist = e.Position2(), d
		}
	}
	if p, ok := s.Player(); ok {
		consider(p)
	}
	if s.opts.Role == RoleServer {
		for _, e := range s.reg.Filter(func(e *entity.Entity) bool { return e.Remote }) {
			consider(e)
		}
	}
	return best, bestDist >= 0
}

func (s *Simulation) tickMotion(dt float64) {
	bounds := s.Bounds()
	s.reg.Each(func(e *entity.Entity) {
		switch e.Kind {
		case entity.KindHazard:
			if e.Enemy == nil || e.Enemy.Mirrored {
				return
			}
			stats, _ := agent.Enemy(e.Enemy.Class)
			if stats.Speed > 0 {
				e.Velocity = s.Wind(e.Position2()).Mul(stats.Speed)
				movement.Translate(e, e.Velocity.Mul(dt), bounds)
			}
		case entity.KindProjectile:
			movement.Advance(e, dt)
			if bounds.Clamp(e.Position2(), vec.Vec2{}) != e.Position2() {
				s.reg.Despawn(e.ID)
			}
		}
	})
}

func (s *Simulation) syncTransforms() {
	s.reg.Each(func(e *entity.Entity) {
		e.SyncBounds()
		if e.Player != nil {
			agent.SyncWeapon(s.reg, e)
		}
	})
}

func (s *Simulation) resolveCollisions() {
	var hurts []combat.HurtboxRef
	var hits []combat.HitboxRef
	s.reg.Each(func(e *entity.Entity) {
		if e.Hurtbox != nil && !(e.Player != nil && e.Player.Dead) {
			hurts = append(hurts, combat.HurtboxRef{Entity: e.ID, Position: e.Position2(), Hurtbox: e.Hurtbox})
		}
		if e.Hitbox != nil {
			hits = append(hits, combat.HitboxRef{Entity: e.ID, Position: e.Position2(), Hitbox: e.Hitbox})
		}
	})

	res := combat.Resolve(hurts, hits)
	for _, ev := range res.Events {
		s.queue.Push(ev)
	}
	for _, id := range res.Despawn {
		s.reg.Despawn(id)
	}
}

// expire снимает истёкшие хитбоксы (только компонент) и удаляет сущности с истёкшим временем жизни
func (s *Simulation) expire(dt float64) {
	s.reg.Each(func(e *entity.Entity) {
		if e.Hitbox != nil && e.Hitbox.TickLifetime(dt) {
			e.Hitbox = nil
		}
	})
	s.reg.Each(func(e *entity.Entity) {
		if e.Lifetime == nil || !e.Lifetime.Tick(dt) {
			return
		}
		if e.Kind == entity.KindHazard && e.Enemy != nil {
			s.emit(Event{
				Kind:     EventHazardExpired,
				Entity:   e.ID,
				NetID:    e.Enemy.NetID,
				Class:    e.Enemy.Class.String(),
				Killer:   -1,
				Position: e.Position2(),
			})
		}
		s.reg.Despawn(e.ID)
	})
}

var hazardClasses = []entity.EnemyClass{entity.ClassWhirlpool, entity.ClassStorm}

func (s *Simulation) spawnHazards(dt float64) {
	if s.region != entity.RegionOcean || !s.simulatesEnemies() || s.opts.MaxHazards <= 0 {
		return
	}
	if !s.hazards.Tick(dt) {
		return
	}
	s.hazards.Reset()

	if len(s.reg.OfKind(entity.KindHazard)) >= s.opts.MaxHazards {
		return
	}
	class := hazardClasses[s.rng.Intn(len(hazardClasses))]
	pos, ok := s.placement(class)
	if !ok {
		return
	}
	if e := s.spawnEnemy(class, pos); e != nil {
		s.emit(Event{Kind: EventHazardSpawned, Entity: e.ID, NetID: e.Enemy.NetID, Class: class.String(), Killer: -1, Position: pos})
	}
}
