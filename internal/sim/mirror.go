package sim

import (
	"github.com/annel0/seafarer/internal/agent"
	"github.com/annel0/seafarer/internal/combat"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

// PlayerState реплицируемое состояние игрока
type PlayerState struct {
	NetID    int
	Position vec.Vec3
	Rotation vec.Quat
	Boat     bool // Игрок на корабле
	Used     bool // Игрок присутствует в общем океане
	Seq      uint64
	Session  int64 // Запись из более новой сессии принимается при любом Seq
}

// EnemyState реплицируемое состояние океанского врага или стихии
type EnemyState struct {
	NetID    uint64
	Class    entity.EnemyClass
	Position vec.Vec2
	Rotation vec.Quat
	HP       float64
}

// LocalState состояние локального игрока для player_update
func (s *Simulation) LocalState(seq uint64) (PlayerState, bool) {
	p, ok := s.Player()
	if !ok {
		return PlayerState{}, false
	}
	return PlayerState{
		NetID:    s.netID,
		Position: p.Transform.Position,
		Rotation: p.Transform.Rotation,
		Boat:     p.Boat != nil,
		Used:     s.region == entity.RegionOcean && !p.Player.Dead,
		Seq:      seq,
	}, true
}

func (s *Simulation) remotePlayer(netID int) (*entity.Entity, bool) {
	for _, e := range s.reg.Filter(func(e *entity.Entity) bool { return e.Remote }) {
		if e.Boat != nil && e.Boat.NetID == netID {
			return e, true
		}
	}
	return nil, false
}

// RemotePlayers зеркала чужих игроков
func (s *Simulation) RemotePlayers() []*entity.Entity {
	return s.reg.Filter(func(e *entity.Entity) bool { return e.Remote })
}

// ApplyPlayer перезаписывает зеркало чужого игрока. Собственные записи,
// записи прошлых сессий и записи со старым порядковым номером пропускаются.
func (s *Simulation) ApplyPlayer(st PlayerState) bool {
	if st.NetID == s.netID && s.opts.Role != RoleServer {
		return false
	}
	if s.region != entity.RegionOcean {
		return false
	}

	e, exists := s.remotePlayer(st.NetID)
	if !st.Used {
		if exists {
			s.reg.Despawn(e.ID)
		}
		return exists
	}
	if exists && stale(st, e.Boat) {
		return false
	}
	if !exists {
		e = agent.SpawnRemoteBoat(s.reg, st.NetID, st.Position.Truncate())
	}

	size := vec.Vec2{X: agent.BoatSize, Y: agent.BoatSize}
	e.Kind = entity.KindBoat
	if !st.Boat {
		size = vec.Vec2{X: agent.PlayerSize, Y: agent.PlayerSize}
		e.Kind = entity.KindPlayer
	}
	e.Footprint = size
	if e.Hurtbox != nil {
		e.Hurtbox.Size = size
	}
	e.Transform.Position = st.Position
	e.Transform.Rotation = st.Rotation
	e.SyncBounds()
	e.Boat.Seq = st.Seq
	e.Boat.Session = st.Session
	return true
}

func stale(st PlayerState, b *entity.Boat) bool {
	if st.Session != b.Session {
		return st.Session < b.Session
	}
	return st.Seq <= b.Seq
}

// RemovePlayer удаляет зеркало вышедшего игрока
func (s *Simulation) RemovePlayer(netID int) bool {
	e, ok := s.remotePlayer(netID)
	if !ok {
		return false
	}
	return s.reg.Despawn(e.ID)
}

// EnemyStates состояние всех локально симулируемых врагов и стихий
func (s *Simulation) EnemyStates() []EnemyState {
	var out []EnemyState
	s.reg.Each(func(e *entity.Entity) {
		if e.Enemy == nil || e.Enemy.Mirrored {
			return
		}
		st := EnemyState{
			NetID:    e.Enemy.NetID,
			Class:    e.Enemy.Class,
			Position: e.Position2(),
			Rotation: e.Transform.Rotation,
		}
		if e.Health != nil {
			st.HP = e.Health.Current
		}
		out = append(out, st)
	})
	return out
}

// ApplyEnemies полностью перезаписывает зеркала океанских врагов.
// Пачка со старым порядковым номером отбрасывается.
func (s *Simulation) ApplyEnemies(seq uint64, states []EnemyState) bool {
	if s.opts.Role != RoleClient || s.region != entity.RegionOcean {
		return false
	}
	if seq <= s.enemySeq {
		return false
	}
	s.enemySeq = seq

	mirrors := make(map[uint64]*entity.Entity)
	for _, e := range s.mirrors() {
		if _, dup := mirrors[e.Enemy.NetID]; dup {
			s.reg.Despawn(e.ID)
			continue
		}
		mirrors[e.Enemy.NetID] = e
	}

	seen := make(map[uint64]bool, len(states))
	for _, st := range states {
		seen[st.NetID] = true
		e, ok := mirrors[st.NetID]
		if ok && e.Enemy.Class != st.Class {
			s.reg.Despawn(e.ID)
			ok = false
		}
		if !ok {
			e = s.spawnMirror(st)
			if e == nil {
				continue
			}
		}
		e.SetPosition2(st.Position)
		e.Transform.Rotation = st.Rotation
		if e.Health != nil {
			e.Health.Current = st.HP
		}
		e.Enemy.Seq = seq
	}

	for netID, e := range mirrors {
		if !seen[netID] {
			s.reg.Despawn(e.ID)
		}
	}
	return true
}

// SpawnMirror создаёт зеркало одного врага (spawn_enemy)
func (s *Simulation) SpawnMirror(st EnemyState) bool {
	if s.opts.Role != RoleClient || s.region != entity.RegionOcean {
		return false
	}
	for _, e := range s.mirrors() {
		if e.Enemy.NetID == st.NetID {
			return false
		}
	}
	return s.spawnMirror(st) != nil
}

// mirrors зеркала врагов и стихий в порядке id
func (s *Simulation) mirrors() []*entity.Entity {
	return s.reg.Filter(func(e *entity.Entity) bool { return e.Enemy != nil && e.Enemy.Mirrored })
}

func (s *Simulation) spawnMirror(st EnemyState) *entity.Entity {
	e := s.spawnEnemy(st.Class, st.Position)
	if e == nil {
		return nil
	}
	e.Enemy.Mirrored = true
	e.Enemy.NetID = st.NetID
	e.Lifetime = nil
	e.Transform.Rotation = st.Rotation
	if e.Health != nil && st.HP > 0 {
		e.Health.Current = st.HP
	}
	return e
}

// RemoveMirror удаляет зеркало врага (despawn_enemy). Если врага убил
// локальный игрок, ему начисляется золото.
func (s *Simulation) RemoveMirror(netID uint64, killer int) bool {
	removed := false
	for _, e := range s.mirrors() {
		if e.Enemy.NetID != netID {
			continue
		}
		if !removed && killer >= 0 && killer == s.netID {
			if p, ok := s.Player(); ok {
				stats, _ := agent.Enemy(e.Enemy.Class)
				s.awardGold(p, stats.Gold)
			}
		}
		if s.reg.Despawn(e.ID) {
			removed = true
		}
	}
	return removed
}

// ApplyHitReport ставит в очередь урон, о котором сообщил клиент.
// Попадание считается доверенным, проверяется только существование цели.
func (s *Simulation) ApplyHitReport(netID uint64, damage float64, attacker int) bool {
	target, ok := s.reg.Get(netID)
	if !ok || target.Enemy == nil || target.Enemy.Mirrored || target.Health == nil || damage <= 0 {
		return false
	}
	ev := combat.HitEvent{Target: target.ID, Damage: damage, Class: "remote"}
	if a, ok := s.remotePlayer(attacker); ok {
		ev.Attacker = a.ID
	}
	s.queue.Push(ev)
	return true
}
