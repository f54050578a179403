package sim

import (
	"math"

	"github.com/annel0/seafarer/internal/agent"
	"github.com/annel0/seafarer/internal/combat"
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/vec"
)

// applyDamage полностью разбирает очередь попаданий текущего тика.
// Урон берётся из события одинаково для всех классов.
func (s *Simulation) applyDamage() {
	for _, ev := range s.queue.Drain() {
		target, ok := s.reg.Get(ev.Target)
		if !ok || target.Health == nil {
			continue
		}
		// Здоровьем чужих игроков распоряжается их владелец
		if target.Remote {
			continue
		}
		s.opts.Metrics.hit(ev.Class)
		target.Health.Current = math.Max(0, target.Health.Current-ev.Damage)

		switch {
		case target.Player != nil:
			if !target.Health.Alive() && !target.Player.Dead {
				s.killPlayer(target)
			}
		case target.Enemy != nil:
			if target.Enemy.Mirrored {
				s.reports = append(s.reports, HitReport{NetID: target.Enemy.NetID, Damage: ev.Damage})
				continue
			}
			if !target.Health.Alive() {
				s.killEnemy(target, ev.Attacker)
			}
		}
	}
}

func (s *Simulation) killEnemy(e *entity.Entity, attacker uint64) {
	stats, _ := agent.Enemy(e.Enemy.Class)
	killer := -1
	if a, ok := s.reg.Get(attacker); ok {
		if a.Boat != nil {
			killer = a.Boat.NetID
		}
		if a.Player != nil && !a.Remote {
			killer = s.netID
			s.awardGold(a, stats.Gold)
		}
	}

	s.opts.Metrics.kill(e.Enemy.Class.String())
	s.emit(Event{
		Kind:     EventEnemyKilled,
		Entity:   e.ID,
		NetID:    e.Enemy.NetID,
		Class:    e.Enemy.Class.String(),
		Killer:   killer,
		Gold:     stats.Gold,
		Position: e.Position2(),
	})
	s.reg.Despawn(e.ID)
}

func (s *Simulation) awardGold(p *entity.Entity, gold int) {
	if p.Player == nil || gold <= 0 {
		return
	}
	p.Player.Gold += gold
	s.emit(Event{Kind: EventGoldAwarded, Entity: p.ID, Gold: gold, Killer: s.netID, Position: p.Position2()})
}

func (s *Simulation) killPlayer(p *entity.Entity) {
	p.Player.Dead = true
	p.Player.Respawn = combat.Timer{Duration: agent.PlayerRespawnDelay, Remaining: agent.PlayerRespawnDelay}
	p.Velocity = vec.Vec2{}
	if p.Boat != nil {
		p.Boat.Acceleration = 0
	}
	s.emit(Event{Kind: EventPlayerDied, Entity: p.ID, Killer: -1, Position: p.Position2()})
}

func (s *Simulation) respawn(p *entity.Entity) {
	p.Player.Dead = false
	p.Health.Current = p.Health.Max
	p.SetPosition2(s.Spec().Spawn)
	if p.Hurtbox != nil {
		p.Hurtbox.Grant(agent.PlayerRespawnIFrame)
	}
	s.emit(Event{Kind: EventPlayerRespawned, Entity: p.ID, Killer: -1, Position: p.Position2()})
}
