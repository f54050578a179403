package combat

import "github.com/annel0/seafarer/internal/vec"

// HitboxRef хитбокс сущности вместе с её позицией
type HitboxRef struct {
	Entity   uint64
	Position vec.Vec2
	Hitbox   *Hitbox
}

// HurtboxRef хёртбокс сущности вместе с её позицией
type HurtboxRef struct {
	Entity   uint64
	Position vec.Vec2
	Hurtbox  *Hurtbox
}

// Resolution результат прохода столкновений
type Resolution struct {
	Events  []HitEvent
	Despawn []uint64 // Снаряды, попавшие в цель
}

// Resolve сканирует все пары хёртбокс×хитбокс.
//
// Для каждого хёртбокса вне окна неуязвимости ищется первый хитбокс с
// противоположным флагом Enemy, пересекающий его. Первое совпадение в порядке
// обхода побеждает. Попадание открывает окно неуязвимости, поэтому за окно
// регистрируется не больше одного удара. Снаряд исчезает сразу после попадания
// и в этом же проходе больше никого не задевает.
func Resolve(hurts []HurtboxRef, hits []HitboxRef) Resolution {
	var res Resolution
	spent := make(map[uint64]bool)

	for _, hr := range hurts {
		hurt := hr.Hurtbox
		if hurt == nil || hurt.Invulnerable() {
			continue
		}
		hurtBox := hurt.Box(hr.Position)

		for _, hb := range hits {
			hit := hb.Hitbox
			if hit == nil || hit.Enemy == hurt.Enemy || spent[hb.Entity] {
				continue
			}
			if !hurtBox.Overlaps(hit.Box(hb.Position)) {
				continue
			}

			res.Events = append(res.Events, HitEvent{
				Target:   hr.Entity,
				Source:   hb.Entity,
				Attacker: hit.Attacker,
				Damage:   hit.Damage,
				Class:    hit.Class,
			})
			iframes := hit.IFrames
			if iframes <= 0 {
				iframes = hurt.IFrames
			}
			if iframes <= 0 {
				iframes = DefaultIFrames
			}
			hurt.Invuln.ResetTo(iframes)

			if hit.Projectile {
				spent[hb.Entity] = true
				res.Despawn = append(res.Despawn, hb.Entity)
			}
			break
		}
	}

	return res
}

// TickInvulnerability продвигает таймеры неуязвимости
func TickInvulnerability(hurts []HurtboxRef, dt float64) {
	for _, hr := range hurts {
		if hr.Hurtbox != nil {
			hr.Hurtbox.Invuln.Tick(dt)
		}
	}
}
