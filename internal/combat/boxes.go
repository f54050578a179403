package combat

import (
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// DefaultIFrames длительность неуязвимости после попадания
const DefaultIFrames = 0.75

// Hitbox наносящий урон объём
type Hitbox struct {
	Size       vec.Vec2
	Offset     vec.Vec2 // Смещение от позиции владельца
	Lifetime   *Timer   // nil: постоянный хитбокс (тело босса, скалы)
	Class      string   // Класс владельца (sword, kraken, ...)
	Projectile bool
	Enemy      bool
	Damage     float64
	Attacker   uint64  // Сущность, совершившая атаку (для начисления убийств)
	IFrames    float64 // Окно неуязвимости цели после попадания; 0 — значение хёртбокса
}

// Box возвращает AABB хитбокса для позиции владельца
func (h *Hitbox) Box(ownerPos vec.Vec2) physics.AABB {
	return physics.FromSize(ownerPos.Add(h.Offset), h.Size)
}

// TickLifetime продвигает время жизни; true — хитбокс истёк и должен быть снят
func (h *Hitbox) TickLifetime(dt float64) bool {
	if h.Lifetime == nil {
		return false
	}
	return h.Lifetime.Tick(dt)
}

// Hurtbox принимающий урон объём
type Hurtbox struct {
	Size    vec.Vec2
	Offset  vec.Vec2
	Class   string
	Enemy   bool
	IFrames float64 // Длительность окна неуязвимости
	Invuln  Timer
}

// NewHurtbox создаёт хёртбокс с окном неуязвимости по умолчанию
func NewHurtbox(size vec.Vec2, class string, enemy bool) *Hurtbox {
	return &Hurtbox{Size: size, Class: class, Enemy: enemy, IFrames: DefaultIFrames}
}

// Box возвращает AABB хёртбокса для позиции владельца
func (h *Hurtbox) Box(ownerPos vec.Vec2) physics.AABB {
	return physics.FromSize(ownerPos.Add(h.Offset), h.Size)
}

// Invulnerable активно ли окно неуязвимости
func (h *Hurtbox) Invulnerable() bool {
	return !h.Invuln.Finished()
}

// Grant открывает окно неуязвимости
func (h *Hurtbox) Grant(duration float64) {
	if duration > h.Invuln.Remaining {
		h.Invuln.ResetTo(duration)
	}
}
