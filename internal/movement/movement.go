package movement

import (
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// Params параметры разгона
type Params struct {
	Acceleration float64 // Единиц в секунду за секунду; то же значение используется для торможения
	MaxSpeed     float64
}

// Input величина ввода по каждому направлению (0..1)
type Input struct {
	Up, Down, Left, Right float64
}

// Direction желаемое направление движения (ось Y направлена вверх)
func (in Input) Direction() vec.Vec2 {
	return vec.Vec2{X: in.Right - in.Left, Y: in.Up - in.Down}
}

// Integrate разгоняет скорость в направлении desired и ограничивает её MaxSpeed.
// Без ввода скорость гасится с тем же ускорением и обнуляется точно,
// как только становится не больше торможения за тик.
func Integrate(vel, desired vec.Vec2, p Params, dt float64) vec.Vec2 {
	step := p.Acceleration * dt
	if desired.IsZero() {
		return Decay(vel, step)
	}

	vel = vel.Add(desired.Normalized().Mul(step))
	if vel.Length() > p.MaxSpeed {
		vel = vel.Normalized().Mul(p.MaxSpeed)
	}
	return vel
}

// Decay уменьшает модуль скорости на step без перескока через ноль
func Decay(vel vec.Vec2, step float64) vec.Vec2 {
	if vel.Length() <= step {
		return vec.Vec2{}
	}
	return vel.Sub(vel.Normalized().Mul(step))
}

// MovePlayer интегрирует скорость пешего игрока и перемещает его в пределах уровня
func MovePlayer(e *entity.Entity, in Input, p Params, bounds physics.Bounds, dt float64) {
	e.Velocity = Integrate(e.Velocity, in.Direction(), p, dt)
	Translate(e, e.Velocity.Mul(dt), bounds)
}

// Translate сдвигает сущность с поосевым ограничением по границам уровня.
// Скорость по упёршейся оси обнуляется, по свободной — сохраняется (скольжение вдоль стены).
func Translate(e *entity.Entity, delta vec.Vec2, bounds physics.Bounds) {
	target := e.Position2().Add(delta)
	clamped := bounds.Clamp(target, e.HalfFootprint())
	if clamped.X != target.X {
		e.Velocity.X = 0
	}
	if clamped.Y != target.Y {
		e.Velocity.Y = 0
	}
	e.SetPosition2(clamped)
}

// Advance перемещает снаряд по его скорости без ограничений
func Advance(e *entity.Entity, dt float64) {
	e.SetPosition2(e.Position2().Add(e.Velocity.Mul(dt)))
}
