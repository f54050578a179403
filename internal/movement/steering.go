package movement

import (
	"math"

	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// SteerTowards поворачивает сущность к цели не более чем на rotationSpeed*dt радиан
func SteerTowards(e *entity.Entity, target vec.Vec2, rotationSpeed, dt float64) {
	desired := target.Sub(e.Position2())
	if desired.IsZero() {
		return
	}

	delta := e.Forward().AngleTo(desired)
	maxStep := rotationSpeed * dt
	if math.Abs(delta) > maxStep {
		delta = math.Copysign(maxStep, delta)
	}
	e.SetAngle(e.Angle() + delta)
}

// FaceTowards мгновенно разворачивает сущность к цели
func FaceTowards(e *entity.Entity, target vec.Vec2) {
	desired := target.Sub(e.Position2())
	if desired.IsZero() {
		return
	}
	e.SetAngle(e.Angle() + e.Forward().AngleTo(desired))
}

// ChaseBand полоса преследования: дальше AgroRange враг спит,
// ближе StopRadius стоит на месте и стреляет
type ChaseBand struct {
	AgroRange  float64
	StopRadius float64
	Speed      float64
}

// Active находится ли дистанция внутри полосы (StopRadius, AgroRange)
func (b ChaseBand) Active(distance float64) bool {
	return distance < b.AgroRange && distance > b.StopRadius
}

// Chase двигает сущность прямо к цели, пока дистанция внутри полосы.
// Возвращает true, если сущность сдвинулась.
func Chase(e *entity.Entity, target vec.Vec2, band ChaseBand, bounds physics.Bounds, dt float64) bool {
	pos := e.Position2()
	distance := pos.DistanceTo(target)
	if !band.Active(distance) || band.Speed <= 0 {
		e.Velocity = vec.Vec2{}
		return false
	}

	dir := target.Sub(pos).Normalized()
	step := math.Min(band.Speed*dt, distance-band.StopRadius)
	e.Velocity = dir.Mul(band.Speed)
	Translate(e, dir.Mul(step), bounds)
	return true
}
