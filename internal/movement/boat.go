package movement

import (
	"math"

	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// BoatParams параметры парусного движения
type BoatParams struct {
	Params
	RampRate        float64 // Скорость нарастания добавки ускорения
	MaxAcceleration float64 // Предел добавки ускорения
	WindInfluence   float64 // Вклад ветра: множитель 1 + WindInfluence*cos
}

// BoatInput ввод корабля
type BoatInput struct {
	Forward bool
	Turn    float64 // +1 влево (против часовой), -1 вправо
}

// WindFactor множитель скорости по косинусному сходству курса и ветра
func WindFactor(forward, wind vec.Vec2, influence float64) float64 {
	return 1 + influence*forward.CosineSimilarity(wind)
}

// MoveBoat поворачивает корабль, разгоняет его вдоль курса и сдвигает
// с учётом ветра. Добавка Acceleration прибавляется к смещению отдельно
// и не участвует в ограничении MaxSpeed.
func MoveBoat(e *entity.Entity, in BoatInput, wind vec.Vec2, p BoatParams, bounds physics.Bounds, dt float64) {
	boat := e.Boat
	if boat == nil {
		return
	}

	if in.Turn != 0 {
		e.SetAngle(e.Angle() + in.Turn*boat.RotationSpeed*dt)
	}
	forward := e.Forward()

	desired := vec.Vec2{}
	if in.Forward {
		desired = forward
		boat.Acceleration = math.Min(boat.Acceleration+p.RampRate*dt, p.MaxAcceleration)
	} else {
		boat.Acceleration = math.Max(boat.Acceleration-p.RampRate*dt, 0)
	}
	e.Velocity = Integrate(e.Velocity, desired, p.Params, dt)

	factor := WindFactor(forward, wind, p.WindInfluence)
	delta := e.Velocity.Mul(factor).Add(forward.Mul(boat.Acceleration)).Mul(dt)
	Translate(e, delta, bounds)
}
