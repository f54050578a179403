package vec

import "math"

// Quat кватернион вращения. В 2D используется только поворот вокруг оси Z.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// QuatIdentity нулевой поворот
var QuatIdentity = Quat{W: 1}

// QuatFromAngle строит кватернион поворота вокруг Z на angle радиан
func QuatFromAngle(angle float64) Quat {
	sin, cos := math.Sincos(angle / 2)
	return Quat{Z: sin, W: cos}
}

// Angle возвращает угол поворота вокруг Z в диапазоне (-π, π]
func (q Quat) Angle() float64 {
	if q == (Quat{}) {
		return 0
	}
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

// Forward возвращает направление «вперёд» (локальная ось +Y) в мировых координатах
func (q Quat) Forward() Vec2 {
	return Vec2{X: 0, Y: 1}.Rotated(q.Angle())
}

// Forward возвращает единичный вектор «вперёд» для угла angle
func Forward(angle float64) Vec2 {
	return Vec2{X: 0, Y: 1}.Rotated(angle)
}

// NormalizeAngle приводит угол к диапазону (-π, π]
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
