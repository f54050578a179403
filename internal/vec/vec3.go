package vec

import "math"

// Vec3 представляет трехмерный вектор. Z используется только для порядка отрисовки.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Truncate отбрасывает координату Z
func (v Vec3) Truncate() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// WithXY возвращает вектор с новыми X/Y и прежней Z
func (v Vec3) WithXY(xy Vec2) Vec3 {
	return Vec3{X: xy.X, Y: xy.Y, Z: v.Z}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// DistanceTo возвращает расстояние до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// One3 единичный масштаб
var One3 = Vec3{X: 1, Y: 1, Z: 1}
