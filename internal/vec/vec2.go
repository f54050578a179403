package vec

import "math"

// Vec2 представляет 2D вектор с плавающей точкой (мировые координаты, скорость)
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero2 нулевой вектор
var Zero2 = Vec2{}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2) Mul(scalar float64) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot скалярное произведение
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Length возвращает длину вектора
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared возвращает квадрат длины
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// IsZero проверяет, является ли вектор нулевым
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalized возвращает нормализованный вектор.
// Для нулевого вектора возвращается нулевой вектор.
func (v Vec2) Normalized() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{X: 0, Y: 0}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rotated поворачивает вектор на angle радиан против часовой стрелки
func (v Vec2) Rotated(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Right возвращает вектор, повёрнутый на 90° по часовой стрелке
func (v Vec2) Right() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

// CosineSimilarity возвращает косинус угла между векторами (0 для нулевых векторов)
func (v Vec2) CosineSimilarity(other Vec2) float64 {
	l := v.Length() * other.Length()
	if l == 0 {
		return 0
	}
	return clamp(v.Dot(other)/l, -1, 1)
}

// AngleTo возвращает знаковый угол поворота от v к other.
// Знак берётся из скалярного произведения other с правым вектором v:
// положительный угол — поворот против часовой стрелки.
func (v Vec2) AngleTo(other Vec2) float64 {
	a := v.Normalized()
	b := other.Normalized()
	if a.IsZero() || b.IsZero() {
		return 0
	}
	angle := math.Acos(clamp(a.Dot(b), -1, 1))
	if a.Right().Dot(b) > 0 {
		return -angle
	}
	return angle
}

// Extend добавляет Z координату
func (v Vec2) Extend(z float64) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: z}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
