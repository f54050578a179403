package physics

import (
	"github.com/annel0/seafarer/internal/vec"
)

// AABB представляет прямоугольник, выровненный по осям: центр и половинные размеры.
// Min/Max пересчитываются при каждом перемещении, полуразмеры сохраняются.
type AABB struct {
	Center vec.Vec2
	Half   vec.Vec2
	Min    vec.Vec2
	Max    vec.Vec2
}

// NewAABB создаёт AABB по центру и половинным размерам
func NewAABB(center, half vec.Vec2) AABB {
	return AABB{
		Center: center,
		Half:   half,
		Min:    center.Sub(half),
		Max:    center.Add(half),
	}
}

// FromSize создаёт AABB по центру и полному размеру
func FromSize(center, size vec.Vec2) AABB {
	return NewAABB(center, size.Mul(0.5))
}

// Translate возвращает копию коробки с новым центром
func (b AABB) Translate(center vec.Vec2) AABB {
	return NewAABB(center, b.Half)
}

// Overlaps проверяет пересечение двух коробок.
// Интервалы открытые: касание рёбрами столкновением не считается.
func Overlaps(a, b AABB) bool {
	return a.Min.X < b.Max.X &&
		a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y &&
		a.Max.Y > b.Min.Y
}

// Overlaps метод-обёртка над Overlaps(b, other)
func (b AABB) Overlaps(other AABB) bool {
	return Overlaps(b, other)
}

// Contains проверяет, находится ли точка внутри коробки
func (b AABB) Contains(point vec.Vec2) bool {
	return point.X > b.Min.X && point.X < b.Max.X &&
		point.Y > b.Min.Y && point.Y < b.Max.Y
}
