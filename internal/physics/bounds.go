package physics

import "github.com/annel0/seafarer/internal/vec"

// Bounds описывает прямоугольную арену с центром в начале координат
type Bounds struct {
	Extent vec.Vec2 // Полный размер уровня
}

// Limit возвращает допустимое отклонение центра сущности по каждой оси
func (b Bounds) Limit(halfSize vec.Vec2) vec.Vec2 {
	lx := b.Extent.X/2 - halfSize.X
	ly := b.Extent.Y/2 - halfSize.Y
	if lx < 0 {
		lx = 0
	}
	if ly < 0 {
		ly = 0
	}
	return vec.Vec2{X: lx, Y: ly}
}

// Clamp ограничивает позицию по каждой оси независимо,
// что позволяет скользить вдоль стены, пока движение по другой оси допустимо
func (b Bounds) Clamp(pos, halfSize vec.Vec2) vec.Vec2 {
	limit := b.Limit(halfSize)
	return vec.Vec2{
		X: clampAxis(pos.X, limit.X),
		Y: clampAxis(pos.Y, limit.Y),
	}
}

// ClampedAxes сообщает, по каким осям сработало ограничение
func (b Bounds) ClampedAxes(pos, halfSize vec.Vec2) (x, y bool) {
	c := b.Clamp(pos, halfSize)
	return c.X != pos.X, c.Y != pos.Y
}

func clampAxis(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
