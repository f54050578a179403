package physics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/seafarer/internal/vec"
)

func box(x, y, hw, hh float64) AABB {
	return NewAABB(vec.Vec2{X: x, Y: y}, vec.Vec2{X: hw, Y: hh})
}

func TestOverlaps_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := box(rng.Float64()*100, rng.Float64()*100, rng.Float64()*20, rng.Float64()*20)
		b := box(rng.Float64()*100, rng.Float64()*100, rng.Float64()*20, rng.Float64()*20)
		assert.Equal(t, Overlaps(a, b), Overlaps(b, a))
	}
}

func TestOverlaps_Cases(t *testing.T) {
	tests := []struct {
		name string
		a, b AABB
		want bool
	}{
		{"разрыв по X", box(0, 0, 5, 5), box(11, 0, 5, 5), false},
		{"разрыв по Y", box(0, 0, 5, 5), box(0, 12, 5, 5), false},
		{"касание рёбрами", box(0, 0, 5, 5), box(10, 0, 5, 5), false},
		{"вложенные", box(0, 0, 10, 10), box(1, 1, 2, 2), true},
		{"частичное", box(0, 0, 5, 5), box(8, 8, 5, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
		})
	}
}

func TestTranslate_PreservesHalfExtent(t *testing.T) {
	b := box(0, 0, 3, 4).Translate(vec.Vec2{X: 10, Y: -2})

	assert.Equal(t, vec.Vec2{X: 3, Y: 4}, b.Half)
	assert.Equal(t, vec.Vec2{X: 7, Y: -6}, b.Min)
	assert.Equal(t, vec.Vec2{X: 13, Y: 2}, b.Max)
}

func TestBounds_ClampPerAxis(t *testing.T) {
	b := Bounds{Extent: vec.Vec2{X: 100, Y: 60}}
	half := vec.Vec2{X: 5, Y: 5}

	got := b.Clamp(vec.Vec2{X: 70, Y: 10}, half)
	assert.Equal(t, vec.Vec2{X: 45, Y: 10}, got)

	got = b.Clamp(vec.Vec2{X: -70, Y: -70}, half)
	assert.Equal(t, vec.Vec2{X: -45, Y: -25}, got)

	x, y := b.ClampedAxes(vec.Vec2{X: 0, Y: 40}, half)
	assert.False(t, x)
	assert.True(t, y)
}
