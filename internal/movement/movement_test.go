package movement

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

var testParams = Params{Acceleration: 800, MaxSpeed: 300}

func newWalker() *entity.Entity {
	return entity.New(entity.KindPlayer, vec.Vec2{}, vec.Vec2{X: 32, Y: 32})
}

func TestMovePlayer_NeverLeavesBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bounds := physics.Bounds{Extent: vec.Vec2{X: 400, Y: 300}}
	e := newWalker()
	limit := bounds.Limit(e.HalfFootprint())

	for i := 0; i < 5000; i++ {
		in := Input{Up: rng.Float64(), Down: rng.Float64(), Left: rng.Float64(), Right: rng.Float64()}
		if rng.Intn(3) == 0 {
			in = Input{Right: 1}
		}
		dt := rng.Float64() * 0.5
		MovePlayer(e, in, testParams, bounds, dt)

		pos := e.Position2()
		require.LessOrEqual(t, math.Abs(pos.X), limit.X)
		require.LessOrEqual(t, math.Abs(pos.Y), limit.Y)
	}
}

func TestMovePlayer_SlidesAlongWall(t *testing.T) {
	bounds := physics.Bounds{Extent: vec.Vec2{X: 100, Y: 1000}}
	e := newWalker()
	e.SetPosition2(vec.Vec2{X: 34, Y: 0})

	MovePlayer(e, Input{Right: 1, Up: 1}, Params{Acceleration: 1000, MaxSpeed: 1000}, bounds, 0.5)

	pos := e.Position2()
	assert.Equal(t, 34.0, pos.X, "X упирается в стену")
	assert.Greater(t, pos.Y, 0.0, "движение по Y продолжается")
	assert.Equal(t, 0.0, e.Velocity.X)
}

func TestIntegrate_DecayReachesExactZero(t *testing.T) {
	vel := vec.Vec2{X: 300, Y: 0}
	const dt = 1.0 / 60

	ticks := 0
	for !vel.IsZero() {
		vel = Integrate(vel, vec.Vec2{}, testParams, dt)
		ticks++
		require.LessOrEqual(t, ticks, int(math.Ceil(300/(800*dt)))+1, "затухание без асимптоты")
	}
	assert.Equal(t, vec.Vec2{}, vel)
}

func TestIntegrate_SnapsWhenBelowStep(t *testing.T) {
	vel := Integrate(vec.Vec2{X: 3, Y: 4}, vec.Vec2{}, Params{Acceleration: 60, MaxSpeed: 10}, 0.125)
	assert.Equal(t, vec.Vec2{}, vel)
}

func TestIntegrate_ClampsMaxSpeed(t *testing.T) {
	vel := vec.Vec2{}
	for i := 0; i < 100; i++ {
		vel = Integrate(vel, vec.Vec2{X: 1, Y: 1}, testParams, 0.1)
	}
	assert.InDelta(t, testParams.MaxSpeed, vel.Length(), 1e-9)
}

func TestChase_Band(t *testing.T) {
	bounds := physics.Bounds{Extent: vec.Vec2{X: 5000, Y: 5000}}
	band := ChaseBand{AgroRange: 700, StopRadius: 150, Speed: 100}
	player := vec.Vec2{}

	tests := []struct {
		name     string
		distance float64
		moves    bool
	}{
		{"вне агро — спит", 1000, false},
		{"в полосе — идёт", 500, true},
		{"внутри stop — стоит", 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entity.New(entity.KindEnemy, vec.Vec2{X: tt.distance}, vec.Vec2{X: 10, Y: 10})
			moved := Chase(e, player, band, bounds, 0.1)
			assert.Equal(t, tt.moves, moved)
			if tt.moves {
				assert.InDelta(t, tt.distance-10, e.Position2().X, 1e-9)
			} else {
				assert.Equal(t, tt.distance, e.Position2().X)
			}
		})
	}
}

func TestChase_DoesNotCrossStopRadius(t *testing.T) {
	bounds := physics.Bounds{Extent: vec.Vec2{X: 5000, Y: 5000}}
	e := entity.New(entity.KindEnemy, vec.Vec2{X: 155}, vec.Vec2{})
	Chase(e, vec.Vec2{}, ChaseBand{AgroRange: 700, StopRadius: 150, Speed: 1000}, bounds, 1)
	assert.InDelta(t, 150, e.Position2().X, 1e-9)
}

func TestSteerTowards_BoundedSlew(t *testing.T) {
	e := entity.New(entity.KindEnemy, vec.Vec2{}, vec.Vec2{})
	target := vec.Vec2{X: 100, Y: 0} // справа: нужен поворот на -π/2

	SteerTowards(e, target, 1, 0.5)
	assert.InDelta(t, -0.5, e.Angle(), 1e-9)

	for i := 0; i < 10; i++ {
		SteerTowards(e, target, 1, 0.5)
	}
	assert.InDelta(t, -math.Pi/2, e.Angle(), 1e-6, "без перелёта через цель")
}

func TestMoveBoat_WindAndRamp(t *testing.T) {
	bounds := physics.Bounds{Extent: vec.Vec2{X: 1e6, Y: 1e6}}
	p := BoatParams{Params: Params{Acceleration: 100, MaxSpeed: 100}, RampRate: 10, MaxAcceleration: 20, WindInfluence: 0.5}

	with := entity.New(entity.KindBoat, vec.Vec2{}, vec.Vec2{X: 10, Y: 10})
	with.Boat = &entity.Boat{RotationSpeed: 1}
	against := entity.New(entity.KindBoat, vec.Vec2{}, vec.Vec2{X: 10, Y: 10})
	against.Boat = &entity.Boat{RotationSpeed: 1}

	for i := 0; i < 10; i++ {
		MoveBoat(with, BoatInput{Forward: true}, vec.Vec2{Y: 1}, p, bounds, 0.1)
		MoveBoat(against, BoatInput{Forward: true}, vec.Vec2{Y: -1}, p, bounds, 0.1)
	}
	assert.Greater(t, with.Position2().Y, against.Position2().Y)
	assert.InDelta(t, 10, with.Boat.Acceleration, 1e-9)

	for i := 0; i < 20; i++ {
		MoveBoat(with, BoatInput{}, vec.Vec2{Y: 1}, p, bounds, 0.1)
	}
	assert.Equal(t, 0.0, with.Boat.Acceleration)
	assert.Equal(t, vec.Vec2{}, with.Velocity)
}

func TestWindFactor(t *testing.T) {
	assert.InDelta(t, 1.5, WindFactor(vec.Vec2{Y: 1}, vec.Vec2{Y: 3}, 0.5), 1e-12)
	assert.InDelta(t, 1.0, WindFactor(vec.Vec2{Y: 1}, vec.Vec2{X: 3}, 0.5), 1e-12)
	assert.InDelta(t, 1.0, WindFactor(vec.Vec2{Y: 1}, vec.Vec2{}, 0.5), 1e-12)
	assert.InDelta(t, 0.5, WindFactor(vec.Vec2{Y: 1}, vec.Vec2{Y: -3}, 0.5), 1e-12, "встречный ветер замедляет")
	assert.InDelta(t, 0.7, WindFactor(vec.Vec2{X: 1}, vec.Vec2{X: -1}, 0.3), 1e-12, "корабль не встаёт против ветра")
}
