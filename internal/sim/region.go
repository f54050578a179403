package sim

import (
	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/physics"
	"github.com/annel0/seafarer/internal/vec"
)

// RegionSpec описание игровой области: границы, точка появления и население
type RegionSpec struct {
	Region     entity.Region
	Extent     vec.Vec2
	Spawn      vec.Vec2
	Naval      bool // Игрок перемещается на корабле
	Population map[entity.EnemyClass]int
}

// Bounds границы области
func (r RegionSpec) Bounds() physics.Bounds {
	return physics.Bounds{Extent: r.Extent}
}

// Classes активные в области классы врагов в порядке объявления
func (r RegionSpec) Classes() []entity.EnemyClass {
	var out []entity.EnemyClass
	for _, c := range entity.EnemyClasses {
		if r.Population[c] > 0 {
			out = append(out, c)
		}
	}
	return out
}

// DefaultRegions стандартный набор областей
func DefaultRegions() map[entity.Region]RegionSpec {
	return map[entity.Region]RegionSpec{
		entity.RegionTown: {
			Region: entity.RegionTown,
			Extent: vec.Vec2{X: 1280, Y: 960},
		},
		entity.RegionOcean: {
			Region: entity.RegionOcean,
			Extent: vec.Vec2{X: 4096, Y: 4096},
			Naval:  true,
			Population: map[entity.EnemyClass]int{
				entity.ClassKraken:    3,
				entity.ClassGhostShip: 2,
				entity.ClassRock:      6,
			},
		},
		entity.RegionDungeon: {
			Region: entity.RegionDungeon,
			Extent: vec.Vec2{X: 1600, Y: 1200},
			Spawn:  vec.Vec2{Y: -450},
			Population: map[entity.EnemyClass]int{
				entity.ClassBat:      4,
				entity.ClassSkeleton: 3,
				entity.ClassBoss:     1,
			},
		},
	}
}
