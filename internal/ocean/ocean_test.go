package ocean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/vec"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(99).Generate(8, 6, 256)
	b := NewGenerator(99).Generate(8, 6, 256)

	require.Equal(t, 48, a.Count())
	require.Len(t, a.Tiles, 48)
	assert.Equal(t, a.Tiles, b.Tiles)
	for _, tile := range a.Tiles {
		assert.NotEmpty(t, tile.Kind)
		assert.Greater(t, tile.Wind.Length(), 0.0)
	}
}

func TestGrid_TileAtAndCenter(t *testing.T) {
	g := NewGrid(4, 4, 100, nil)
	assert.Equal(t, vec.Vec2{X: 400, Y: 400}, g.Extent())

	tile, ok := g.TileAt(vec.Vec2{X: -199, Y: 150})
	require.True(t, ok)
	assert.Equal(t, 0, tile.X)
	assert.Equal(t, 3, tile.Y)
	assert.Equal(t, vec.Vec2{X: -150, Y: 150}, g.Center(tile))

	_, ok = g.TileAt(vec.Vec2{X: 1000})
	assert.False(t, ok)
	assert.Equal(t, vec.Vec2{}, g.WindAt(vec.Vec2{X: 1000}))
}

func TestNewGrid_OutOfOrderTiles(t *testing.T) {
	tiles := []Tile{
		{X: 1, Y: 1, Kind: TileIsland},
		{X: 0, Y: 0, Kind: TileReef, Wind: vec.Vec2{X: 1}},
	}
	g := NewGrid(2, 2, 10, tiles)

	tile, _ := g.At(1, 1)
	assert.Equal(t, TileIsland, tile.Kind)
	assert.Len(t, g.OfKind(TileReef), 1)
	assert.Len(t, g.OfKind(TileDeep), 2)
}
