package ocean

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/seafarer/internal/vec"
)

// TileKind тип клетки океана
type TileKind string

const (
	TileDeep    TileKind = "deep"
	TileShallow TileKind = "shallow"
	TileReef    TileKind = "reef"
	TileIsland  TileKind = "island"
)

// Tile клетка океана. Передаётся клиентам по одной в сообщениях load_ocean.
type Tile struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Kind TileKind `json:"kind"`
	Wind vec.Vec2 `json:"wind"`
}

// Grid сетка клеток с центром в начале координат
type Grid struct {
	Width    int
	Height   int
	TileSize float64
	Tiles    []Tile // Построчно
}

// NewGrid собирает сетку из набора клеток (порядок не важен)
func NewGrid(width, height int, tileSize float64, tiles []Tile) *Grid {
	g := &Grid{Width: width, Height: height, TileSize: tileSize, Tiles: make([]Tile, width*height)}
	for i := range g.Tiles {
		g.Tiles[i] = Tile{X: i % width, Y: i / width, Kind: TileDeep}
	}
	for _, t := range tiles {
		if t.X >= 0 && t.X < width && t.Y >= 0 && t.Y < height {
			g.Tiles[t.Y*width+t.X] = t
		}
	}
	return g
}

// Count ожидаемое количество клеток
func (g *Grid) Count() int {
	return g.Width * g.Height
}

// Extent полный размер океана в мировых единицах
func (g *Grid) Extent() vec.Vec2 {
	return vec.Vec2{X: float64(g.Width) * g.TileSize, Y: float64(g.Height) * g.TileSize}
}

// At возвращает клетку по координатам сетки
func (g *Grid) At(x, y int) (Tile, bool) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return Tile{}, false
	}
	return g.Tiles[y*g.Width+x], true
}

// TileAt возвращает клетку под мировой позицией
func (g *Grid) TileAt(pos vec.Vec2) (Tile, bool) {
	ext := g.Extent()
	x := int(math.Floor((pos.X + ext.X/2) / g.TileSize))
	y := int(math.Floor((pos.Y + ext.Y/2) / g.TileSize))
	return g.At(x, y)
}

// Center мировая позиция центра клетки
func (g *Grid) Center(t Tile) vec.Vec2 {
	ext := g.Extent()
	return vec.Vec2{
		X: (float64(t.X)+0.5)*g.TileSize - ext.X/2,
		Y: (float64(t.Y)+0.5)*g.TileSize - ext.Y/2,
	}
}

// WindAt ветер в мировой позиции; вне сетки — штиль
func (g *Grid) WindAt(pos vec.Vec2) vec.Vec2 {
	t, ok := g.TileAt(pos)
	if !ok {
		return vec.Vec2{}
	}
	return t.Wind
}

// OfKind клетки указанного типа
func (g *Grid) OfKind(kind TileKind) []Tile {
	var out []Tile
	for _, t := range g.Tiles {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// Generator строит океан из шума Перлина
type Generator struct {
	terrain *perlin.Perlin
	wind    *perlin.Perlin
}

// NewGenerator создаёт генератор с указанным сидом
func NewGenerator(seed int64) *Generator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Generator{
		terrain: perlin.NewPerlin(alpha, beta, n, seed),
		wind:    perlin.NewPerlin(alpha, beta, n, seed+1),
	}
}

// Generate строит сетку width×height
func (gen *Generator) Generate(width, height int, tileSize float64) *Grid {
	tiles := make([]Tile, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tiles = append(tiles, Tile{
				X:    x,
				Y:    y,
				Kind: classify(gen.sample(gen.terrain, x, y, 0.15)),
				Wind: gen.windAt(x, y),
			})
		}
	}
	return NewGrid(width, height, tileSize, tiles)
}

// sample возвращает значение шума в диапазоне 0..1
func (gen *Generator) sample(p *perlin.Perlin, x, y int, scale float64) float64 {
	return (p.Noise2D(float64(x)*scale, float64(y)*scale) + 1) / 2
}

func (gen *Generator) windAt(x, y int) vec.Vec2 {
	angle := gen.sample(gen.wind, x, y, 0.05) * 2 * math.Pi
	strength := 0.5 + gen.sample(gen.wind, y, x, 0.1)
	return vec.Forward(angle).Mul(strength)
}

func classify(v float64) TileKind {
	switch {
	case v < 0.5:
		return TileDeep
	case v < 0.62:
		return TileShallow
	case v < 0.7:
		return TileReef
	default:
		return TileIsland
	}
}
