package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/annel0/seafarer/internal/ocean"
)

// TileStore хранит сгенерированные сетки океана, чтобы перезапуск сервера
// с тем же сидом отдавал клиентам тот же океан
type TileStore interface {
	SaveGrid(ctx context.Context, seed int64, g *ocean.Grid) error
	LoadGrid(ctx context.Context, seed int64, width, height int) (*ocean.Grid, bool, error)
	Close() error
}

// gridBlob сериализуемая форма сетки
type gridBlob struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	TileSize float64      `json:"tile_size"`
	Tiles    []ocean.Tile `json:"tiles"`
}

func gridKey(seed int64, width, height int) string {
	return fmt.Sprintf("ocean:%d:%dx%d", seed, width, height)
}

func encodeGrid(g *ocean.Grid) ([]byte, error) {
	return json.Marshal(gridBlob{Width: g.Width, Height: g.Height, TileSize: g.TileSize, Tiles: g.Tiles})
}

func decodeGrid(data []byte) (*ocean.Grid, error) {
	var blob gridBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сетки: %w", err)
	}
	return ocean.NewGrid(blob.Width, blob.Height, blob.TileSize, blob.Tiles), nil
}

// LoadOrGenerate возвращает сохранённую сетку или генерирует и сохраняет новую
func LoadOrGenerate(ctx context.Context, store TileStore, seed int64, width, height int, tileSize float64) (*ocean.Grid, error) {
	g, found, err := store.LoadGrid(ctx, seed, width, height)
	if err != nil {
		return nil, err
	}
	if found {
		return g, nil
	}
	g = ocean.NewGenerator(seed).Generate(width, height, tileSize)
	if err := store.SaveGrid(ctx, seed, g); err != nil {
		return nil, err
	}
	return g, nil
}

// MemoryTileStore реализует TileStore в памяти
type MemoryTileStore struct {
	mu    sync.RWMutex
	grids map[string][]byte
}

// NewMemoryTileStore создаёт хранилище сеток в памяти
func NewMemoryTileStore() *MemoryTileStore {
	return &MemoryTileStore{grids: make(map[string][]byte)}
}

func (s *MemoryTileStore) SaveGrid(ctx context.Context, seed int64, g *ocean.Grid) error {
	data, err := encodeGrid(g)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.grids[gridKey(seed, g.Width, g.Height)] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryTileStore) LoadGrid(ctx context.Context, seed int64, width, height int) (*ocean.Grid, bool, error) {
	s.mu.RLock()
	data, ok := s.grids[gridKey(seed, width, height)]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	g, err := decodeGrid(data)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

func (s *MemoryTileStore) Close() error { return nil }
