package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/seafarer/internal/ocean"
)

// BadgerTileStore хранит сетки океана в BadgerDB, сжимая их zstd
type BadgerTileStore struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerTileStore открывает хранилище в каталоге dataPath/ocean
func NewBadgerTileStore(dataPath string) (*BadgerTileStore, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "ocean"))
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}

	return &BadgerTileStore{db: db, encoder: encoder, decoder: decoder, isReady: true}, nil
}

// SaveGrid сохраняет сжатую сетку
func (s *BadgerTileStore) SaveGrid(ctx context.Context, seed int64, g *ocean.Grid) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	raw, err := encodeGrid(g)
	if err != nil {
		return err
	}
	compressed := s.encoder.EncodeAll(raw, nil)

	key := gridKey(seed, g.Width, g.Height)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), compressed)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// LoadGrid читает и распаковывает сетку
func (s *BadgerTileStore) LoadGrid(ctx context.Context, seed int64, width, height int) (*ocean.Grid, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, false, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gridKey(seed, width, height)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	raw, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка распаковки сетки: %w", err)
	}
	g, err := decodeGrid(raw)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// Close закрывает хранилище
func (s *BadgerTileStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}
