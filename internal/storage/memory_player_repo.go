package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryPlayerRepo реализует PlayerRepo в памяти.
// Используется, когда Redis не настроен, и в тестах.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryPlayerRepo struct {
	mu   sync.RWMutex
	data map[string]PlayerSnapshot // addr -> снимок
}

// NewMemoryPlayerRepo создает новый репозиторий снимков в памяти.
func NewMemoryPlayerRepo() *MemoryPlayerRepo {
	return &MemoryPlayerRepo{
		data: make(map[string]PlayerSnapshot),
	}
}

// Save сохраняет снимок игрока в памяти.
func (r *MemoryPlayerRepo) Save(ctx context.Context, snap PlayerSnapshot) error {
	if snap.Addr == "" {
		return ErrInvalidAddr
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[snap.Addr] = snap
	return nil
}

// Load загружает снимок игрока из памяти.
func (r *MemoryPlayerRepo) Load(ctx context.Context, addr string) (PlayerSnapshot, bool, error) {
	if addr == "" {
		return PlayerSnapshot{}, false, ErrInvalidAddr
	}

	select {
	case <-ctx.Done():
		return PlayerSnapshot{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, exists := r.data[addr]
	return snap, exists, nil
}

// Delete удаляет снимок игрока из памяти.
func (r *MemoryPlayerRepo) Delete(ctx context.Context, addr string) error {
	if addr == "" {
		return ErrInvalidAddr
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[addr]; !exists {
		return fmt.Errorf("снимок игрока %s не найден", addr)
	}

	delete(r.data, addr)
	return nil
}

// BatchSave сохраняет несколько снимков. Все записи проверяются до сохранения.
func (r *MemoryPlayerRepo) BatchSave(ctx context.Context, snaps []PlayerSnapshot) error {
	if len(snaps) == 0 {
		return nil // Нечего сохранять
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, snap := range snaps {
		if snap.Addr == "" {
			return fmt.Errorf("batch: %w", ErrInvalidAddr)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, snap := range snaps {
		r.data[snap.Addr] = snap
	}
	return nil
}

// Count возвращает количество сохраненных снимков (для отладки).
func (r *MemoryPlayerRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
