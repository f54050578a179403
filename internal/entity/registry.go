package entity

import (
	"fmt"
	"sort"
)

// Observer получает уведомления о появлении и удалении сущностей.
// Реализуется внешним слоем отрисовки/ассетов.
type Observer interface {
	EntitySpawned(e *Entity)
	EntityDespawned(e *Entity)
}

// Registry хранилище всех сущностей симуляции.
// Не потокобезопасен: им владеет тик симуляции.
type Registry struct {
	entities     map[uint64]*Entity
	nextEntityID uint64
	observer     Observer
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{
		entities:     make(map[uint64]*Entity),
		nextEntityID: 1,
	}
}

// SetObserver устанавливает наблюдателя
func (r *Registry) SetObserver(o Observer) {
	r.observer = o
}

// Spawn добавляет сущность и возвращает её ID.
// Если ID уже задан внешним кодом, он сохраняется, а существующая сущность перезаписывается.
func (r *Registry) Spawn(e *Entity) uint64 {
	if e.ID == 0 {
		e.ID = r.nextEntityID
		r.nextEntityID++
	} else if e.ID >= r.nextEntityID {
		r.nextEntityID = e.ID + 1
	}
	r.entities[e.ID] = e
	if r.observer != nil {
		r.observer.EntitySpawned(e)
	}
	return e.ID
}

// Despawn удаляет сущность вместе с дочерними (оружием).
// Повторное удаление безопасно и возвращает false.
func (r *Registry) Despawn(id uint64) bool {
	e, exists := r.entities[id]
	if !exists {
		return false
	}
	delete(r.entities, id)

	for childID, child := range r.entities {
		if child.Parent == id {
			r.Despawn(childID)
		}
	}

	if r.observer != nil {
		r.observer.EntityDespawned(e)
	}
	return true
}

// Get возвращает сущность по ID
func (r *Registry) Get(id uint64) (*Entity, bool) {
	e, exists := r.entities[id]
	return e, exists
}

// Each обходит сущности в порядке возрастания ID.
// Удалять сущности внутри fn безопасно: список фиксируется до обхода.
func (r *Registry) Each(fn func(e *Entity)) {
	for _, id := range r.ids() {
		if e, exists := r.entities[id]; exists {
			fn(e)
		}
	}
}

// Filter возвращает сущности, удовлетворяющие предикату
func (r *Registry) Filter(pred func(e *Entity) bool) []*Entity {
	var out []*Entity
	r.Each(func(e *Entity) {
		if pred(e) {
			out = append(out, e)
		}
	})
	return out
}

// OfKind возвращает сущности указанного типа
func (r *Registry) OfKind(kind Kind) []*Entity {
	return r.Filter(func(e *Entity) bool { return e.Kind == kind })
}

// Count количество сущностей
func (r *Registry) Count() int {
	return len(r.entities)
}

// Stats возвращает количество сущностей по типам
func (r *Registry) Stats() map[string]int {
	stats := make(map[string]int)
	stats["total_entities"] = len(r.entities)
	for _, e := range r.entities {
		stats[fmt.Sprintf("kind_%s", e.Kind)]++
	}
	return stats
}

func (r *Registry) ids() []uint64 {
	ids := make([]uint64, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
