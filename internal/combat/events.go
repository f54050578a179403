package combat

// HitEvent зарегистрированное попадание
type HitEvent struct {
	Target   uint64  // Сущность с хёртбоксом
	Source   uint64  // Сущность с хитбоксом
	Attacker uint64  // Кто совершил атаку (0: окружение)
	Damage   float64 // Урон из хитбокса
	Class    string  // Класс источника
}

// EventQueue очередь попаданий за тик. Потребитель обязан полностью
// вычитывать её каждый тик, поэтому повторное попадание не теряется.
type EventQueue struct {
	events []HitEvent
}

// Push добавляет событие
func (q *EventQueue) Push(ev HitEvent) {
	q.events = append(q.events, ev)
}

// Len количество непрочитанных событий
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Drain возвращает все события и очищает очередь
func (q *EventQueue) Drain() []HitEvent {
	out := q.events
	q.events = nil
	return out
}
