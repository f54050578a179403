package network

import (
	"net"
	"sort"
	"sync"
	"time"

	"github.com/annel0/seafarer/internal/protocol"
)

// Member участник лобби
type Member struct {
	ID       int
	Addr     *net.UDPAddr
	Token    string
	Record   protocol.PlayerRecord // Последняя принятая запись player_update
	Updated  bool                  // Получена ли хотя бы одна запись
	HitSeq   uint64                // Последний принятый enemy_hit
	JoinedAt time.Time
	LastSeen time.Time
}

// Lobby места игроков на сервере. Ключ — сетевой адрес клиента.
type Lobby struct {
	mu       sync.RWMutex
	capacity int
	members  map[string]*Member
}

// NewLobby создаёт лобби на capacity мест
func NewLobby(capacity int) *Lobby {
	if capacity <= 0 {
		capacity = 4
	}
	return &Lobby{capacity: capacity, members: make(map[string]*Member)}
}

// Capacity число мест
func (l *Lobby) Capacity() int { return l.capacity }

// Size число занятых мест
func (l *Lobby) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.members)
}

// Join занимает место за адресом. Повторный new_player с тем же адресом и
// токеном возвращает существующее место (rejoined = true); новый токен на том
// же адресе начинает сессию заново с прежним id.
func (l *Lobby) Join(addr *net.UDPAddr, token string, now time.Time) (m Member, rejoined bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := addr.String()
	if existing, ok := l.members[key]; ok {
		existing.LastSeen = now
		if existing.Token == token {
			return *existing, true, nil
		}
		*existing = Member{ID: existing.ID, Addr: addr, Token: token, JoinedAt: now, LastSeen: now}
		return *existing, false, nil
	}

	if len(l.members) >= l.capacity {
		return Member{}, false, ErrLobbyFull
	}

	member := &Member{ID: l.freeID(), Addr: addr, Token: token, JoinedAt: now, LastSeen: now}
	l.members[key] = member
	return *member, false, nil
}

// freeID наименьший незанятый id
func (l *Lobby) freeID() int {
	used := make(map[int]bool, len(l.members))
	for _, m := range l.members {
		used[m.ID] = true
	}
	id := 0
	for used[id] {
		id++
	}
	return id
}

// Get участник по адресу
func (l *Lobby) Get(addr string) (Member, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.members[addr]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Update принимает запись игрока, если её порядковый номер новее последней принятой.
// Идентификатор и адрес в записи подменяются данными лобби.
func (l *Lobby) Update(addr string, rec protocol.PlayerRecord, now time.Time) (protocol.PlayerRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.members[addr]
	if !ok {
		return rec, false
	}
	m.LastSeen = now
	if m.Updated && rec.Seq <= m.Record.Seq {
		return rec, false
	}
	rec.ID = m.ID
	rec.Addr = addr
	rec.Session = m.JoinedAt.UnixNano()
	m.Record = rec
	m.Updated = true
	return rec, true
}

// AcceptHit отбрасывает повторные и устаревшие enemy_hit
func (l *Lobby) AcceptHit(addr string, seq uint64, now time.Time) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.members[addr]
	if !ok {
		return -1, false
	}
	m.LastSeen = now
	if seq <= m.HitSeq {
		return m.ID, false
	}
	m.HitSeq = seq
	return m.ID, true
}

// Leave освобождает место
func (l *Lobby) Leave(addr string) (Member, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.members[addr]
	if !ok {
		return Member{}, false
	}
	delete(l.members, addr)
	return *m, true
}

// Evict освобождает места участников, от которых ничего не приходило дольше idle
func (l *Lobby) Evict(now time.Time, idle time.Duration) []Member {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Member
	for key, m := range l.members {
		if now.Sub(m.LastSeen) > idle {
			out = append(out, *m)
			delete(l.members, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Members копия участников, упорядоченная по id
func (l *Lobby) Members() []Member {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Member, 0, len(l.members))
	for _, m := range l.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Records последние записи игроков для update_players. Участники без
// единой записи ещё не в океане и не рассылаются.
func (l *Lobby) Records() []protocol.PlayerRecord {
	members := l.Members()
	out := make([]protocol.PlayerRecord, 0, len(members))
	for _, m := range members {
		if m.Updated {
			out = append(out, m.Record)
		}
	}
	return out
}
