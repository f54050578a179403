package storage

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/seafarer/internal/protocol"
)

// ErrInvalidAddr пустой адрес игрока
var ErrInvalidAddr = errors.New("недействительный адрес игрока")

// PlayerSnapshot последнее известное состояние игрока.
// Снимки привязаны к сетевому адресу клиента: учётных записей в игре нет.
type PlayerSnapshot struct {
	Addr     string                `json:"addr"`
	ID       int                   `json:"id"`
	Token    string                `json:"token"`
	Record   protocol.PlayerRecord `json:"record"`
	LastSeen time.Time             `json:"last_seen"`
}

// PlayerRepo определяет интерфейс для сохранения снимков игроков при выходе
// и вытеснении из лобби.
type PlayerRepo interface {
	// Save сохраняет снимок игрока.
	Save(ctx context.Context, snap PlayerSnapshot) error

	// Load загружает снимок по адресу. bool — найден ли снимок.
	Load(ctx context.Context, addr string) (PlayerSnapshot, bool, error)

	// Delete удаляет снимок.
	Delete(ctx context.Context, addr string) error

	// BatchSave сохраняет несколько снимков (при остановке сервера).
	BatchSave(ctx context.Context, snaps []PlayerSnapshot) error
}
