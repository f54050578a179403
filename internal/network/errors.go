package network

import (
	"errors"
	"fmt"
)

var (
	// ErrLobbyFull сервер отказал в подключении: все места заняты
	ErrLobbyFull = errors.New("лобби заполнено")
	// ErrHandshakeTimeout сервер не ответил на new_player вовремя
	ErrHandshakeTimeout = errors.New("таймаут подключения к лобби")
	// ErrLeaveTimeout сервер не подтвердил выход
	ErrLeaveTimeout = errors.New("таймаут подтверждения выхода")
	// ErrNotJoined операция требует завершённого рукопожатия
	ErrNotJoined = errors.New("клиент не в лобби")
)

// LobbyFullError отказ full_lobby с причиной от сервера
type LobbyFullError struct {
	Reason string
}

func (e *LobbyFullError) Error() string {
	return fmt.Sprintf("%s: %s", ErrLobbyFull, e.Reason)
}

func (e *LobbyFullError) Unwrap() error {
	return ErrLobbyFull
}
