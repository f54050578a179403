package network

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/xtaci/kcp-go/v5"

	"github.com/annel0/seafarer/internal/logging"
)

// LobbyStatus ответ слушателя старых клиентов
type LobbyStatus struct {
	Players  int    `json:"players"`
	Capacity int    `json:"capacity"`
	UDPAddr  string `json:"udp_addr"` // Куда подключаться по актуальному протоколу
}

// LegacyListener принимает KCP-соединения старых клиентов и на каждую строку
// запроса отвечает строкой JSON со статусом лобби. Работает в одной фоновой горутине.
type LegacyListener struct {
	addr     string
	lobby    *Lobby
	udpAddr  string
	idle     time.Duration
	listener *kcp.Listener
	logger   *logging.Logger

	mu      sync.Mutex
	current *kcp.UDPSession

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLegacyListener создаёт слушатель. udpAddr — адрес UDP-сервера для ответа.
func NewLegacyListener(addr string, lobby *Lobby, udpAddr string) *LegacyListener {
	return &LegacyListener{
		addr:    addr,
		lobby:   lobby,
		udpAddr: udpAddr,
		idle:    time.Second,
		logger:  logging.GetNetworkLogger(),
	}
}

// Start открывает KCP-сокет и запускает цикл приёма
func (l *LegacyListener) Start() error {
	listener, err := kcp.ListenWithOptions(l.addr, nil, 0, 0)
	if err != nil {
		return fmt.Errorf("не удалось открыть KCP %s: %w", l.addr, err)
	}
	l.listener = listener
	l.ctx, l.cancel = context.WithCancel(context.Background())

	l.wg.Add(1)
	go l.acceptLoop()

	l.logger.Info("🚀 Слушатель старых клиентов запущен на %s", listener.Addr())
	return nil
}

// Addr фактический адрес слушателя
func (l *LegacyListener) Addr() net.Addr {
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// Run запускает слушатель до отмены контекста
func (l *LegacyListener) Run(ctx context.Context) error {
	if l.listener == nil {
		if err := l.Start(); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return l.Stop()
}

// Stop закрывает слушатель и текущую сессию
func (l *LegacyListener) Stop() error {
	if l.cancel == nil {
		return nil
	}
	l.cancel()
	err := l.listener.Close()

	l.mu.Lock()
	if l.current != nil {
		l.current.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()
	l.logger.Info("🛑 Слушатель старых клиентов остановлен")
	return err
}

// acceptLoop принимает сессии по одной
func (l *LegacyListener) acceptLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		sess, err := l.listener.AcceptKCP()
		if err != nil {
			select {
			case <-l.ctx.Done():
				return
			default:
			}
			l.logger.Warn("Ошибка accept: %v", err)
			continue
		}

		sess.SetStreamMode(true)
		sess.SetNoDelay(1, 20, 2, 1)
		sess.SetWindowSize(512, 512)

		l.mu.Lock()
		l.current = sess
		l.mu.Unlock()

		l.serve(sess)

		l.mu.Lock()
		l.current = nil
		l.mu.Unlock()
		sess.Close()
	}
}

// serve отвечает статусом на каждую строку, пока клиент не замолчит
func (l *LegacyListener) serve(sess *kcp.UDPSession) {
	reader := bufio.NewReader(sess)
	for {
		sess.SetReadDeadline(time.Now().Add(l.idle))
		if _, err := reader.ReadString('\n'); err != nil {
			return
		}

		status := LobbyStatus{Players: l.lobby.Size(), Capacity: l.lobby.Capacity(), UDPAddr: l.udpAddr}
		data, err := json.Marshal(status)
		if err != nil {
			return
		}
		if _, err := sess.Write(append(data, '\n')); err != nil {
			l.logger.Warn("Ошибка записи статуса %s: %v", sess.RemoteAddr(), err)
			return
		}
	}
}
