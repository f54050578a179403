package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/annel0/seafarer/internal/entity"
	"github.com/annel0/seafarer/internal/eventbus"
	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/ocean"
	"github.com/annel0/seafarer/internal/protocol"
	"github.com/annel0/seafarer/internal/sim"
	"github.com/annel0/seafarer/internal/storage"
)

const (
	maxDatagram  = 64 * 1024
	inboxSize    = 1024
	maxLimiters  = 4096
	readInterval = 500 * time.Millisecond
)

// ServerConfig параметры UDP-сервера лобби
type ServerConfig struct {
	Addr          string
	MaxPlayers    int
	TickRate      int           // Тиков симуляции в секунду
	BroadcastRate int           // Рассылок update_players/update_enemies в секунду
	IdleTimeout   time.Duration // 0: не вытеснять молчащих игроков
	RateLimit     float64       // Датаграмм в секунду с одного адреса; 0 — без ограничения
	RateBurst     int
}

func (c *ServerConfig) applyDefaults() {
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 4
	}
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.BroadcastRate <= 0 {
		c.BroadcastRate = 20
	}
	if c.RateBurst <= 0 {
		c.RateBurst = int(c.RateLimit) + 1
	}
}

// ServerOption необязательные зависимости сервера
type ServerOption func(*Server)

// WithPlayerRepo сохраняет снимки игроков при выходе и вытеснении
func WithPlayerRepo(repo storage.PlayerRepo) ServerOption {
	return func(s *Server) { s.repo = repo }
}

// WithEventBus публикует события входа, выхода и убийств
func WithEventBus(bus eventbus.EventBus) ServerOption {
	return func(s *Server) { s.bus = bus }
}

// WithMetrics включает сетевые метрики
func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

type datagram struct {
	data []byte
	addr *net.UDPAddr
}

// Server UDP-сервер общего океана. Приём датаграмм идёт в отдельной горутине,
// вся обработка и симуляция выполняются в Step в одном потоке.
type Server struct {
	cfg     ServerConfig
	conn    *net.UDPConn
	sim     *sim.Simulation
	grid    *ocean.Grid
	lobby   *Lobby
	repo    storage.PlayerRepo
	bus     eventbus.EventBus
	metrics *Metrics
	logger  *logging.Logger

	inbox    chan datagram
	limiters map[string]*rate.Limiter // Только горутина приёма

	enemySeq       uint64
	sinceBroadcast float64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewServer создаёт сервер. Симуляция должна работать в роли RoleServer.
func NewServer(cfg ServerConfig, simulation *sim.Simulation, grid *ocean.Grid, opts ...ServerOption) (*Server, error) {
	if simulation == nil {
		return nil, errors.New("симуляция не задана")
	}
	if simulation.Role() != sim.RoleServer {
		return nil, fmt.Errorf("симуляция в роли %d, ожидалась роль сервера", simulation.Role())
	}
	if grid == nil {
		return nil, errors.New("сетка океана не задана")
	}
	cfg.applyDefaults()

	s := &Server{
		cfg:      cfg,
		sim:      simulation,
		grid:     grid,
		lobby:    NewLobby(cfg.MaxPlayers),
		logger:   logging.GetServerLogger(),
		inbox:    make(chan datagram, inboxSize),
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start открывает UDP-сокет и запускает приём датаграмм
func (s *Server) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("адрес сервера %s: %w", s.cfg.Addr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("не удалось открыть UDP %s: %w", s.cfg.Addr, err)
	}
	s.conn = conn
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.receiveLoop()

	s.logger.Info("🚀 UDP сервер запущен на %s (мест: %d)", conn.LocalAddr(), s.cfg.MaxPlayers)
	return nil
}

// Addr фактический адрес сокета
func (s *Server) Addr() *net.UDPAddr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Lobby лобби сервера
func (s *Server) Lobby() *Lobby { return s.lobby }

// Stop останавливает приём и сохраняет снимки оставшихся игроков
func (s *Server) Stop() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.conn != nil {
			s.conn.Close()
		}
		s.wg.Wait()

		members := s.lobby.Members()
		if s.repo != nil && len(members) > 0 {
			snaps := make([]storage.PlayerSnapshot, 0, len(members))
			for _, m := range members {
				snaps = append(snaps, snapshot(m, time.Now()))
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := s.repo.BatchSave(ctx, snaps); err != nil {
				s.logger.Error("Ошибка сохранения снимков игроков: %v", err)
			}
			cancel()
		}
		s.logger.Info("🛑 UDP сервер остановлен")
	})
}

// Run запускает сервер и крутит тики до отмены контекста
func (s *Server) Run(ctx context.Context) error {
	if s.conn == nil {
		if err := s.Start(); err != nil {
			return err
		}
	}
	defer s.Stop()

	interval := time.Second / time.Duration(s.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.Step(dt)
		}
	}
}

// Step один тик сервера: входящие, вытеснение, симуляция, события, рассылка
func (s *Server) Step(dt float64) {
	now := time.Now()
	s.Drain()
	if s.cfg.IdleTimeout > 0 {
		for _, m := range s.lobby.Evict(now, s.cfg.IdleTimeout) {
			s.logger.Warn("Игрок %d (%s) вытеснен по таймауту", m.ID, m.Addr)
			s.sim.RemovePlayer(m.ID)
			s.saveSnapshot(m, now)
			s.publish(eventbus.TypePlayerLeft, 5, eventbus.PlayerLeft{ID: m.ID, Addr: m.Addr.String(), Reason: "idle"})
		}
	}

	s.sim.Tick(nil, dt)
	s.handleSimEvents()

	s.sinceBroadcast += dt
	if s.sinceBroadcast >= 1/float64(s.cfg.BroadcastRate) {
		s.sinceBroadcast = 0
		s.Broadcast()
	}
	s.metrics.lobbySize(s.lobby.Size())
}

// receiveLoop принимает UDP пакеты и передаёт их в очередь тика
func (s *Server) receiveLoop() {
	defer s.wg.Done()
	buffer := make([]byte, maxDatagram)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		// Таймаут чтения, чтобы можно было проверять контекст
		s.conn.SetReadDeadline(time.Now().Add(readInterval))
		n, addr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("Ошибка чтения UDP: %v", err)
			continue
		}

		if !s.allow(addr) {
			s.metrics.drop(dropRateLimit)
			continue
		}

		data := make([]byte, n)
		copy(data, buffer[:n])
		select {
		case s.inbox <- datagram{data: data, addr: addr}:
		default:
			s.metrics.drop(dropInboxFull)
		}
	}
}

// allow ограничивает частоту датаграмм с одного адреса
func (s *Server) allow(addr *net.UDPAddr) bool {
	if s.cfg.RateLimit <= 0 {
		return true
	}
	key := addr.String()
	limiter, ok := s.limiters[key]
	if !ok {
		if len(s.limiters) >= maxLimiters {
			s.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
		s.limiters[key] = limiter
	}
	return limiter.Allow()
}

// Drain обрабатывает все накопившиеся датаграммы без блокировки
func (s *Server) Drain() int {
	handled := 0
	for {
		select {
		case d := <-s.inbox:
			s.handleDatagram(d)
			handled++
		default:
			return handled
		}
	}
}

func (s *Server) handleDatagram(d datagram) {
	env, err := protocol.Decode(d.data)
	if err != nil {
		logging.LogProtocolError(d.addr.String(), err, d.data)
		if errors.Is(err, protocol.ErrUnknownMessage) {
			s.metrics.drop(dropUnknown)
		} else {
			s.metrics.drop(dropMalformed)
		}
		return
	}
	s.metrics.receivedMsg(string(env.Message))

	switch env.Message {
	case protocol.TagNewPlayer:
		err = s.handleJoin(d.addr, env)
	case protocol.TagPlayerUpdate:
		err = s.handlePlayerUpdate(d.addr, env)
	case protocol.TagPlayerLeave:
		err = s.handleLeave(d.addr, env)
	case protocol.TagEnemyHit:
		err = s.handleEnemyHit(d.addr, env)
	default:
		s.metrics.drop(dropUnexpected)
		s.logger.Debug("Сообщение %s от %s не ожидается сервером", env.Message, d.addr)
		return
	}
	if err != nil {
		logging.LogProtocolError(d.addr.String(), err, d.data)
		s.metrics.drop(dropMalformed)
	}
}

func (s *Server) handleJoin(addr *net.UDPAddr, env protocol.Envelope) error {
	req, err := protocol.Unpack[protocol.JoinRequest](env)
	if err != nil {
		return err
	}

	now := time.Now()
	m, rejoined, err := s.lobby.Join(addr, req.Token, now)
	if errors.Is(err, ErrLobbyFull) {
		reason := fmt.Sprintf("все %d мест заняты", s.lobby.Capacity())
		s.logger.Info("Отказ %s: %s", addr, reason)
		return s.send(addr, protocol.TagFullLobby, protocol.LobbyFull{Reason: reason})
	}
	if err != nil {
		return err
	}

	if err := s.send(addr, protocol.TagJoinedLobby, protocol.JoinReply{ID: m.ID, Tiles: s.grid.Count(), Token: m.Token}); err != nil {
		return err
	}
	for _, tile := range s.grid.Tiles {
		if err := s.send(addr, protocol.TagLoadOcean, tile); err != nil {
			return err
		}
	}

	if rejoined {
		s.logger.Debug("Повторный new_player от %s, id %d", addr, m.ID)
		return nil
	}
	// Новая сессия: зеркало прошлой сессии под этим id больше не действительно
	s.sim.RemovePlayer(m.ID)

	returned := false
	if s.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, found, err := s.repo.Load(ctx, addr.String())
		cancel()
		if err != nil {
			s.logger.Warn("Не удалось прочитать снимок %s: %v", addr, err)
		}
		returned = found
	}
	s.logger.Info("👤 Игрок %d подключился с %s (вернулся: %v)", m.ID, addr, returned)
	s.publish(eventbus.TypePlayerJoined, 5, eventbus.PlayerJoined{ID: m.ID, Addr: addr.String(), Returned: returned})
	return nil
}

func (s *Server) handlePlayerUpdate(addr *net.UDPAddr, env protocol.Envelope) error {
	rec, err := protocol.Unpack[protocol.PlayerRecord](env)
	if err != nil {
		return err
	}
	if _, ok := s.lobby.Get(addr.String()); !ok {
		s.metrics.drop(dropStranger)
		return nil
	}
	rec, ok := s.lobby.Update(addr.String(), rec, time.Now())
	if !ok {
		s.metrics.drop(dropStale)
		return nil
	}
	s.sim.ApplyPlayer(playerState(rec))
	return nil
}

func (s *Server) handleLeave(addr *net.UDPAddr, env protocol.Envelope) error {
	if _, err := protocol.Unpack[protocol.Leave](env); err != nil {
		return err
	}

	// Подтверждаем и неизвестным адресам: прежний leave_success мог потеряться
	m, ok := s.lobby.Leave(addr.String())
	reply := protocol.Leave{ID: -1, Addr: addr.String()}
	if ok {
		reply.ID = m.ID
		s.sim.RemovePlayer(m.ID)
		s.saveSnapshot(m, time.Now())
		s.logger.Info("👋 Игрок %d (%s) вышел", m.ID, addr)
		s.publish(eventbus.TypePlayerLeft, 5, eventbus.PlayerLeft{ID: m.ID, Addr: addr.String(), Reason: "leave"})
	}
	return s.send(addr, protocol.TagLeaveSuccess, reply)
}

func (s *Server) handleEnemyHit(addr *net.UDPAddr, env protocol.Envelope) error {
	hit, err := protocol.Unpack[protocol.EnemyHit](env)
	if err != nil {
		return err
	}
	id, ok := s.lobby.AcceptHit(addr.String(), hit.Seq, time.Now())
	if !ok {
		if id < 0 {
			s.metrics.drop(dropStranger)
		} else {
			s.metrics.drop(dropStale)
		}
		return nil
	}
	if !s.sim.ApplyHitReport(hit.EnemyID, hit.Damage, id) {
		s.logger.Debug("enemy_hit по несуществующему врагу %d от игрока %d", hit.EnemyID, id)
	}
	return nil
}

// handleSimEvents превращает события тика в despawn_enemy / spawn_enemy и события шины
func (s *Server) handleSimEvents() {
	for _, ev := range s.sim.Events() {
		switch ev.Kind {
		case sim.EventEnemyKilled:
			s.broadcastAll(protocol.TagDespawnEnemy, protocol.EnemyDespawn{EnemyID: ev.NetID, Class: ev.Class, Killer: ev.Killer})
			s.publish(eventbus.TypeEnemyKilled, 5, eventbus.EnemyKilled{
				EnemyID: ev.NetID, Class: ev.Class, Killer: ev.Killer, Gold: ev.Gold,
				X: ev.Position.X, Y: ev.Position.Y,
			})
		case sim.EventHazardExpired:
			s.broadcastAll(protocol.TagDespawnEnemy, protocol.EnemyDespawn{EnemyID: ev.NetID, Class: ev.Class, Killer: -1})
			s.publish(eventbus.TypeHazardExpired, 1, eventbus.Hazard{EnemyID: ev.NetID, Class: ev.Class, X: ev.Position.X, Y: ev.Position.Y})
		case sim.EventHazardSpawned:
			class, err := entity.ParseEnemyClass(ev.Class)
			if err != nil {
				continue
			}
			rec := protocol.EnemyRecord{ID: ev.NetID, Class: class, Position: ev.Position}
			if e, ok := s.sim.Registry().Get(ev.Entity); ok {
				rec.Rotation = e.Transform.Rotation
				if e.Health != nil {
					rec.HP = e.Health.Current
				}
			}
			s.broadcastAll(protocol.TagSpawnEnemy, rec)
			s.publish(eventbus.TypeHazardSpawned, 1, eventbus.Hazard{EnemyID: ev.NetID, Class: ev.Class, X: ev.Position.X, Y: ev.Position.Y})
		}
	}
}

// Broadcast рассылает полное состояние игроков и врагов всем участникам
func (s *Server) Broadcast() {
	members := s.lobby.Members()
	if len(members) == 0 {
		return
	}
	s.enemySeq++
	batch := protocol.EnemyBatch{Seq: s.enemySeq, Enemies: enemyRecords(s.sim.EnemyStates())}

	players, err := protocol.Encode(protocol.TagUpdatePlayers, s.lobby.Records())
	if err != nil {
		s.logger.Error("Ошибка сериализации update_players: %v", err)
		return
	}
	enemies, err := protocol.Encode(protocol.TagUpdateEnemies, batch)
	if err != nil {
		s.logger.Error("Ошибка сериализации update_enemies: %v", err)
		return
	}
	for _, m := range members {
		s.write(m.Addr, protocol.TagUpdatePlayers, players)
		s.write(m.Addr, protocol.TagUpdateEnemies, enemies)
	}
}

func (s *Server) broadcastAll(tag protocol.Tag, payload any) {
	data, err := protocol.Encode(tag, payload)
	if err != nil {
		s.logger.Error("Ошибка сериализации %s: %v", tag, err)
		return
	}
	for _, m := range s.lobby.Members() {
		s.write(m.Addr, tag, data)
	}
}

func (s *Server) send(addr *net.UDPAddr, tag protocol.Tag, payload any) error {
	data, err := protocol.Encode(tag, payload)
	if err != nil {
		return err
	}
	s.write(addr, tag, data)
	return nil
}

func (s *Server) write(addr *net.UDPAddr, tag protocol.Tag, data []byte) {
	if _, err := s.conn.WriteToUDP(data, addr); err != nil {
		s.logger.Warn("Ошибка отправки %s на %s: %v", tag, addr, err)
		return
	}
	s.metrics.sentMsg(string(tag))
}

func (s *Server) saveSnapshot(m Member, now time.Time) {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, snapshot(m, now)); err != nil {
		s.logger.Warn("Не удалось сохранить снимок игрока %d: %v", m.ID, err)
	}
}

func (s *Server) publish(eventType string, priority int, payload any) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEvent("server", eventType, priority, payload)
	if err != nil {
		s.logger.Error("Ошибка создания события: %v", err)
		return
	}
	if err := s.bus.Publish(context.Background(), ev); err != nil {
		s.logger.Warn("Не удалось опубликовать %s: %v", eventType, err)
	}
}

func snapshot(m Member, now time.Time) storage.PlayerSnapshot {
	return storage.PlayerSnapshot{
		Addr:     m.Addr.String(),
		ID:       m.ID,
		Token:    m.Token,
		Record:   m.Record,
		LastSeen: now,
	}
}
