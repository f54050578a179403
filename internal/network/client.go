package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/ocean"
	"github.com/annel0/seafarer/internal/protocol"
	"github.com/annel0/seafarer/internal/sim"
)

const (
	resendInterval = 500 * time.Millisecond
	pollWait       = time.Millisecond
)

var (
	errNoData  = errors.New("нет данных")
	errDropped = errors.New("датаграмма отброшена")
)

// ClientConfig параметры клиента
type ClientConfig struct {
	ServerAddr       string
	BindHost         string // Пусто: 127.0.0.1
	BindPort         int    // 0: эфемерный порт
	HandshakeTimeout time.Duration
	LeaveTimeout     time.Duration
	Token            string // Пусто: новый UUID
}

type tileKey struct{ x, y int }

// Client UDP-клиент общего океана. Не потокобезопасен: все вызовы
// делаются из цикла тиков.
type Client struct {
	cfg     ClientConfig
	conn    *net.UDPConn
	server  *net.UDPAddr
	local   string
	logger  *logging.Logger
	metrics *Metrics

	id       int
	joined   bool
	expected int
	tiles    map[tileKey]ocean.Tile
	order    []tileKey

	seq    uint64
	hitSeq uint64
	buffer []byte
}

// Dial привязывает клиентский сокет. Сообщений на сервер не отправляет.
func Dial(cfg ClientConfig) (*Client, error) {
	if cfg.BindHost == "" {
		cfg.BindHost = "127.0.0.1"
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.LeaveTimeout <= 0 {
		cfg.LeaveTimeout = 2 * time.Second
	}
	if cfg.Token == "" {
		cfg.Token = uuid.NewString()
	}

	server, err := net.ResolveUDPAddr("udp", cfg.ServerAddr)
	if err != nil {
		return nil, fmt.Errorf("адрес сервера %s: %w", cfg.ServerAddr, err)
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(cfg.BindHost), Port: cfg.BindPort})
	if err != nil {
		return nil, fmt.Errorf("не удалось привязать сокет клиента: %w", err)
	}

	return &Client{
		cfg:    cfg,
		conn:   conn,
		server: server,
		local:  conn.LocalAddr().String(),
		logger: logging.GetClientLogger(),
		id:     -1,
		tiles:  make(map[tileKey]ocean.Tile),
		buffer: make([]byte, maxDatagram),
	}, nil
}

// SetMetrics включает сетевые метрики клиента
func (c *Client) SetMetrics(m *Metrics) { c.metrics = m }

// LocalAddr адрес клиентского сокета, передаваемый серверу
func (c *Client) LocalAddr() string { return c.local }

// ID выданный сервером id (-1 до подключения)
func (c *Client) ID() int { return c.id }

// Token сессионный токен клиента
func (c *Client) Token() string { return c.cfg.Token }

// Tiles принятые клетки океана в порядке получения
func (c *Client) Tiles() []ocean.Tile {
	out := make([]ocean.Tile, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.tiles[k])
	}
	return out
}

// Grid собирает сетку океана из принятых клеток. Размеры сетки общие для
// клиента и сервера и берутся из конфигурации.
func (c *Client) Grid(width, height int, tileSize float64) *ocean.Grid {
	return ocean.NewGrid(width, height, tileSize, c.Tiles())
}

// Join выполняет рукопожатие: new_player, затем блокирующий приём
// joined_lobby и всех клеток load_ocean. new_player повторяется, пока
// ответ не получен целиком.
func (c *Client) Join(ctx context.Context) error {
	req := protocol.JoinRequest{Addr: c.local, Token: c.cfg.Token}
	if err := c.send(protocol.TagNewPlayer, req); err != nil {
		return err
	}

	deadline := time.Now().Add(c.cfg.HandshakeTimeout)
	resendAt := time.Now().Add(resendInterval)
	for !c.joined || len(c.tiles) < c.expected {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := time.Now()
		if now.After(deadline) {
			return ErrHandshakeTimeout
		}
		if now.After(resendAt) {
			c.logger.Debug("Повтор new_player (получено клеток %d/%d)", len(c.tiles), c.expected)
			if err := c.send(protocol.TagNewPlayer, req); err != nil {
				return err
			}
			resendAt = now.Add(resendInterval)
		}

		wait := resendAt
		if deadline.Before(wait) {
			wait = deadline
		}
		env, err := c.receive(wait)
		if errors.Is(err, errNoData) || errors.Is(err, errDropped) {
			continue
		}
		if err != nil {
			return err
		}

		switch env.Message {
		case protocol.TagJoinedLobby:
			reply, err := protocol.Unpack[protocol.JoinReply](env)
			if err != nil {
				logging.LogProtocolError(c.server.String(), err, []byte(env.Packet))
				continue
			}
			c.id = reply.ID
			c.expected = reply.Tiles
			c.joined = true
		case protocol.TagFullLobby:
			full, err := protocol.Unpack[protocol.LobbyFull](env)
			if err != nil {
				full.Reason = "причина не указана"
			}
			c.logger.Error("Сервер отказал в подключении: %s", full.Reason)
			return &LobbyFullError{Reason: full.Reason}
		case protocol.TagLoadOcean:
			tile, err := protocol.Unpack[protocol.OceanTile](env)
			if err != nil {
				logging.LogProtocolError(c.server.String(), err, []byte(env.Packet))
				continue
			}
			key := tileKey{tile.X, tile.Y}
			if _, dup := c.tiles[key]; !dup {
				c.order = append(c.order, key)
			}
			c.tiles[key] = tile
		default:
			// Рассылки состояния до конца рукопожатия не нужны: следующая перезапишет
		}
	}

	c.logger.Info("✅ Подключено к %s: id %d, клеток океана %d", c.server, c.id, len(c.tiles))
	return nil
}

// receive читает одну датаграмму от сервера до момента until.
// errNoData — таймаут, errDropped — чужая или испорченная датаграмма.
func (c *Client) receive(until time.Time) (protocol.Envelope, error) {
	c.conn.SetReadDeadline(until)
	n, addr, err := c.conn.ReadFromUDP(c.buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return protocol.Envelope{}, errNoData
		}
		return protocol.Envelope{}, fmt.Errorf("ошибка чтения UDP: %w", err)
	}
	if !addr.IP.Equal(c.server.IP) || addr.Port != c.server.Port {
		c.metrics.drop(dropStranger)
		return protocol.Envelope{}, errDropped
	}

	env, err := protocol.Decode(c.buffer[:n])
	if err != nil {
		logging.LogProtocolError(addr.String(), err, c.buffer[:n])
		if errors.Is(err, protocol.ErrUnknownMessage) {
			c.metrics.drop(dropUnknown)
		} else {
			c.metrics.drop(dropMalformed)
		}
		return protocol.Envelope{}, errDropped
	}
	c.metrics.receivedMsg(string(env.Message))
	return env, nil
}

// Poll без блокировки применяет к симуляции все пришедшие сообщения.
// Возвращает число обработанных сообщений.
func (c *Client) Poll(s *sim.Simulation) (int, error) {
	handled := 0
	for {
		env, err := c.receive(time.Now().Add(pollWait))
		switch {
		case errors.Is(err, errNoData):
			return handled, nil
		case errors.Is(err, errDropped):
			continue
		case errors.Is(err, net.ErrClosed):
			return handled, err
		case err != nil:
			c.logger.Warn("%v", err)
			return handled, nil
		}
		c.dispatch(s, env)
		handled++
	}
}

func (c *Client) dispatch(s *sim.Simulation, env protocol.Envelope) {
	var err error
	switch env.Message {
	case protocol.TagUpdatePlayers:
		var records []protocol.PlayerRecord
		records, err = protocol.Unpack[[]protocol.PlayerRecord](env)
		if err == nil {
			c.applyPlayers(s, records)
		}
	case protocol.TagUpdateEnemies:
		var batch protocol.EnemyBatch
		batch, err = protocol.Unpack[protocol.EnemyBatch](env)
		if err == nil {
			s.ApplyEnemies(batch.Seq, enemyStates(batch.Enemies))
		}
	case protocol.TagSpawnEnemy:
		var rec protocol.EnemyRecord
		rec, err = protocol.Unpack[protocol.EnemyRecord](env)
		if err == nil {
			s.SpawnMirror(enemyState(rec))
		}
	case protocol.TagDespawnEnemy:
		var d protocol.EnemyDespawn
		d, err = protocol.Unpack[protocol.EnemyDespawn](env)
		if err == nil {
			s.RemoveMirror(d.EnemyID, d.Killer)
		}
	case protocol.TagJoinedLobby, protocol.TagLoadOcean, protocol.TagLeaveSuccess:
		// Запоздавшие ответы рукопожатия
	default:
		c.metrics.drop(dropUnexpected)
	}
	if err != nil {
		logging.LogProtocolError(c.server.String(), err, []byte(env.Packet))
		c.metrics.drop(dropMalformed)
	}
}

// applyPlayers update_players — полный список игроков: зеркала тех, кого в
// списке нет, удаляются
func (c *Client) applyPlayers(s *sim.Simulation, records []protocol.PlayerRecord) {
	present := make(map[int]bool, len(records))
	for _, rec := range records {
		if rec.ID == c.id {
			continue
		}
		present[rec.ID] = true
		s.ApplyPlayer(playerState(rec))
	}
	for _, e := range s.RemotePlayers() {
		if e.Boat != nil && !present[e.Boat.NetID] {
			s.RemovePlayer(e.Boat.NetID)
		}
	}
}

// SendState отправляет player_update с состоянием локального игрока
func (c *Client) SendState(s *sim.Simulation) error {
	if !c.joined {
		return ErrNotJoined
	}
	st, ok := s.LocalState(c.seq + 1)
	if !ok {
		return nil
	}
	c.seq++
	st.NetID = c.id
	return c.send(protocol.TagPlayerUpdate, playerRecord(st, c.local))
}

// SendRecord отправляет произвольную запись игрока со следующим порядковым номером
func (c *Client) SendRecord(rec protocol.PlayerRecord) error {
	if !c.joined {
		return ErrNotJoined
	}
	c.seq++
	rec.ID = c.id
	rec.Addr = c.local
	rec.Seq = c.seq
	return c.send(protocol.TagPlayerUpdate, rec)
}

// SendHits отправляет серверу урон, нанесённый зеркалам врагов
func (c *Client) SendHits(s *sim.Simulation) error {
	for _, r := range s.HitReports() {
		if !c.joined {
			continue
		}
		c.hitSeq++
		if err := c.send(protocol.TagEnemyHit, protocol.EnemyHit{EnemyID: r.NetID, Damage: r.Damage, Seq: c.hitSeq}); err != nil {
			return err
		}
	}
	return nil
}

// Leave отправляет player_leave и ждёт leave_success не дольше LeaveTimeout
func (c *Client) Leave(ctx context.Context) error {
	if !c.joined {
		return nil
	}
	msg := protocol.Leave{ID: c.id, Addr: c.local}
	if err := c.send(protocol.TagPlayerLeave, msg); err != nil {
		return err
	}

	deadline := time.Now().Add(c.cfg.LeaveTimeout)
	resendAt := time.Now().Add(resendInterval)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := time.Now()
		if now.After(deadline) {
			return ErrLeaveTimeout
		}
		if now.After(resendAt) {
			if err := c.send(protocol.TagPlayerLeave, msg); err != nil {
				return err
			}
			resendAt = now.Add(resendInterval)
		}

		wait := resendAt
		if deadline.Before(wait) {
			wait = deadline
		}
		env, err := c.receive(wait)
		if errors.Is(err, errNoData) || errors.Is(err, errDropped) {
			continue
		}
		if err != nil {
			return err
		}
		if env.Message == protocol.TagLeaveSuccess {
			c.joined = false
			c.logger.Info("Выход из лобби подтверждён")
			return nil
		}
	}
}

// Close закрывает сокет
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(tag protocol.Tag, payload any) error {
	data, err := protocol.Encode(tag, payload)
	if err != nil {
		return err
	}
	if _, err := c.conn.WriteToUDP(data, c.server); err != nil {
		return fmt.Errorf("отправка %s: %w", tag, err)
	}
	c.metrics.sentMsg(string(tag))
	return nil
}
