package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
// Секции, не указанные в файле, сохраняют значения Default().
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Client     ClientConfig     `yaml:"client"`
	Simulation SimulationConfig `yaml:"simulation"`
	Ocean      OceanConfig      `yaml:"ocean"`
	Storage    StorageConfig    `yaml:"storage"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Host          string        `yaml:"host"`
	UDPPort       int           `yaml:"udp_port"`
	LegacyPort    int           `yaml:"legacy_port"`
	AdminPort     int           `yaml:"admin_port"`
	MaxPlayers    int           `yaml:"max_players"`
	BroadcastRate int           `yaml:"broadcast_rate"` // Рассылок update_players/update_enemies в секунду
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	RateLimit     float64       `yaml:"rate_limit"` // Датаграмм в секунду с одного адреса
	RateBurst     int           `yaml:"rate_burst"`
}

type ClientConfig struct {
	ServerAddr       string        `yaml:"server_addr"`
	BindHost         string        `yaml:"bind_host"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	LeaveTimeout     time.Duration `yaml:"leave_timeout"`
}

type SimulationConfig struct {
	TickRate       int     `yaml:"tick_rate"`
	IFrames        float64 `yaml:"iframes"`
	HazardInterval float64 `yaml:"hazard_interval"`
	MaxHazards     int     `yaml:"max_hazards"`
	WindInfluence  float64 `yaml:"wind_influence"`
	Seed           int64   `yaml:"seed"`
}

type OceanConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	TileSize float64 `yaml:"tile_size"`
	Seed     int64   `yaml:"seed"`
}

type StorageConfig struct {
	RedisAddr  string `yaml:"redis_addr"` // Пусто: снимки игроков в памяти
	RedisDB    int    `yaml:"redis_db"`
	BadgerPath string `yaml:"badger_path"` // Пусто: клетки океана в памяти
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // Пусто: шина в памяти
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type LoggingConfig struct {
	Console string `yaml:"console"`
	File    string `yaml:"file"`
}

// Default значения по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			MaxPlayers:    4,
			BroadcastRate: 20,
			IdleTimeout:   10 * time.Second,
			RateLimit:     120,
			RateBurst:     60,
		},
		Client: ClientConfig{
			ServerAddr:       "127.0.0.1:7778",
			BindHost:         "127.0.0.1",
			HandshakeTimeout: 5 * time.Second,
			LeaveTimeout:     2 * time.Second,
		},
		Simulation: SimulationConfig{
			TickRate:       60,
			IFrames:        0.75,
			HazardInterval: 8,
			MaxHazards:     3,
			WindInfluence:  0.3,
			Seed:           1,
		},
		Ocean: OceanConfig{
			Width:    16,
			Height:   16,
			TileSize: 256,
			Seed:     42,
		},
		Storage: StorageConfig{},
		EventBus: EventBusConfig{
			Stream:    "SEAFARER",
			Retention: 24,
			Buffer:    1024,
		},
		Logging: LoggingConfig{
			Console: "INFO",
			File:    "DEBUG",
		},
	}
}

// GetUDPPort возвращает UDP порт с поддержкой fallback значений
func (s *ServerConfig) GetUDPPort() int {
	return getPortWithEnvFallback(s.UDPPort, "GAME_UDP_PORT", 7778)
}

// GetLegacyPort возвращает порт устаревшего KCP-слушателя
func (s *ServerConfig) GetLegacyPort() int {
	return getPortWithEnvFallback(s.LegacyPort, "GAME_LEGACY_PORT", 7777)
}

// GetAdminPort возвращает порт HTTP администрирования и метрик
func (s *ServerConfig) GetAdminPort() int {
	return getPortWithEnvFallback(s.AdminPort, "GAME_ADMIN_PORT", 8088)
}

// UDPAddr адрес UDP-сервера
func (s *ServerConfig) UDPAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.GetUDPPort()))
}

// TickInterval длительность одного тика
func (s *SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// TileCount ожидаемое количество клеток океана
func (o *OceanConfig) TileCount() int {
	return o.Width * o.Height
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Validate проверяет значения, без которых сервер или клиент не запустятся
func (c *Config) Validate() error {
	switch {
	case c.Server.MaxPlayers <= 0:
		return fmt.Errorf("server.max_players должен быть > 0")
	case c.Server.BroadcastRate <= 0:
		return fmt.Errorf("server.broadcast_rate должен быть > 0")
	case c.Simulation.TickRate <= 0:
		return fmt.Errorf("simulation.tick_rate должен быть > 0")
	case c.Ocean.Width <= 0 || c.Ocean.Height <= 0 || c.Ocean.TileSize <= 0:
		return fmt.Errorf("ocean: размеры должны быть > 0")
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
