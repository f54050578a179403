package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/seafarer/internal/logging"
	"github.com/annel0/seafarer/internal/middleware"
	"github.com/annel0/seafarer/internal/network"
	"github.com/annel0/seafarer/internal/storage"
)

// LobbyView то, что админке нужно от лобби
type LobbyView interface {
	Members() []network.Member
	Capacity() int
}

// Config содержит конфигурацию админского сервера
type Config struct {
	Addr     string               // адрес для запуска сервера
	Lobby    LobbyView            // лобби UDP-сервера
	Repo     storage.PlayerRepo   // снимки игроков; nil — /players недоступен
	Registry *prometheus.Registry // метрики для /metrics
}

// GenericResponse общий формат ответа
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// LobbyPlayer участник лобби в ответе /lobby
type LobbyPlayer struct {
	ID       int       `json:"id"`
	Addr     string    `json:"addr"`
	InOcean  bool      `json:"in_ocean"`
	Boat     bool      `json:"boat"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	LastSeen time.Time `json:"last_seen"`
}

// AdminServer HTTP-сервер администрирования: здоровье, лобби, снимки игроков, метрики
type AdminServer struct {
	router  *gin.Engine
	addr    string
	lobby   LobbyView
	repo    storage.PlayerRepo
	metrics *ServerMetrics
	http    *http.Server
}

// NewAdminServer создает админский сервер
func NewAdminServer(config Config) *AdminServer {
	if config.Addr == "" {
		config.Addr = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware("admin_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	server := &AdminServer{
		router:  router,
		addr:    config.Addr,
		lobby:   config.Lobby,
		repo:    config.Repo,
		metrics: NewServerMetrics(),
	}
	server.setupRoutes()
	return server
}

func (as *AdminServer) setupRoutes() {
	as.router.GET("/health", as.handleHealth)
	as.router.GET("/lobby", as.handleLobby)
	as.router.GET("/players/:addr", as.handlePlayer)
}

// Handler для тестов и встраивания
func (as *AdminServer) Handler() http.Handler { return as.router }

// handleHealth состояние процесса
func (as *AdminServer) handleHealth(c *gin.Context) {
	memoryMB, _ := as.metrics.GetMemoryUsage()
	cpuPercent, _ := as.metrics.GetCPUUsage()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "ok",
		Data: map[string]interface{}{
			"uptime":      as.metrics.GetUptime(),
			"memory_mb":   fmt.Sprintf("%.1f", memoryMB),
			"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
			"goroutines":  runtime.NumGoroutine(),
			"server_time": time.Now().Unix(),
		},
	})
}

// handleLobby занятые места
func (as *AdminServer) handleLobby(c *gin.Context) {
	if as.lobby == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Лобби не подключено"})
		return
	}

	members := as.lobby.Members()
	players := make([]LobbyPlayer, 0, len(members))
	for _, m := range members {
		players = append(players, LobbyPlayer{
			ID:       m.ID,
			Addr:     m.Addr.String(),
			InOcean:  m.Record.Used,
			Boat:     m.Record.Boat,
			X:        m.Record.Position.X,
			Y:        m.Record.Position.Y,
			LastSeen: m.LastSeen,
		})
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние лобби",
		Data: map[string]interface{}{
			"players":  players,
			"total":    len(players),
			"capacity": as.lobby.Capacity(),
		},
	})
}

// handlePlayer последний снимок игрока по адресу
func (as *AdminServer) handlePlayer(c *gin.Context) {
	if as.repo == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Хранилище не подключено"})
		return
	}

	addr := c.Param("addr")
	snap, found, err := as.repo.Load(c.Request.Context(), addr)
	if errors.Is(err, storage.ErrInvalidAddr) {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
		return
	}
	if err != nil {
		logging.Error("Ошибка чтения снимка %s: %v", addr, err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка хранилища"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Игрок не найден"})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Снимок игрока", Data: snap})
}

// Run обслуживает HTTP до отмены контекста, затем плавно останавливается
func (as *AdminServer) Run(ctx context.Context) error {
	as.http = &http.Server{Addr: as.addr, Handler: as.router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("🌐 Admin API доступен по адресу %s", as.addr)
		if err := as.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("admin api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return as.http.Shutdown(shutdownCtx)
}
