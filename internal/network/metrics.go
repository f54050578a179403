package network

import "github.com/prometheus/client_golang/prometheus"

// Metrics сетевые метрики сервера и клиента. Нулевой указатель допустим:
// все методы тогда ничего не делают.
type Metrics struct {
	received *prometheus.CounterVec
	sent     *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	lobby    prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil: без регистрации)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seafarer",
			Subsystem: "net",
			Name:      "datagrams_received_total",
			Help:      "Принятые датаграммы по типу сообщения",
		}, []string{"message"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seafarer",
			Subsystem: "net",
			Name:      "datagrams_sent_total",
			Help:      "Отправленные датаграммы по типу сообщения",
		}, []string{"message"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seafarer",
			Subsystem: "net",
			Name:      "datagrams_dropped_total",
			Help:      "Отброшенные датаграммы по причине",
		}, []string{"reason"}),
		lobby: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seafarer",
			Subsystem: "net",
			Name:      "lobby_players",
			Help:      "Занятые места в лобби",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.received, m.sent, m.dropped, m.lobby)
	}
	return m
}

// Причины отбрасывания датаграмм
const (
	dropMalformed  = "malformed"
	dropUnknown    = "unknown_message"
	dropUnexpected = "unexpected_message"
	dropStranger   = "unknown_peer"
	dropStale      = "stale"
	dropRateLimit  = "rate_limited"
	dropInboxFull  = "inbox_full"
)

func (m *Metrics) receivedMsg(tag string) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(tag).Inc()
}

func (m *Metrics) sentMsg(tag string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(tag).Inc()
}

func (m *Metrics) drop(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) lobbySize(n int) {
	if m == nil {
		return
	}
	m.lobby.Set(float64(n))
}
