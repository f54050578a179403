package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics Prometheus-метрики симуляции. Нулевой указатель допустим: тогда метрики не собираются.
type Metrics struct {
	tickDuration prometheus.Histogram
	entities     prometheus.Gauge
	hits         *prometheus.CounterVec
	kills        *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil: без регистрации)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seafarer",
			Subsystem: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seafarer",
			Subsystem: "sim",
			Name:      "entities",
			Help:      "Количество сущностей в реестре.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seafarer",
			Subsystem: "sim",
			Name:      "hits_total",
			Help:      "Зарегистрированные попадания по классу источника.",
		}, []string{"class"}),
		kills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seafarer",
			Subsystem: "sim",
			Name:      "kills_total",
			Help:      "Убитые враги по классу.",
		}, []string{"class"}),
	}
	if reg != nil {
		reg.MustRegister(m.tickDuration, m.entities, m.hits, m.kills)
	}
	return m
}

func (m *Metrics) observeTick(start time.Time, entities int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(time.Since(start).Seconds())
	m.entities.Set(float64(entities))
}

func (m *Metrics) hit(class string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(class).Inc()
}

func (m *Metrics) kill(class string) {
	if m == nil {
		return
	}
	m.kills.WithLabelValues(class).Inc()
}
