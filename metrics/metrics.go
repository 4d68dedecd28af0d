// Package metrics регистрирует счётчики Prometheus для обработки строк чата.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// LinesParsed — строки по команде IRC.
	LinesParsed *prometheus.CounterVec
	// RecordsProduced — записи по типу (chat, roomstate, user).
	RecordsProduced *prometheus.CounterVec
	// LinesUnhandled — строки, которые не удалось разобрать.
	LinesUnhandled prometheus.Counter
	// RecordsFiltered — записи, отброшенные списком игнорирования.
	RecordsFiltered prometheus.Counter
	// RecordsDropped — записи, не влезшие в очередь батчера.
	RecordsDropped prometheus.Counter
	// BatchFlushes — флаши батчера.
	BatchFlushes prometheus.Counter
)

// Init регистрирует метрики (идемпотентно).
func Init() {
	once.Do(func() {
		LinesParsed = promauto.NewCounterVec(prometheus.CounterOpts{Name: "overlay_lines_parsed_total", Help: "Number of IRC lines parsed by command"}, []string{"command"})
		RecordsProduced = promauto.NewCounterVec(prometheus.CounterOpts{Name: "overlay_records_total", Help: "Number of overlay records produced by kind"}, []string{"kind"})
		LinesUnhandled = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_lines_unhandled_total", Help: "Number of IRC lines the parser could not handle"})
		RecordsFiltered = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_records_filtered_total", Help: "Number of user records dropped by the ignore list"})
		RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_records_dropped_total", Help: "Number of records dropped because the batch queue was full"})
		BatchFlushes = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_batch_flushes_total", Help: "Number of batch flushes to Postgres"})
	})
}

// ObserveLine учитывает разобранную строку.
func ObserveLine(command string) {
	if LinesParsed != nil {
		LinesParsed.WithLabelValues(command).Inc()
	}
}

// ObserveRecord учитывает выданную запись.
func ObserveRecord(kind string) {
	if RecordsProduced != nil {
		RecordsProduced.WithLabelValues(kind).Inc()
	}
}

// Inc увеличивает счётчик, если метрики инициализированы.
func Inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
