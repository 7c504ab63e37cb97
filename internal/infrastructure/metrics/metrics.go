// Package metrics expone la actividad del libro y de la API en formato Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var _ inventory.Metrics = (*Ledger)(nil)

// Ledger contadores del libro de inventario.
type Ledger struct {
	movements *prometheus.CounterVec
	quantity  *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewLedger registra las métricas del libro en reg.
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movements_total",
				Help: "Movimientos registrados en el libro por tipo",
			},
			[]string{"type"},
		),
		quantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movement_quantity_total",
				Help: "Cantidad absoluta movida por tipo de movimiento",
			},
			[]string{"type"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operation_failures_total",
				Help: "Operaciones del libro que terminaron en error",
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.movements, m.quantity, m.failures)
	return m
}

// MovementRecorded cuenta un movimiento y su cantidad absoluta.
func (m *Ledger) MovementRecorded(kind string, quantity decimal.Decimal) {
	m.movements.WithLabelValues(kind).Inc()
	m.quantity.WithLabelValues(kind).Add(quantity.Abs().InexactFloat64())
}

// OperationFailed cuenta una operación fallida.
func (m *Ledger) OperationFailed(operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

// HTTP métricas de peticiones de la API.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registra las métricas HTTP en reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	h := &HTTP{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Peticiones HTTP atendidas",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(h.requests, h.latency)
	return h
}

// Middleware mide cada petición usando la ruta registrada (no la URL) como etiqueta.
func (h *HTTP) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		h.latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		h.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}
