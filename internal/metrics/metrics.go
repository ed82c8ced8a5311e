// Package metrics exposes the Prometheus collectors for checkout.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	sessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tablesplit",
			Subsystem: "checkout",
			Name:      "open_sessions",
			Help:      "Split sessions currently held in memory.",
		},
	)

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablesplit",
			Subsystem: "checkout",
			Name:      "settlements_total",
			Help:      "Guest payments confirmed.",
		},
		[]string{"method", "mode"},
	)

	settlementAmount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tablesplit",
			Subsystem: "checkout",
			Name:      "settlement_amount",
			Help:      "Amount captured per guest payment.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8), // 5 to 640
		},
		[]string{"method"},
	)

	ledgerWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablesplit",
			Subsystem: "ledger",
			Name:      "writes_total",
			Help:      "Settlement ledger writes by outcome.",
		},
		[]string{"outcome"},
	)

	ledgerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tablesplit",
			Subsystem: "ledger",
			Name:      "queue_depth",
			Help:      "Settlements waiting to be written.",
		},
	)

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablesplit",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC calls by procedure and result code.",
		},
		[]string{"procedure", "code"},
	)
)

func init() {
	Registry.MustRegister(
		sessionsOpen,
		settlements,
		settlementAmount,
		ledgerWrites,
		ledgerQueueDepth,
		rpcRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SessionOpened records a new split session.
func SessionOpened() { sessionsOpen.Inc() }

// SessionClosed records a discarded split session.
func SessionClosed() { sessionsOpen.Dec() }

// RecordSettlement records one confirmed guest payment.
func RecordSettlement(method, mode string, amount float64) {
	settlements.WithLabelValues(method, mode).Inc()
	settlementAmount.WithLabelValues(method).Observe(amount)
}

// RecordLedgerWrite records a ledger write outcome ("ok" or "error").
func RecordLedgerWrite(outcome string) {
	ledgerWrites.WithLabelValues(outcome).Inc()
}

// SetLedgerQueueDepth reports how many settlements are waiting.
func SetLedgerQueueDepth(n int) {
	ledgerQueueDepth.Set(float64(n))
}

// RecordRPC records one RPC call.
func RecordRPC(procedure, code string) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
}
