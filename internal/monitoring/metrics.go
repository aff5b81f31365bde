// Package monitoring exposes Prometheus metrics for the trading pipeline.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cycle metrics
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptopilot_cycles_total",
			Help: "Total number of trading cycles by outcome",
		},
		[]string{"outcome"},
	)

	validationAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cryptopilot_validation_attempts",
			Help:    "Distribution of validation passes per cycle",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"outcome"},
	)

	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptopilot_trades_total",
			Help: "Total number of trades executed",
		},
		[]string{"symbol", "action"},
	)

	triggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptopilot_triggers_total",
			Help: "Total number of forced exits by trigger kind",
		},
		[]string{"symbol", "kind"},
	)

	// Market metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptopilot_current_price",
			Help: "Last known price per symbol",
		},
		[]string{"symbol"},
	)

	technicalScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptopilot_technical_score",
			Help: "Composite technical score per symbol (0-10)",
		},
		[]string{"symbol"},
	)

	portfolioNetPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cryptopilot_portfolio_net_pnl",
			Help: "Unrealized portfolio P&L after fees",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptopilot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(validationAttempts)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(triggersTotal)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(technicalScore)
	prometheus.MustRegister(portfolioNetPnL)
	prometheus.MustRegister(errorsTotal)
}

// Handler returns the Prometheus metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCycle records a completed cycle with its validation pass count.
func RecordCycle(outcome string, attempts int) {
	cyclesTotal.WithLabelValues(outcome).Inc()
	validationAttempts.WithLabelValues(outcome).Observe(float64(attempts))
}

// RecordTrade records an executed trade.
func RecordTrade(symbol, action string) {
	tradesTotal.WithLabelValues(symbol, action).Inc()
}

// RecordTrigger records a forced exit.
func RecordTrigger(symbol, kind string) {
	triggersTotal.WithLabelValues(symbol, kind).Inc()
}

// UpdatePrice updates the last known price for a symbol.
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateTechnicalScore updates the composite score for a symbol.
func UpdateTechnicalScore(symbol string, score float64) {
	technicalScore.WithLabelValues(symbol).Set(score)
}

// UpdatePortfolioNetPnL updates the fee-adjusted unrealized P&L gauge.
func UpdatePortfolioNetPnL(pnl float64) {
	portfolioNetPnL.Set(pnl)
}

// RecordError records an error by type.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
