// Package observability provides Prometheus metrics for the journal pipeline.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "trade_journal"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion metrics
	StatementRowsRead     *prometheus.CounterVec
	StatementRowsInserted *prometheus.CounterVec
	StatementRowsSkipped  *prometheus.CounterVec

	// Matching metrics
	ExecutionsProcessed prometheus.Counter
	ExecutionsSkipped   *prometheus.CounterVec
	ClosedTrades        prometheus.Gauge
	OpenPositions       prometheus.Gauge

	// Grouping metrics
	Strategies *prometheus.GaugeVec
	Campaigns  prometheus.Gauge

	// Account metrics
	RealizedNetPnL prometheus.Gauge
	WinRate        prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal      *prometheus.CounterVec
	PipelineDuration       *prometheus.HistogramVec
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Ingestion metrics
		StatementRowsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_read_total",
			Help:      "Statement rows read by kind",
		}, []string{"kind"}),
		StatementRowsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_inserted_total",
			Help:      "Statement rows newly stored by kind",
		}, []string{"kind"}),
		StatementRowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_skipped_total",
			Help:      "Statement rows dropped by outcome",
		}, []string{"outcome"}),

		// Matching metrics
		ExecutionsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "executions_processed_total",
			Help:      "Total number of executions fed to the matcher",
		}),
		ExecutionsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "executions_skipped_total",
			Help:      "Executions rejected by the matcher by reason",
		}, []string{"reason"}),
		ClosedTrades: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "closed_trades",
			Help:      "Closed trades produced by the last analysis, cash flows included",
		}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "open_positions",
			Help:      "Open positions left by the last analysis",
		}),

		// Grouping metrics
		Strategies: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "grouping",
			Name:      "strategies",
			Help:      "Strategies found by the last analysis by type",
		}, []string{"type"}),
		Campaigns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "grouping",
			Name:      "campaigns",
			Help:      "Campaigns found by the last analysis",
		}),

		// Account metrics
		RealizedNetPnL: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "account",
			Name:      "realized_net_pnl",
			Help:      "Realized net P&L including dividend cash flows",
		}),
		WinRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "account",
			Name:      "win_rate",
			Help:      "Fraction of closed trades with positive net P&L",
		}),

		// Pipeline metrics
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"phase", "status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"phase"}),
		LastSuccessfulPipeline: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordImport records the outcome of one statement import.
func (m *Metrics) RecordImport(execRead, execInserted, cashRead, cashInserted, skipped, filtered int) {
	if m == nil {
		return
	}
	m.StatementRowsRead.WithLabelValues("execution").Add(float64(execRead))
	m.StatementRowsRead.WithLabelValues("cash").Add(float64(cashRead))
	m.StatementRowsInserted.WithLabelValues("execution").Add(float64(execInserted))
	m.StatementRowsInserted.WithLabelValues("cash").Add(float64(cashInserted))
	m.StatementRowsSkipped.WithLabelValues("invalid").Add(float64(skipped))
	m.StatementRowsSkipped.WithLabelValues("filtered").Add(float64(filtered))
}

// RecordMatch records matcher throughput and the resulting inventory.
func (m *Metrics) RecordMatch(processed int, skippedByReason map[string]int, closed, open int) {
	if m == nil {
		return
	}
	m.ExecutionsProcessed.Add(float64(processed))
	for reason, n := range skippedByReason {
		m.ExecutionsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	m.ClosedTrades.Set(float64(closed))
	m.OpenPositions.Set(float64(open))
}

// RecordGroupings replaces the strategy-by-type and campaign gauges.
func (m *Metrics) RecordGroupings(strategiesByType map[string]int, campaigns int) {
	if m == nil {
		return
	}
	m.Strategies.Reset()
	for typ, n := range strategiesByType {
		m.Strategies.WithLabelValues(typ).Set(float64(n))
	}
	m.Campaigns.Set(float64(campaigns))
}

// RecordPerformance sets the account gauges.
func (m *Metrics) RecordPerformance(netPnL, winRate float64) {
	if m == nil {
		return
	}
	m.RealizedNetPnL.Set(netPnL)
	m.WinRate.Set(winRate)
}

// RecordPipelineRun records a pipeline run.
func (m *Metrics) RecordPipelineRun(phase string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	m.PipelineDuration.WithLabelValues(phase).Observe(duration.Seconds())
	if err == nil {
		m.LastSuccessfulPipeline.SetToCurrentTime()
	}
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
