package metrics

import (
	"net/http"
	"time"

	"github.com/Dosada05/team-manager/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the prometheus collectors of the API and the worker.
type Collector struct {
	registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	draftWrites  *prometheus.CounterVec
	jobsEnqueued *prometheus.CounterVec
	jobsDone     *prometheus.CounterVec
	jobLatency   *prometheus.HistogramVec
}

// NewCollector registers all collectors on a fresh registry, so several
// collectors can live in one process (tests do this).
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_status_transitions_total",
			Help: "Total number of game status transitions",
		}, []string{"from", "to"}),
		draftWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_draft_writes_total",
			Help: "Total number of accepted draft autosaves",
		}, []string{"slot"}),
		jobsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of jobs enqueued",
		}, []string{"job_type"}),
		jobsDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of jobs processed by the worker",
		}, []string{"job_type", "status"}),
		jobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_processing_seconds",
			Help:    "Job processing latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_type"}),
	}

	c.registry.MustRegister(
		c.transitions,
		c.draftWrites,
		c.jobsEnqueued,
		c.jobsDone,
		c.jobLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) RecordTransition(from, to models.GameStatus) {
	c.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (c *Collector) RecordDraftWrite(slot models.DraftKind) {
	c.draftWrites.WithLabelValues(string(slot)).Inc()
}

func (c *Collector) RecordJobEnqueued(jobType string) {
	c.jobsEnqueued.WithLabelValues(jobType).Inc()
}

func (c *Collector) RecordJobProcessed(jobType string, status models.JobStatus, took time.Duration) {
	c.jobsDone.WithLabelValues(jobType, string(status)).Inc()
	c.jobLatency.WithLabelValues(jobType).Observe(took.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
