package obs

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeFailed          = "failed"
)

type Metrics struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	gatherer           prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry()
// in tests so registrations do not collide.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "module_tasks_generations_total",
				Help: "Module task generations by outcome.",
			},
			[]string{"outcome"},
		),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "module_tasks_generation_duration_seconds",
			Help:    "Latency of module task generations in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		gatherer: reg,
	}

	reg.MustRegister(m.generationsTotal, m.generationDuration, m.httpRequestsTotal, m.httpDuration)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Filter records request count and latency per route template.
func (m *Metrics) Filter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)

	path := req.SelectedRoutePath()
	if path == "" {
		path = req.Request.URL.Path
	}
	status := strconv.Itoa(resp.StatusCode())

	m.httpDuration.WithLabelValues(req.Request.Method, path, status).Observe(time.Since(start).Seconds())
	m.httpRequestsTotal.WithLabelValues(req.Request.Method, path, status).Inc()
}

// InstrumentedGenerator counts outcomes of the wrapped generator.
type InstrumentedGenerator struct {
	next    tasks.ModuleTaskGenerator
	metrics *Metrics
}

func NewInstrumentedGenerator(next tasks.ModuleTaskGenerator, metrics *Metrics) *InstrumentedGenerator {
	return &InstrumentedGenerator{next: next, metrics: metrics}
}

func (g *InstrumentedGenerator) Generate(ctx context.Context, input models.GenerateModuleTasksInput) (models.GenerateModuleTasksOutput, error) {
	start := time.Now()
	out, err := g.next.Generate(ctx, input)

	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, tasks.ErrValidation):
		outcome = OutcomeValidationError
	case err != nil:
		outcome = OutcomeFailed
	}

	// Rejected input never reaches the model, so it stays out of the latency histogram.
	if outcome != OutcomeValidationError {
		g.metrics.generationDuration.Observe(time.Since(start).Seconds())
	}
	g.metrics.generationsTotal.WithLabelValues(outcome).Inc()

	return out, err
}
