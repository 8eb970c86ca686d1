package planner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records generation outcomes in Prometheus collectors.
type Metrics struct {
	created  prometheus.Counter
	users    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the planner collectors on reg, or the default
// registerer when reg is nil. Collectors that are already registered are
// reused, so several planners may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_windows_created_total",
		Help: "Total number of travel windows persisted",
	})
	users := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_window_users_total",
		Help: "Users handled by generation runs, by outcome",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_window_run_seconds",
		Help:    "Wall time of a full generation run",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(created); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		created = are.ExistingCollector.(prometheus.Counter)
	}
	if err := reg.Register(users); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		users = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(duration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		duration = are.ExistingCollector.(prometheus.Histogram)
	}

	return &Metrics{created: created, users: users, duration: duration}, nil
}

func (m *Metrics) recordUser(res UserResult) {
	if m == nil {
		return
	}
	m.users.WithLabelValues(string(res.Outcome)).Inc()
	m.created.Add(float64(len(res.Created)))
}

func (m *Metrics) recordRun(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
