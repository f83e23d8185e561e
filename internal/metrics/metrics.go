package metrics

import "github.com/prometheus/client_golang/prometheus"

// AvailabilityMetrics exposes counters and histograms for slot scheduling.
type AvailabilityMetrics struct {
	mutations    *prometheus.CounterVec
	gridBuild    *prometheus.HistogramVec
	gridCache    *prometheus.CounterVec
	openSessions prometheus.Gauge
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthfirst",
			Subsystem: "availability",
			Name:      "slot_mutations_total",
			Help:      "Slot mutations by operation and result",
		}, []string{"operation", "result"}),
		gridBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthfirst",
			Subsystem: "availability",
			Name:      "grid_build_seconds",
			Help:      "Time spent building calendar grids",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"view"}),
		gridCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthfirst",
			Subsystem: "availability",
			Name:      "grid_cache_total",
			Help:      "Grid cache lookups by outcome",
		}, []string{"outcome"}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthfirst",
			Subsystem: "availability",
			Name:      "open_sessions",
			Help:      "Provider sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutations, m.gridBuild, m.gridCache, m.openSessions)
	return m
}

func (m *AvailabilityMetrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(operation, result).Inc()
}

func (m *AvailabilityMetrics) ObserveGridBuild(view string, seconds float64) {
	if m == nil {
		return
	}
	m.gridBuild.WithLabelValues(view).Observe(seconds)
}

func (m *AvailabilityMetrics) ObserveGridCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.gridCache.WithLabelValues(outcome).Inc()
}

func (m *AvailabilityMetrics) SetOpenSessions(n int) {
	if m == nil {
		return
	}
	m.openSessions.Set(float64(n))
}
