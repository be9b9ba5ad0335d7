package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the worker collectors.
type Metrics struct {
	runs      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	otpSent   *prometheus.CounterVec
	warmedSet prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job collectors. A nil registerer shares one set on the
// default Prometheus registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker times one job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts a tracker for job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the outcome and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, outcome).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// OTPSent counts a handed-off code by channel and purpose.
func (m *Metrics) OTPSent(channel, purpose string) {
	if m == nil {
		return
	}
	if channel == "" {
		channel = "unknown"
	}
	m.otpSent.WithLabelValues(channel, purpose).Inc()
}

// SubjectsWarmed records how many subjects the last cache rebuild resolved.
func (m *Metrics) SubjectsWarmed(n int) {
	if m == nil {
		return
	}
	m.warmedSet.Set(float64(n))
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wofr_jobs_total",
			Help: "Job executions by job name and outcome.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wofr_jobs_failures_total",
			Help: "Failed job executions.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wofr_job_duration_seconds",
			Help:    "Job execution time in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		otpSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wofr_otp_sent_total",
			Help: "One-time codes handed to a delivery channel.",
		}, []string{"channel", "purpose"}),
		warmedSet: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wofr_access_cache_warmed_subjects",
			Help: "Subjects resolved by the most recent capability cache rebuild.",
		}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.otpSent, m.warmedSet)
	return m
}
