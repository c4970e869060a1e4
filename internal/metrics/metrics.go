package metrics

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cascades = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_cascades_total",
		Help: "Cascades processed by outcome",
	}, []string{"status"})
	Anomalies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_anomalies_total",
		Help: "Anomalies found while building and prefixing cascades",
	}, []string{"kind"})
	Samples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_samples_total",
		Help: "Feature samples produced per prefix length",
	}, []string{"k", "sufficient"})
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_batch_duration_seconds",
		Help:    "Batch pipeline duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	CascadeEvents = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_events",
		Help:    "Deduplicated retweet events per cascade",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_command_runs_total",
		Help: "CLI command runs",
	}, []string{"cmd"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_command_errors_total",
		Help: "CLI command failures",
	}, []string{"cmd"})
)

func init() {
	prometheus.MustRegister(Cascades, Anomalies, Samples, BatchDuration, CascadeEvents, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveBatchDuration records a run duration
func ObserveBatchDuration(start time.Time) {
	BatchDuration.Observe(time.Since(start).Seconds())
}

func IncAnomaly(kind string, n int) { Anomalies.WithLabelValues(kind).Add(float64(n)) }

func IncSample(k int, sufficient bool) {
	Samples.WithLabelValues(strconv.Itoa(k), strconv.FormatBool(sufficient)).Inc()
}

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
