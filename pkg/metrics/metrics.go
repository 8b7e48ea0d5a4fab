package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Administrative command metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hadoopctl_commands_total",
			Help: "Total number of administrative commands by tool and result",
		},
		[]string{"tool", "result"},
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hadoopctl_command_duration_seconds",
			Help:    "Administrative command duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Readiness wait metrics
	WaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hadoopctl_wait_duration_seconds",
			Help:    "Time spent in readiness polling loops in seconds",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"target"},
	)

	WaitTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hadoopctl_wait_timeouts_total",
			Help: "Total number of readiness waits that hit their deadline",
		},
		[]string{"target"},
	)

	// Config editor metrics
	ConfigEdits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hadoopctl_config_edits_total",
			Help: "Total number of configuration file rewrites by format",
		},
		[]string{"format"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(WaitDuration)
	prometheus.MustRegister(WaitTimeouts)
	prometheus.MustRegister(ConfigEdits)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
