package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels used on rejection counters.
const (
	OperationSignup     = "signup"
	OperationUnregister = "unregister"
)

var (
	signupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "registry",
		Name:      "signups_total",
		Help:      "Number of successful activity signups, labeled by activity.",
	}, []string{"activity"})

	unregisterCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "registry",
		Name:      "unregistrations_total",
		Help:      "Number of successful unregistrations, labeled by activity.",
	}, []string{"activity"})

	rejectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "registry",
		Name:      "rejections_total",
		Help:      "Number of signup or unregister requests rejected, labeled by operation and reason.",
	}, []string{"operation", "reason"})

	rosterChangeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mergington",
		Subsystem: "registry",
		Name:      "last_roster_change_timestamp_seconds",
		Help:      "Unix timestamp of the most recent roster change.",
	})

	notifyFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "notify",
		Name:      "failures_total",
		Help:      "Number of roster notifications that failed, labeled by sink.",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(signupCounter, unregisterCounter, rejectionCounter, rosterChangeGauge, notifyFailureCounter)
}

// RecordSignup counts a signup and moves the roster change watermark.
func RecordSignup(activity string, ts time.Time) {
	signupCounter.WithLabelValues(activity).Inc()
	recordRosterChange(ts)
}

// RecordUnregistration counts an unregistration and moves the roster change watermark.
func RecordUnregistration(activity string, ts time.Time) {
	unregisterCounter.WithLabelValues(activity).Inc()
	recordRosterChange(ts)
}

// RecordRejection counts a rejected request.
func RecordRejection(operation, reason string) {
	rejectionCounter.WithLabelValues(operation, reason).Inc()
}

// RecordNotifyFailure counts a failed delivery to sink.
func RecordNotifyFailure(sink string) {
	notifyFailureCounter.WithLabelValues(sink).Inc()
}

func recordRosterChange(ts time.Time) {
	if ts.IsZero() {
		return
	}
	rosterChangeGauge.Set(float64(ts.Unix()))
}
