package emergency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emergency_alerts_created_total",
			Help: "Total number of emergency alerts created",
		},
		[]string{"alert_type", "severity"},
	)

	alertsAutoDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emergency_alerts_auto_detected_total",
			Help: "Total number of alerts created by automatic detection",
		},
	)

	alertsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emergency_alerts_resolved_total",
			Help: "Total number of alerts resolved, by who resolved them",
		},
		[]string{"resolved_by"},
	)

	alertsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emergency_alerts_expired_total",
			Help: "Total number of alerts deactivated by expiry cleanup",
		},
	)

	broadcastReach = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emergency_broadcast_recipients",
			Help:    "Estimated recipients per alert broadcast",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)
)
