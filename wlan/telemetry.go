package wlan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromTelemetry is a Telemetry implementation exposing three of the
// four events as Prometheus metrics (two counters and one histogram);
// EvClearEstablishConnectionStartTime is not recorded.
// The abstract Telemetry interface is what the event loop depends on
// per external-interfaces boundary; this is merely one
// concrete adapter a deployment wires in.
type PromTelemetry struct {
	establishConnections prometheus.Counter
	roamingScans          prometheus.Counter
	stopApDuration        prometheus.Histogram
}

func NewPromTelemetry(reg prometheus.Registerer) *PromTelemetry {
	t := &PromTelemetry{
		establishConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wlan_establish_connection_total",
			Help: "Number of connection establishment attempts started.",
		}),
		roamingScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wlan_roaming_scan_total",
			Help: "Number of roaming scans triggered by a bad-connection score.",
		}),
		stopApDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wlan_ap_session_duration_seconds",
			Help:    "Duration an AP interface stayed enabled before being stopped.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(t.establishConnections, t.roamingScans, t.stopApDuration)
	}
	return t
}

func (t *PromTelemetry) Send(ev TelemetryEvent) {
	switch ev.Kind {
	case EvStartEstablishConnection:
		t.establishConnections.Inc()
	case EvRoamingScan:
		t.roamingScans.Inc()
	case EvStopAp:
		t.stopApDuration.Observe(ev.StopApDuration.Seconds())
	case EvClearEstablishConnectionStartTime:
		// no counter: marks the end of an in-progress timing window only.
	}
}

// NoopTelemetry discards every event; useful for tests and for
// callers that don't want Prometheus wired in.
type NoopTelemetry struct{}

func (NoopTelemetry) Send(TelemetryEvent) {}
