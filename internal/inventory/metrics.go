package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports Status snapshots as Prometheus gauges.
type Recorder struct {
	replicasDesired *prometheus.GaugeVec
	replicasReady   *prometheus.GaugeVec
	podReady        *prometheus.GaugeVec
	claimsBound     *prometheus.GaugeVec
	claimsOrphaned  *prometheus.GaugeVec
}

// NewRecorder creates the gauges and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	setLabels := []string{"namespace", "name"}

	r := &Recorder{
		replicasDesired: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mysqlset",
				Name:      "replicas_desired",
				Help:      "Desired number of MySQL replicas",
			},
			setLabels,
		),
		replicasReady: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mysqlset",
				Name:      "replicas_ready",
				Help:      "Number of ready MySQL replicas",
			},
			setLabels,
		),
		podReady: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mysqlset",
				Name:      "pod_ready",
				Help:      "Whether a MySQL pod is ready (1 = ready, 0 = not ready)",
			},
			[]string{"namespace", "name", "pod", "role"},
		),
		claimsBound: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mysqlset",
				Name:      "claims_bound",
				Help:      "Number of bound data volume claims",
			},
			setLabels,
		),
		claimsOrphaned: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mysqlset",
				Name:      "claims_orphaned",
				Help:      "Number of data volume claims above the desired replica count",
			},
			setLabels,
		),
	}

	reg.MustRegister(
		r.replicasDesired,
		r.replicasReady,
		r.podReady,
		r.claimsBound,
		r.claimsOrphaned,
	)
	return r
}

// Observe records a snapshot. Pods that disappeared since the previous
// snapshot are dropped from the per-pod gauge.
func (r *Recorder) Observe(s *Status) {
	set := prometheus.Labels{"namespace": s.Namespace, "name": s.Name}

	r.replicasDesired.With(set).Set(float64(s.Desired))
	r.replicasReady.With(set).Set(float64(s.ReadyReplicas))
	r.claimsBound.With(set).Set(float64(s.BoundClaims()))
	r.claimsOrphaned.With(set).Set(float64(len(s.Orphans)))

	r.podReady.DeletePartialMatch(set)
	for _, pod := range s.Pods {
		ready := 0.0
		if pod.Ready {
			ready = 1
		}
		r.podReady.WithLabelValues(s.Namespace, s.Name, pod.Name, string(pod.Role)).Set(ready)
	}
}
