package inventory

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Observe(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	status := &Status{
		Name:          "mysql",
		Namespace:     "mysql",
		Found:         true,
		Desired:       3,
		ReadyReplicas: 2,
		Pods: []PodStatus{
			{Name: "mysql-0", Role: RolePrimary, Ready: true},
			{Name: "mysql-1", Role: RoleReplica, Ready: true},
			{Name: "mysql-2", Role: RoleReplica, Ready: false},
		},
		Claims: []ClaimStatus{
			{Name: "data-mysql-0", Phase: "Bound"},
			{Name: "data-mysql-1", Phase: "Bound"},
			{Name: "data-mysql-2", Phase: "Pending"},
			{Name: "data-mysql-3", Phase: "Bound", Orphaned: true},
		},
		Orphans: []string{"data-mysql-3"},
	}
	r.Observe(status)

	assert.InDelta(t, 3, testutil.ToFloat64(r.replicasDesired.WithLabelValues("mysql", "mysql")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.replicasReady.WithLabelValues("mysql", "mysql")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(r.claimsBound.WithLabelValues("mysql", "mysql")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.claimsOrphaned.WithLabelValues("mysql", "mysql")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.podReady.WithLabelValues("mysql", "mysql", "mysql-0", "primary")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.podReady.WithLabelValues("mysql", "mysql", "mysql-2", "replica")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(r.podReady))

	// A scale-down drops the removed pod from the per-pod gauge.
	status.Pods = status.Pods[:2]
	r.Observe(status)
	assert.Equal(t, 2, testutil.CollectAndCount(r.podReady))
}
