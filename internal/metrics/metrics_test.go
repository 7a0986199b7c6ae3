package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveTx("attendance.create", "commit")
	m.ObserveTx("attendance.create", "commit")
	m.ObserveRequest("GET", "/api/members", "200", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transactions.WithLabelValues("attendance.create", "commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/members", "200")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveTx("x", "commit") })
}
