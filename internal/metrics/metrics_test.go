package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counts(t *testing.T) {
	t.Parallel()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Request("GET", 200)
	m.Request("GET", 200)
	m.Request("POST", 0)
	m.Refresh("ok")
	m.Discarded("clients")

	require.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "0")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Stale.WithLabelValues("clients")))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.Request("GET", 200)
	m.Refresh("ok")
	m.Discarded("x")
}

func TestMetrics_DoubleRegister(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}
