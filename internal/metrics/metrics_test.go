package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	return m, reg
}

func TestObserveSortAndSearch(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.ObserveSort("bubble", 12, 6, time.Millisecond)
	m.ObserveSort("bubble", 4, 0, time.Millisecond)
	m.ObserveSearch("binary", 3, time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues(KindSort, "bubble")))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.comparisons.WithLabelValues(KindSort, "bubble")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.swaps.WithLabelValues("bubble")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.comparisons.WithLabelValues(KindSearch, "binary")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.runDuration))
}

func TestCollectionAndImport(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.SetCollectionSize(5)
	m.ObserveImport(3, 1)
	m.ObserveStep("compare")
	m.ObserveStep("compare")

	assert.Equal(t, 5.0, testutil.ToFloat64(m.collectionSize))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.importItems.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importItems.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.visualSteps.WithLabelValues("compare")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSort("merge", 1, 0, 0)
		m.ObserveSearch("linear", 1, 0)
		m.ObserveStep("swap")
		m.SetCollectionSize(1)
		m.ObserveImport(1, 0)
	})
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.SetCollectionSize(7)

	path := filepath.Join(t.TempDir(), "student_records.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "student_records_collection_records 7"))
}
