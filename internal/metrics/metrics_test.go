package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping_schedule/internal/catalog"
)

func TestObserveResolve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResolve("exact", true)
	m.ObserveResolve("exact", true)
	m.ObserveResolve("", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("none")))
}

func TestObserveDropAndBatch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDrop("near")
	m.ObserveBatch("nats", "ok", 12, 3*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupeDrops.WithLabelValues("near")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Batches.WithLabelValues("nats", "ok")))
}

func TestSetCatalog(t *testing.T) {
	m := New(prometheus.NewRegistry())

	records, _, err := catalog.ParseAsset(strings.NewReader(
		`BUSAN, [Busan|KRPUS|日韩], 釜山, "BUSAN(釜山)"` + "\n"))
	require.NoError(t, err)
	m.SetCatalog(catalog.Build(records, catalog.BuildOptions{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogPorts))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CatalogDegraded))
	assert.Greater(t, testutil.ToFloat64(m.CatalogAliases), 1.0)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolve("exact", true)
		m.ObserveDrop("exact")
		m.SetCatalog(nil)
		m.ObserveBatch("x", "ok", 1, time.Second)
	})
}
