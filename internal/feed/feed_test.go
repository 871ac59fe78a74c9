package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/metrics"
	"shipping_schedule/internal/resolver"
)

const rawPayload = `{
  "batch_id": "b-1",
  "source": "carrier-sheet",
  "records": [
    {"船名航次": "ANNA/001E", "船公司": "MSC", "开航日期": "2024/3/5", "港口": "长滩", "舱位": "40"},
    {"vessel_voyage": "ANNA 001E", "carrier": "MSC", "sailing_date": "2024-03-05", "port": "LONG BEACH, CA"},
    {"vessel": "ANNA", "voyage": "002E", "carrier": "MSC", "sailing_date": "2024-03-05", "port": "USLGB"},
    {"vessel": "BRAVO", "carrier": "COSCO", "sailing_date": "2024-03-06", "port": "ATLANTIS"},
    {"vessel": "CHARLIE", "carrier": "COSCO", "sailing_date": "2024-03-06", "port": "ATLANTIS"}
  ]
}`

type recordingSink struct {
	name    string
	batches []*Batch
	err     error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Store(ctx context.Context, b *Batch) error {
	s.batches = append(s.batches, b)
	return s.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	loader := catalog.NewLoader(catalog.DefaultSource())
	require.False(t, loader.Load(context.Background()).Degraded())
	res := resolver.New(loader)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	opts = append(opts, WithLogger(newTestLogger()))
	return NewProcessor(res, dedup.New(res), opts...)
}

func TestProcessRaw(t *testing.T) {
	sink := &recordingSink{name: "mem"}
	p := newProcessor(t, WithSinks(sink))

	b, err := p.ProcessRaw(context.Background(), []byte(rawPayload))
	require.NoError(t, err)

	assert.Equal(t, "b-1", b.BatchID)
	assert.Equal(t, "carrier-sheet", b.Source)
	assert.Equal(t, dedup.Stats{Input: 5, Kept: 3, ExactDups: 1, NearDups: 1}, b.Stats)
	assert.Equal(t, []string{"ATLANTIS"}, b.Unresolved)
	require.Len(t, b.Records, 3)

	first := b.Records[0]
	assert.Equal(t, "[Long Beach|USLGB|美西]", first.Port)
	assert.Equal(t, "长滩", first.PortRaw)
	assert.Equal(t, "USLGB", first.PortCode)
	assert.Equal(t, "美西", first.Region)
	assert.True(t, first.Resolved)
	assert.Equal(t, "2024-03-05", first.SailingDate)
	assert.Equal(t, "ANNA", first.Vessel)
	assert.Equal(t, "001E", first.Voyage)
	assert.EqualValues(t, 40, first.Capacity)

	unresolved := b.Records[1]
	assert.Equal(t, "ATLANTIS", unresolved.Port)
	assert.False(t, unresolved.Resolved)
	assert.Empty(t, unresolved.PortCode)

	require.Len(t, sink.batches, 1)
	assert.Same(t, b, sink.batches[0])
}

func TestProcess_AssignsBatchID(t *testing.T) {
	p := newProcessor(t)
	b, err := p.Process(context.Background(), &RawBatch{})
	require.NoError(t, err)
	assert.NotEmpty(t, b.BatchID)
	assert.Equal(t, "unknown", b.Source)
	assert.Empty(t, b.Records)
}

func TestProcess_SinkErrors(t *testing.T) {
	bad := &recordingSink{name: "bad", err: errors.New("down")}
	good := &recordingSink{name: "good"}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := newProcessor(t, WithSinks(bad, good), WithMetrics(m))

	b, err := p.ProcessRaw(context.Background(), []byte(rawPayload))
	require.Error(t, err)
	require.NotNil(t, b, "the batch survives a sink failure")
	assert.Contains(t, err.Error(), "bad")
	assert.Len(t, good.batches, 1, "later sinks still run")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Batches.WithLabelValues("carrier-sheet", OutcomeSinkError)))
}

func TestProcessRaw_BadPayload(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := newProcessor(t, WithMetrics(m))

	b, err := p.ProcessRaw(context.Background(), []byte(`{"records": 7}`))
	require.Error(t, err)
	assert.Nil(t, b)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Batches.WithLabelValues("unknown", OutcomeDecode)))
}

func TestBridgeHandle(t *testing.T) {
	published := map[string][]byte{}
	b := &Bridge{
		subjects: Subjects{In: "schedule.raw", Out: "schedule.normalized"},
		proc:     newProcessor(t),
		logger:   newTestLogger(),
		publish: func(subject string, data []byte) error {
			published[subject] = data
			return nil
		},
	}

	b.handle(context.Background(), []byte(rawPayload), "_INBOX.1")

	require.Contains(t, published, "schedule.normalized")
	require.Contains(t, published, "_INBOX.1")

	var out Batch
	require.NoError(t, json.Unmarshal(published["schedule.normalized"], &out))
	assert.Equal(t, "b-1", out.BatchID)
	assert.Len(t, out.Records, 3)
	assert.Equal(t, "USLGB", out.Records[0].PortCode)
}

func TestBridgeHandle_DropsBadPayload(t *testing.T) {
	calls := 0
	b := &Bridge{
		subjects: Subjects{In: "schedule.raw", Out: "schedule.normalized"},
		proc:     newProcessor(t),
		logger:   newTestLogger(),
		publish: func(string, []byte) error {
			calls++
			return nil
		},
	}
	b.handle(context.Background(), []byte("not json"), "")
	assert.Zero(t, calls)
}
