package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/metrics"
	"shipping_schedule/internal/resolver"
	"shipping_schedule/internal/schedule"
)

// Batch outcomes reported to metrics.
const (
	OutcomeOK        = "ok"
	OutcomeDecode    = "decode_error"
	OutcomeSinkError = "sink_error"
)

// Sink receives every normalised batch.
type Sink interface {
	Name() string
	Store(ctx context.Context, b *Batch) error
}

// Processor turns raw batches into normalised ones.
type Processor struct {
	res     *resolver.Resolver
	dedup   *dedup.Deduplicator
	sinks   []Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithSinks adds sinks, called in order for every batch.
func WithSinks(sinks ...Sink) Option {
	return func(p *Processor) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithMetrics records batch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the receive timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor creates a processor that resolves with res and deduplicates
// with d.
func NewProcessor(res *resolver.Resolver, d *dedup.Deduplicator, opts ...Option) *Processor {
	p := &Processor{
		res:    res,
		dedup:  d,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessRaw decodes and normalises one payload.
func (p *Processor) ProcessRaw(ctx context.Context, data []byte) (*Batch, error) {
	start := p.now()
	raw, err := DecodeRawBatch(data)
	if err != nil {
		p.metrics.ObserveBatch("unknown", OutcomeDecode, 0, p.now().Sub(start))
		return nil, err
	}
	return p.Process(ctx, raw)
}

// Process normalises a decoded batch and hands it to the sinks. The batch is
// returned even when a sink fails; the error joins every sink failure.
func (p *Processor) Process(ctx context.Context, raw *RawBatch) (*Batch, error) {
	start := p.now()

	records := make([]schedule.SailingRecord, 0, len(raw.Records))
	for _, row := range raw.Records {
		records = append(records, schedule.FromMap(row))
	}
	return p.ProcessRecords(ctx, raw.BatchID, raw.Source, records, start)
}

// ProcessRecords normalises already typed records.
func (p *Processor) ProcessRecords(ctx context.Context, batchID, source string, records []schedule.SailingRecord, start time.Time) (*Batch, error) {
	if strings.TrimSpace(batchID) == "" {
		batchID = uuid.NewString()
	}
	if strings.TrimSpace(source) == "" {
		source = "unknown"
	}

	kept, stats := p.dedup.DedupeWithStats(records)

	b := &Batch{
		BatchID:    batchID,
		Source:     source,
		ReceivedAt: start.UTC(),
		Records:    make([]Sailing, 0, len(kept)),
		Stats:      stats,
	}

	seen := make(map[string]struct{})
	for _, r := range kept {
		s := p.normalise(r)
		if !s.Resolved && s.PortRaw != "" {
			if _, dup := seen[s.PortRaw]; !dup {
				seen[s.PortRaw] = struct{}{}
				b.Unresolved = append(b.Unresolved, s.PortRaw)
			}
		}
		b.Records = append(b.Records, s)
	}

	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Store(ctx, b); err != nil {
			p.logger.Error("sink failed", "sink", sink.Name(), "batch_id", b.BatchID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}

	outcome := OutcomeOK
	if len(errs) > 0 {
		outcome = OutcomeSinkError
	}
	p.metrics.ObserveBatch(source, outcome, len(records), p.now().Sub(start))
	p.logger.Info("batch processed",
		"batch_id", b.BatchID,
		"source", source,
		"input", stats.Input,
		"kept", stats.Kept,
		"unresolved", len(b.Unresolved),
	)
	return b, errors.Join(errs...)
}

func (p *Processor) normalise(r schedule.SailingRecord) Sailing {
	raw := strings.TrimSpace(r.Port)
	s := Sailing{SailingRecord: r, PortRaw: raw}
	s.SailingDate = schedule.NormaliseDate(r.SailingDate)
	s.Vessel, s.Voyage = r.VesselAndVoyage()

	if id, ok := p.res.Identify(raw); ok {
		s.Port = id.Display()
		s.PortCode = id.Code
		s.Region = id.Region
		s.Resolved = true
	}
	return s
}
