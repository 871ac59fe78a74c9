// Package dedup collapses shipping-schedule rows that describe the same
// sailing, keyed on the canonical port identity.
package dedup

import (
	"log/slog"
	"strings"

	"shipping_schedule/internal/schedule"
)

// Drop reasons.
const (
	ReasonExact = "exact"
	ReasonNear  = "near"
)

// Resolver maps raw port text to a canonical code, or returns it unchanged.
type Resolver interface {
	Resolve(text string) string
}

// Observer is notified of every dropped record.
type Observer interface {
	ObserveDrop(reason string)
}

// Stats summarises one Dedupe call.
type Stats struct {
	Input     int `json:"input"`
	Kept      int `json:"kept"`
	ExactDups int `json:"exact_duplicates"`
	NearDups  int `json:"near_duplicates"`
}

// Deduplicator drops repeated sailings.
type Deduplicator struct {
	res      Resolver
	observer Observer
	logger   *slog.Logger
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithLogger sets the logger for dropped records (debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduplicator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver attaches a drop observer.
func WithObserver(o Observer) Option {
	return func(d *Deduplicator) {
		d.observer = o
	}
}

// New creates a deduplicator. A nil resolver compares ports as written.
func New(res Resolver, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		res:    res,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Keys are the two duplicate granularities of a record.
type Keys struct {
	Exact string // date, port, vessel, ship type, carrier, voyage
	Near  string // the same without voyage
}

const keySep = "\x1f"

// KeysOf computes a record's keys. Missing fields simply leave their slot
// empty, so a sparse row still matches its exact repeats.
func (d *Deduplicator) KeysOf(r schedule.SailingRecord) Keys {
	vessel, voyage := r.VesselAndVoyage()
	port := strings.TrimSpace(r.Port)
	if d.res != nil {
		port = d.res.Resolve(port)
	}
	near := strings.Join([]string{
		schedule.NormaliseDate(r.SailingDate),
		port,
		keyField(vessel),
		keyField(r.ShipType),
		keyField(r.Carrier),
	}, keySep)
	return Keys{
		Exact: near + keySep + keyField(voyage),
		Near:  near,
	}
}

func keyField(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Dedupe keeps the first record of every sailing, in input order. A record
// is dropped when its exact or near key has been seen: the same carrier
// listing the same vessel, date, port and type under another voyage number
// is a duplicate entry, while another carrier sharing the slot is kept.
func (d *Deduplicator) Dedupe(records []schedule.SailingRecord) []schedule.SailingRecord {
	out, _ := d.DedupeWithStats(records)
	return out
}

// DedupeWithStats is Dedupe plus counts of what was dropped and why.
func (d *Deduplicator) DedupeWithStats(records []schedule.SailingRecord) ([]schedule.SailingRecord, Stats) {
	stats := Stats{Input: len(records)}
	out := make([]schedule.SailingRecord, 0, len(records))
	seenExact := make(map[string]struct{}, len(records))
	seenNear := make(map[string]struct{}, len(records))

	for i, r := range records {
		k := d.KeysOf(r)

		reason := ""
		if _, ok := seenExact[k.Exact]; ok {
			reason = ReasonExact
			stats.ExactDups++
		} else if _, ok := seenNear[k.Near]; ok {
			reason = ReasonNear
			stats.NearDups++
		}
		if reason != "" {
			if d.observer != nil {
				d.observer.ObserveDrop(reason)
			}
			d.logger.Debug("sailing dropped", "row", i, "reason", reason,
				"vessel", r.Vessel, "carrier", r.Carrier, "port", r.Port, "date", r.SailingDate)
			continue
		}

		seenExact[k.Exact] = struct{}{}
		seenNear[k.Near] = struct{}{}
		out = append(out, r)
	}
	stats.Kept = len(out)
	return out, stats
}
