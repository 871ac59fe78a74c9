package feed

import (
	"context"

	"shipping_schedule/internal/storage"
)

// PostgresSink upserts every sailing into the sailings table.
type PostgresSink struct {
	DB *storage.PostgresDB
}

func (s PostgresSink) Name() string { return "postgres" }

func (s PostgresSink) Store(ctx context.Context, b *Batch) error {
	rows := make([]storage.Sailing, 0, len(b.Records))
	for _, r := range b.Records {
		code := r.PortCode
		if !r.Resolved {
			code = r.PortRaw
		}
		rows = append(rows, storage.Sailing{
			BatchID:     b.BatchID,
			Vessel:      r.Vessel,
			Voyage:      r.Voyage,
			ShipType:    r.ShipType,
			Carrier:     r.Carrier,
			SailingDate: r.SailingDate,
			PortRaw:     r.PortRaw,
			PortCode:    code,
			PortDisplay: r.Port,
			Region:      r.Region,
			Capacity:    int64(r.Capacity),
		})
	}
	return s.DB.UpsertSailings(ctx, rows)
}

// ClickHouseSink appends every sailing of a batch to sailing_batches.
type ClickHouseSink struct {
	DB *storage.ClickHouseDB
}

func (s ClickHouseSink) Name() string { return "clickhouse" }

func (s ClickHouseSink) Store(ctx context.Context, b *Batch) error {
	rows := make([]storage.CHSailing, 0, len(b.Records))
	for _, r := range b.Records {
		rows = append(rows, storage.CHSailing{
			BatchID:     b.BatchID,
			Source:      b.Source,
			ReceivedAt:  b.ReceivedAt,
			Vessel:      r.Vessel,
			Voyage:      r.Voyage,
			ShipType:    r.ShipType,
			Carrier:     r.Carrier,
			SailingDate: r.SailingDate,
			PortRaw:     r.PortRaw,
			PortCode:    r.PortCode,
			Region:      r.Region,
			Capacity:    int64(r.Capacity),
			Resolved:    r.Resolved,
		})
	}
	return s.DB.InsertSailingBatch(ctx, rows)
}

// ReportSink counts the unresolved spellings of a batch in the SQLite
// report.
type ReportSink struct {
	DB *storage.ReportDB
}

func (s ReportSink) Name() string { return "report" }

func (s ReportSink) Store(ctx context.Context, b *Batch) error {
	if len(b.Unresolved) == 0 {
		return nil
	}
	return s.DB.RecordAll(b.Unresolved, b.Source, b.ReceivedAt)
}
