// Package storage provides persistence for the alias table, deduplicated
// sailings, batch analytics and the unresolved-port report.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for normalised batch analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sailing_batches (
			batch_id        String,
			source          LowCardinality(String),
			received_at     DateTime64(3),
			vessel          String,
			voyage          String,
			ship_type       LowCardinality(String),
			carrier         LowCardinality(String),
			sailing_date    String,
			port_raw        String,
			port_code       LowCardinality(String),
			region          LowCardinality(String),
			capacity        Int64,
			resolved        UInt8
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(received_at)
		ORDER BY (region, port_code, received_at, batch_id)
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// CHSailing is one normalised sailing row of a batch.
type CHSailing struct {
	BatchID     string
	Source      string
	ReceivedAt  time.Time
	Vessel      string
	Voyage      string
	ShipType    string
	Carrier     string
	SailingDate string
	PortRaw     string
	PortCode    string
	Region      string
	Capacity    int64
	Resolved    bool
}

// InsertSailingBatch stores the rows of one batch.
func (d *ClickHouseDB) InsertSailingBatch(ctx context.Context, rows []CHSailing) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO sailing_batches (batch_id, source, received_at, vessel, voyage, ship_type, carrier,
			sailing_date, port_raw, port_code, region, capacity, resolved)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		var resolved uint8
		if r.Resolved {
			resolved = 1
		}
		err := batch.Append(r.BatchID, r.Source, r.ReceivedAt, r.Vessel, r.Voyage, r.ShipType, r.Carrier,
			r.SailingDate, r.PortRaw, r.PortCode, r.Region, r.Capacity, resolved)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountByRegion returns stored sailing counts grouped by region. Rows with
// no region are counted under the empty string.
func (d *ClickHouseDB) CountByRegion(ctx context.Context) (map[string]uint64, error) {
	counts := make(map[string]uint64)
	rows, err := d.conn.Query(ctx, "SELECT region, count() FROM sailing_batches GROUP BY region")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var region string
		var count uint64
		if err := rows.Scan(&region, &count); err != nil {
			return nil, fmt.Errorf("scan region count: %w", err)
		}
		counts[region] = count
	}
	return counts, rows.Err()
}

// PortCount is a port spelling with its occurrence count.
type PortCount struct {
	Port  string
	Count uint64
}

// TopUnresolved returns the most frequent unresolved port spellings, filtered
// to those received from source when source is not empty.
func (d *ClickHouseDB) TopUnresolved(ctx context.Context, source string, limit int) ([]PortCount, error) {
	conditions := []string{"resolved = 0"}
	var args []any
	if source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, source)
	}
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT port_raw, count() AS n FROM sailing_batches WHERE %s
		GROUP BY port_raw ORDER BY n DESC, port_raw LIMIT %d`, strings.Join(conditions, " AND "), limit)

	rows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unresolved: %w", err)
	}
	defer rows.Close()

	var out []PortCount
	for rows.Next() {
		var pc PortCount
		if err := rows.Scan(&pc.Port, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
