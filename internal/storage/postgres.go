package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shipping_schedule/internal/catalog"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool for the alias table and
// deduplicated sailings.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// Pool returns the underlying connection pool for direct queries.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	-- Reference data: the alias asset, one row per asset line
	CREATE TABLE IF NOT EXISTS port_aliases (
		position        INTEGER PRIMARY KEY,
		source_a        TEXT NOT NULL DEFAULT '',
		english_name    TEXT NOT NULL,
		code            TEXT NOT NULL,
		region          TEXT NOT NULL DEFAULT '',
		source_b        TEXT NOT NULL DEFAULT '',
		source_c        TEXT NOT NULL DEFAULT '',
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_port_aliases_code ON port_aliases(code);

	-- Deduplicated sailings
	CREATE TABLE IF NOT EXISTS sailings (
		id              BIGSERIAL PRIMARY KEY,
		batch_id        TEXT NOT NULL,
		vessel          TEXT NOT NULL,
		voyage          TEXT NOT NULL DEFAULT '',
		ship_type       TEXT NOT NULL DEFAULT '',
		carrier         TEXT NOT NULL DEFAULT '',
		sailing_date    TEXT NOT NULL,
		port_raw        TEXT NOT NULL,
		port_code       TEXT NOT NULL,
		port_display    TEXT NOT NULL,
		region          TEXT NOT NULL DEFAULT '',
		capacity        BIGINT NOT NULL DEFAULT 0,
		first_seen      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(sailing_date, port_code, vessel, ship_type, carrier, voyage)
	);

	CREATE INDEX IF NOT EXISTS idx_sailings_date ON sailings(sailing_date);
	CREATE INDEX IF NOT EXISTS idx_sailings_port ON sailings(port_code);
	`
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ReplaceAliasRecords replaces the alias table with records, in order, in
// one transaction. Record order becomes the curated sort order.
func (d *PostgresDB) ReplaceAliasRecords(ctx context.Context, records []catalog.Record) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM port_aliases`); err != nil {
		return fmt.Errorf("clear port_aliases: %w", err)
	}

	batch := &pgx.Batch{}
	for i, r := range records {
		batch.Queue(`
			INSERT INTO port_aliases (position, source_a, english_name, code, region, source_b, source_c)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, i, r.SourceA, r.EnglishName, r.Code, r.Region, r.SourceB, r.SourceC)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert port_aliases: %w", err)
	}

	return tx.Commit(ctx)
}

// UpsertAliasRecord inserts or updates one alias row at a position.
func (d *PostgresDB) UpsertAliasRecord(ctx context.Context, position int, r catalog.Record) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO port_aliases (position, source_a, english_name, code, region, source_b, source_c)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (position) DO UPDATE SET
			source_a = EXCLUDED.source_a,
			english_name = EXCLUDED.english_name,
			code = EXCLUDED.code,
			region = EXCLUDED.region,
			source_b = EXCLUDED.source_b,
			source_c = EXCLUDED.source_c,
			updated_at = NOW()
	`, position, r.SourceA, r.EnglishName, r.Code, r.Region, r.SourceB, r.SourceC)
	return err
}

// ListAliasRecords returns the alias table in curated order. Line numbers
// are the 1-based row positions.
func (d *PostgresDB) ListAliasRecords(ctx context.Context) ([]catalog.Record, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT source_a, english_name, code, region, source_b, source_c
		FROM port_aliases
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var r catalog.Record
		if err := rows.Scan(&r.SourceA, &r.EnglishName, &r.Code, &r.Region, &r.SourceB, &r.SourceC); err != nil {
			return nil, err
		}
		r.Line = len(records) + 1
		records = append(records, r)
	}
	return records, rows.Err()
}

// PostgresSource reads the alias asset from the port_aliases table.
type PostgresSource struct {
	DB *PostgresDB
}

func (s PostgresSource) Name() string { return "postgres:port_aliases" }

func (s PostgresSource) Records(ctx context.Context) ([]catalog.Record, []catalog.Warning, error) {
	if s.DB == nil {
		return nil, nil, catalog.ErrAssetUnavailable
	}
	records, err := s.DB.ListAliasRecords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", catalog.ErrAssetUnavailable, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: port_aliases is empty", catalog.ErrAssetUnavailable)
	}

	return records, nil, nil
}

// Sailing is a deduplicated sailing as stored.
type Sailing struct {
	ID          int64
	BatchID     string
	Vessel      string
	Voyage      string
	ShipType    string
	Carrier     string
	SailingDate string
	PortRaw     string
	PortCode    string // Canonical code, or the raw text when unresolved.
	PortDisplay string
	Region      string
	Capacity    int64
	FirstSeen   time.Time
	LastSeen    time.Time
}

// UpsertSailing inserts a sailing or refreshes the stored copy of the same
// sailing.
func (d *PostgresDB) UpsertSailing(ctx context.Context, s Sailing) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO sailings (batch_id, vessel, voyage, ship_type, carrier, sailing_date,
			port_raw, port_code, port_display, region, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (sailing_date, port_code, vessel, ship_type, carrier, voyage) DO UPDATE SET
			batch_id = EXCLUDED.batch_id,
			port_display = EXCLUDED.port_display,
			region = EXCLUDED.region,
			capacity = GREATEST(EXCLUDED.capacity, sailings.capacity),
			last_seen = NOW()
	`, s.BatchID, s.Vessel, s.Voyage, s.ShipType, s.Carrier, s.SailingDate,
		s.PortRaw, s.PortCode, s.PortDisplay, s.Region, s.Capacity)
	return err
}

// UpsertSailings stores a batch of sailings in one round trip.
func (d *PostgresDB) UpsertSailings(ctx context.Context, sailings []Sailing) error {
	if len(sailings) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range sailings {
		batch.Queue(`
			INSERT INTO sailings (batch_id, vessel, voyage, ship_type, carrier, sailing_date,
				port_raw, port_code, port_display, region, capacity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (sailing_date, port_code, vessel, ship_type, carrier, voyage) DO UPDATE SET
				batch_id = EXCLUDED.batch_id,
				port_display = EXCLUDED.port_display,
				region = EXCLUDED.region,
				capacity = GREATEST(EXCLUDED.capacity, sailings.capacity),
				last_seen = NOW()
		`, s.BatchID, s.Vessel, s.Voyage, s.ShipType, s.Carrier, s.SailingDate,
			s.PortRaw, s.PortCode, s.PortDisplay, s.Region, s.Capacity)
	}
	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert sailings: %w", err)
	}
	return nil
}

// GetSailing retrieves a sailing by ID.
func (d *PostgresDB) GetSailing(ctx context.Context, id int64) (*Sailing, error) {
	var s Sailing
	err := d.pool.QueryRow(ctx, `
		SELECT `+sailingColumns+`
		FROM sailings WHERE id = $1
	`, id).Scan(sailingDest(&s)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSailings returns sailings whose date falls in [from, to]. Empty bounds
// are open. Dates compare as YYYY-MM-DD text.
func (d *PostgresDB) ListSailings(ctx context.Context, from, to string) ([]Sailing, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+sailingColumns+`
		FROM sailings
		WHERE ($1 = '' OR sailing_date >= $1)
		  AND ($2 = '' OR sailing_date <= $2)
		ORDER BY sailing_date, id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sailings []Sailing
	for rows.Next() {
		var s Sailing
		if err := rows.Scan(sailingDest(&s)...); err != nil {
			return nil, err
		}
		sailings = append(sailings, s)
	}
	return sailings, rows.Err()
}

const sailingColumns = `id, batch_id, vessel, voyage, ship_type, carrier, sailing_date,
		port_raw, port_code, port_display, region, capacity, first_seen, last_seen`

func sailingDest(s *Sailing) []any {
	return []any{&s.ID, &s.BatchID, &s.Vessel, &s.Voyage, &s.ShipType, &s.Carrier, &s.SailingDate,
		&s.PortRaw, &s.PortCode, &s.PortDisplay, &s.Region, &s.Capacity, &s.FirstSeen, &s.LastSeen}
}
