// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/tzverify/internal/codec"
	"github.com/JakeFAU/tzverify/internal/tz"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TimestampStoreConfig controls the Postgres connection pool used for timestamp rows.
type TimestampStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type queryExecCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// TimestampStore keeps every encoding of a timestamp side by side so reloads
// can be compared per encoding.
type TimestampStore struct {
	pool  queryExecCloser
	table string
}

// NewTimestampStore creates a Postgres-backed TimestampStore using the provided config.
func NewTimestampStore(ctx context.Context, cfg TimestampStoreConfig) (*TimestampStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := NewTimestampStoreWithPool(pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewTimestampStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewTimestampStoreWithPool(pool queryExecCloser, table string) (*TimestampStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "tz_samples"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &TimestampStore{pool: pool, table: table}, nil
}

// EnsureSchema creates the backing table when it does not exist.
func (s *TimestampStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key TEXT PRIMARY KEY,
	simple_text TEXT NOT NULL,
	offset_text TEXT NOT NULL,
	epoch_seconds BIGINT NOT NULL,
	zone_name TEXT NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Save upserts ts under key in every encoding.
func (s *TimestampStore) Save(ctx context.Context, key string, ts tz.Timestamp) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	query := fmt.Sprintf(`INSERT INTO %s (key, simple_text, offset_text, epoch_seconds, zone_name)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (key) DO UPDATE SET
	simple_text = EXCLUDED.simple_text,
	offset_text = EXCLUDED.offset_text,
	epoch_seconds = EXCLUDED.epoch_seconds,
	zone_name = EXCLUDED.zone_name`, s.table)

	_, err := s.pool.Exec(ctx, query,
		key,
		ts.Format(tz.SimpleLayout),
		ts.Format(tz.OffsetLayout),
		ts.Epoch(),
		ts.Zone().Name(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s row %q: %w", s.table, key, err)
	}
	return nil
}

// Load reads the row for key and decodes the column for enc with env. A
// non-zero zone is supplied to the decoder explicitly. Missing rows wrap
// fs.ErrNotExist.
func (s *TimestampStore) Load(ctx context.Context, env tz.Env, key string, enc codec.Encoding, zone tz.Zone) (tz.Timestamp, error) {
	query := fmt.Sprintf(`SELECT simple_text, offset_text, epoch_seconds, zone_name FROM %s WHERE key = $1`, s.table)

	var (
		simpleText string
		offsetText string
		epoch      int64
		zoneName   string
	)
	err := s.pool.QueryRow(ctx, query, key).Scan(&simpleText, &offsetText, &epoch, &zoneName)
	if errors.Is(err, pgx.ErrNoRows) {
		return tz.Timestamp{}, fmt.Errorf("row %q: %w", key, fs.ErrNotExist)
	}
	if err != nil {
		return tz.Timestamp{}, fmt.Errorf("select %s row %q: %w", s.table, key, err)
	}

	var text string
	switch enc {
	case codec.EncodingSimple:
		text = simpleText
	case codec.EncodingOffset:
		text = offsetText
	case codec.EncodingEpoch:
		text = tz.EpochMarker + strconv.FormatInt(epoch, 10)
	default:
		return tz.Timestamp{}, fmt.Errorf("unknown encoding %q", enc)
	}
	return codec.Decode(env, text, zone)
}

// Ping checks connectivity.
func (s *TimestampStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *TimestampStore) Close() {
	s.pool.Close()
}
