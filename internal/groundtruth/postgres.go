package groundtruth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/letterscan/internal/common"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ground_truth (
	source     TEXT    NOT NULL,
	doc_index  INTEGER NOT NULL DEFAULT 0,
	full_text  TEXT    NOT NULL,
	fields     JSONB   NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (source, doc_index)
)`

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PostgresStore reads records from the ground_truth table. doc_index 0 holds
// whole-source records.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates the pgx pool and makes sure the table exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("groundtruth.db.connecting")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("groundtruth.db.connect_failed", "error", err)
		return nil, common.NewAppError("STORE", "invalid ground truth DSN", fmt.Errorf("%w: %v", common.ErrStore, err))
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "letterscan"

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("groundtruth.db.connect_failed", "error", err)
		return nil, common.NewAppError("STORE", "cannot connect to ground truth database", fmt.Errorf("%w: %v", common.ErrStore, err))
	}

	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("groundtruth.db.connected")
	return s, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("%w: create ground_truth table: %v", common.ErrStore, err)
	}
	return nil
}

// HealthCheck pings the pool.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", common.ErrStore, err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.logger.Info("groundtruth.db.closing")
	s.pool.Close()
}

func (s *PostgresStore) Lookup(ctx context.Context, source string, index, total int) (Record, bool, error) {
	if err := validateIndex(index, total); err != nil {
		return Record{}, false, nil
	}
	for _, k := range Keys(source, index, total) {
		var (
			fullText string
			raw      []byte
		)
		err := s.pool.QueryRow(ctx,
			`SELECT full_text, fields FROM ground_truth WHERE source = $1 AND doc_index = $2`,
			k.Source, k.DocIndex,
		).Scan(&fullText, &raw)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return Record{}, false, common.NewAppError("STORE", "ground truth lookup failed", fmt.Errorf("%w: %v", common.ErrStore, err))
		}

		fields, ok := ParseFields(raw)
		if !ok {
			s.logger.Warn("groundtruth.fields.malformed", "key", k.String())
		}
		return Record{FullText: fullText, Fields: fields}, true, nil
	}
	return Record{}, false, nil
}

// Put upserts one record.
func (s *PostgresStore) Put(ctx context.Context, key Key, rec Record) error {
	fields := rec.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO ground_truth (source, doc_index, full_text, fields)
		 VALUES ($1, $2, $3, $4::jsonb)
		 ON CONFLICT (source, doc_index)
		 DO UPDATE SET full_text = EXCLUDED.full_text, fields = EXCLUDED.fields, updated_at = now()`,
		key.Source, key.DocIndex, rec.FullText, string(raw))
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", common.ErrStore, key, err)
	}
	return nil
}

// Import copies every record of src into the table.
func (s *PostgresStore) Import(ctx context.Context, src *MemoryStore) (int, error) {
	n := 0
	for _, e := range src.Entries() {
		if err := s.Put(ctx, e.Key, e.Record); err != nil {
			return n, err
		}
		n++
	}
	s.logger.Info("groundtruth.db.imported", "records", n)
	return n, nil
}
