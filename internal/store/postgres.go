package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/db"
	"github.com/sells-group/enrich-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., taxonomy seeding via COPY).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	domain        TEXT PRIMARY KEY,
	revenue_band  TEXT NOT NULL DEFAULT '',
	employee_band TEXT NOT NULL DEFAULT '',
	data          JSONB NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	domain      TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	data        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS approved_codes (
	code        TEXT PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS target_codes (
	code TEXT PRIMARY KEY REFERENCES approved_codes(code)
);

CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles(updated_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, domain string) (*model.Profile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM profiles WHERE domain = $1`,
		domain,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", domain)
	}

	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	return &p, nil
}

// UpsertProfile saves a profile, re-enforcing the monotonic-improvement
// rule against whatever is already stored for the domain.
func (s *PostgresStore) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	existing, err := s.GetProfile(ctx, profile.Domain)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	merged := mergeMonotonic(existing, profile)

	data, err := json.Marshal(merged)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (domain, revenue_band, employee_band, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (domain) DO UPDATE SET
		   revenue_band = EXCLUDED.revenue_band,
		   employee_band = EXCLUDED.employee_band,
		   data = EXCLUDED.data,
		   updated_at = EXCLUDED.updated_at`,
		merged.Domain, string(merged.RevenueBand), string(merged.EmployeeBand), data, merged.UpdatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert profile %s", profile.Domain)
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, domain, status, error, data, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Domain, string(run.Status), run.Error, data, run.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save run %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM runs WHERE id = $1`,
		runID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	var r model.Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal run")
	}
	return &r, nil
}

func (s *PostgresStore) ListApprovedCodes(ctx context.Context) ([]model.CandidateIndustryCode, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, description FROM approved_codes ORDER BY code`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list approved codes")
	}
	defer rows.Close()

	var out []model.CandidateIndustryCode
	for rows.Next() {
		var c model.CandidateIndustryCode
		if err := rows.Scan(&c.Code, &c.Description); err != nil {
			return nil, eris.Wrap(err, "postgres: scan approved code")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate approved codes")
	}
	return out, nil
}

func (s *PostgresStore) ListTargetCodes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code FROM target_codes ORDER BY code`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list target codes")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, eris.Wrap(err, "postgres: scan target code")
		}
		out = append(out, code)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate target codes")
	}
	return out, nil
}

// SeedApprovedCodes bulk-loads the approved taxonomy via COPY, used by the
// store-init command after the first migration.
func (s *PostgresStore) SeedApprovedCodes(ctx context.Context, codes []model.CandidateIndustryCode) (int64, error) {
	rows := make([][]any, 0, len(codes))
	for _, c := range codes {
		rows = append(rows, []any{c.Code, c.Description})
	}
	return db.CopyFrom(ctx, s.pool, "approved_codes", []string{"code", "description"}, rows)
}
