package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/enrich-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// single-operator runs where a Postgres instance is overkill.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	domain        TEXT PRIMARY KEY,
	revenue_band  TEXT NOT NULL DEFAULT '',
	employee_band TEXT NOT NULL DEFAULT '',
	data          TEXT NOT NULL,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	domain     TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
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
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetProfile(ctx context.Context, domain string) (*model.Profile, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM profiles WHERE domain = ?`,
		domain,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", domain)
	}

	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	return &p, nil
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	existing, err := s.GetProfile(ctx, profile.Domain)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	merged := mergeMonotonic(existing, profile)

	data, err := json.Marshal(merged)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (domain, revenue_band, employee_band, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (domain) DO UPDATE SET
		   revenue_band = excluded.revenue_band,
		   employee_band = excluded.employee_band,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		merged.Domain, string(merged.RevenueBand), string(merged.EmployeeBand), data, merged.UpdatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert profile %s", profile.Domain)
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, domain, status, error, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Domain, string(run.Status), run.Error, data, run.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save run %s", run.ID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM runs WHERE id = ?`,
		runID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	var r model.Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal run")
	}
	return &r, nil
}

func (s *SQLiteStore) ListApprovedCodes(ctx context.Context) ([]model.CandidateIndustryCode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, description FROM approved_codes ORDER BY code`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list approved codes")
	}
	defer rows.Close()

	var out []model.CandidateIndustryCode
	for rows.Next() {
		var c model.CandidateIndustryCode
		if err := rows.Scan(&c.Code, &c.Description); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan approved code")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate approved codes")
	}
	return out, nil
}

func (s *SQLiteStore) ListTargetCodes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code FROM target_codes ORDER BY code`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list target codes")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan target code")
		}
		out = append(out, code)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate target codes")
	}
	return out, nil
}

// SeedApprovedCodes inserts the approved taxonomy, replacing descriptions
// for codes that already exist.
func (s *SQLiteStore) SeedApprovedCodes(ctx context.Context, codes []model.CandidateIndustryCode) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin seed tx")
	}
	defer tx.Rollback()

	var n int64
	for _, c := range codes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO approved_codes (code, description) VALUES (?, ?)
			 ON CONFLICT (code) DO UPDATE SET description = excluded.description`,
			c.Code, c.Description,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed code %s", c.Code)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit seed tx")
	}
	return n, nil
}
