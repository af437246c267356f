package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-cli/internal/db"
	"github.com/sells-group/briefing-cli/internal/model"
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

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used journal operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO briefing_runs (id, lead_id, context_id, domain, company_name, status, started_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"complete_run": `UPDATE briefing_runs SET status = $1, briefing = $2, metadata = $3, error = $4, completed_at = $5, duration_ms = $6 WHERE id = $7`,
	"get_run":      `SELECT id, lead_id, context_id, domain, company_name, status, briefing, metadata, error, started_at, completed_at, duration_ms FROM briefing_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
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

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS briefing_runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	lead_id      TEXT NOT NULL,
	context_id   TEXT NOT NULL,
	domain       TEXT NOT NULL,
	company_name TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	briefing     JSONB,
	metadata     JSONB,
	error        TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	duration_ms  BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_briefing_runs_status ON briefing_runs(status);
CREATE INDEX IF NOT EXISTS idx_briefing_runs_lead_id ON briefing_runs(lead_id);
CREATE INDEX IF NOT EXISTS idx_briefing_runs_domain ON briefing_runs(domain);
CREATE INDEX IF NOT EXISTS idx_briefing_runs_started_at ON briefing_runs(started_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

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

func (s *PostgresStore) CreateRun(ctx context.Context, req model.BriefingRequest, companyName string) (*model.BriefingRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO briefing_runs (id, lead_id, context_id, domain, company_name, status, started_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, req.LeadID, req.ContextID, req.CompanyDomain, companyName, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.BriefingRun{
		ID:          id,
		LeadID:      req.LeadID,
		ContextID:   req.ContextID,
		Domain:      req.CompanyDomain,
		CompanyName: companyName,
		Status:      model.RunStatusRunning,
		StartedAt:   now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, doc *model.BriefingDocument, meta *model.Metadata) error {
	var briefingJSON, metadataJSON []byte
	var errMsg string
	var durationMS int64
	var err error

	if doc != nil {
		briefingJSON, err = json.Marshal(doc)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal briefing")
		}
	}
	if meta != nil {
		metadataJSON, err = json.Marshal(meta)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal metadata")
		}
		errMsg = meta.Error
		durationMS = int64(meta.ProcessingTimeSeconds * 1000)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE briefing_runs SET status = $1, briefing = $2, metadata = $3, error = $4, completed_at = $5, duration_ms = $6 WHERE id = $7`,
		string(status), briefingJSON, metadataJSON, errMsg, time.Now().UTC(), durationMS, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.BriefingRun, error) {
	var r model.BriefingRun
	var briefingNull, metadataNull *[]byte
	var completedAt *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, lead_id, context_id, domain, company_name, status, briefing, metadata, error, started_at, completed_at, duration_ms FROM briefing_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.LeadID, &r.ContextID, &r.Domain, &r.CompanyName, &r.Status,
		&briefingNull, &metadataNull, &r.Error, &r.StartedAt, &completedAt, &r.DurationMS)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if briefingNull != nil {
		r.Briefing = &model.BriefingDocument{}
		if err := json.Unmarshal(*briefingNull, r.Briefing); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal briefing")
		}
	}
	if metadataNull != nil {
		r.Metadata = &model.Metadata{}
		if err := json.Unmarshal(*metadataNull, r.Metadata); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal metadata")
		}
	}
	r.CompletedAt = completedAt
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.BriefingRun, error) {
	query := `SELECT id, lead_id, context_id, domain, company_name, status, briefing, metadata, error, started_at, completed_at, duration_ms FROM briefing_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.LeadID != "" {
		query += fmt.Sprintf(` AND lead_id = $%d`, argIdx)
		args = append(args, filter.LeadID)
		argIdx++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND domain = $%d`, argIdx)
		args = append(args, filter.Domain)
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.BriefingRun
	for rows.Next() {
		var r model.BriefingRun
		var briefingNull, metadataNull *[]byte
		var completedAt *time.Time

		if err := rows.Scan(&r.ID, &r.LeadID, &r.ContextID, &r.Domain, &r.CompanyName, &r.Status,
			&briefingNull, &metadataNull, &r.Error, &r.StartedAt, &completedAt, &r.DurationMS); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if briefingNull != nil {
			r.Briefing = &model.BriefingDocument{}
			if err := json.Unmarshal(*briefingNull, r.Briefing); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal briefing")
			}
		}
		if metadataNull != nil {
			r.Metadata = &model.Metadata{}
			if err := json.Unmarshal(*metadataNull, r.Metadata); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal metadata")
			}
		}
		r.CompletedAt = completedAt
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
