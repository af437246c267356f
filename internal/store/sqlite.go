package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/briefing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
CREATE TABLE IF NOT EXISTS briefing_runs (
	id           TEXT PRIMARY KEY,
	lead_id      TEXT NOT NULL,
	context_id   TEXT NOT NULL,
	domain       TEXT NOT NULL,
	company_name TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	briefing     TEXT,
	metadata     TEXT,
	error        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME,
	duration_ms  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_briefing_runs_status ON briefing_runs(status);
CREATE INDEX IF NOT EXISTS idx_briefing_runs_lead_id ON briefing_runs(lead_id);
CREATE INDEX IF NOT EXISTS idx_briefing_runs_domain ON briefing_runs(domain);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, req model.BriefingRequest, companyName string) (*model.BriefingRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO briefing_runs (id, lead_id, context_id, domain, company_name, status, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, req.LeadID, req.ContextID, req.CompanyDomain, companyName, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, doc *model.BriefingDocument, meta *model.Metadata) error {
	var briefing, metadata any
	var errMsg string
	var durationMS int64

	if doc != nil {
		b, err := json.Marshal(doc)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal briefing")
		}
		briefing = string(b)
	}
	if meta != nil {
		m, err := json.Marshal(meta)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal metadata")
		}
		metadata = string(m)
		errMsg = meta.Error
		durationMS = int64(meta.ProcessingTimeSeconds * 1000)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE briefing_runs SET status = ?, briefing = ?, metadata = ?, error = ?, completed_at = ?, duration_ms = ? WHERE id = ?`,
		string(status), briefing, metadata, errMsg, time.Now().UTC(), durationMS, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.BriefingRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lead_id, context_id, domain, company_name, status, briefing, metadata, error, started_at, completed_at, duration_ms
		 FROM briefing_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.BriefingRun, error) {
	query := `SELECT id, lead_id, context_id, domain, company_name, status, briefing, metadata, error, started_at, completed_at, duration_ms FROM briefing_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.LeadID != "" {
		query += ` AND lead_id = ?`
		args = append(args, filter.LeadID)
	}
	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.BriefingRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.BriefingRun, error) {
	var r model.BriefingRun
	var briefingJSON, metadataJSON sql.NullString
	var errMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &r.LeadID, &r.ContextID, &r.Domain, &r.CompanyName, &r.Status,
		&briefingJSON, &metadataJSON, &errMsg, &r.StartedAt, &completedAt, &r.DurationMS)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if briefingJSON.Valid && briefingJSON.String != "" {
		r.Briefing = &model.BriefingDocument{}
		if err := json.Unmarshal([]byte(briefingJSON.String), r.Briefing); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal briefing")
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		r.Metadata = &model.Metadata{}
		if err := json.Unmarshal([]byte(metadataJSON.String), r.Metadata); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal metadata")
		}
	}
	r.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		r.CompletedAt = &t
	}
	return &r, nil
}
