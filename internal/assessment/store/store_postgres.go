package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"itsg33/internal/assessment/models"
	"itsg33/internal/catalog"
	"itsg33/pkg/sentinel"
)

// Schema holds the DDL the store expects. Applied at startup; every
// statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id            UUID PRIMARY KEY,
	client_id     TEXT NOT NULL,
	project_name  TEXT NOT NULL,
	profile       INT NOT NULL,
	status        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	data          JSONB NOT NULL,
	version       INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_client ON assessments (client_id);

CREATE TABLE IF NOT EXISTS audit_events (
	id            UUID PRIMARY KEY,
	assessment_id UUID NOT NULL,
	control_id    TEXT,
	action        TEXT NOT NULL,
	reason        TEXT,
	from_status   TEXT,
	to_status     TEXT,
	request_id    TEXT,
	occurred_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_assessment ON audit_events (assessment_id, occurred_at);
`

// PostgresStore persists assessments as JSONB documents with a version
// column guarding concurrent read-modify-write cycles. The few columns
// duplicated out of the document exist for listing and filtering.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema applies the DDL. Safe to call on every startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessments (id, client_id, project_name, profile, status, created_at, updated_at, data, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.ClientID, a.ProjectName, int(a.Profile), string(a.Status),
		a.CreatedAt, a.UpdatedAt, data, a.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	var data []byte
	var version int
	err := s.pool.QueryRow(ctx,
		`SELECT data, version FROM assessments WHERE id = $1`, id,
	).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	a, err := unmarshalAssessment(data)
	if err != nil {
		return nil, err
	}
	a.Version = version
	return a, nil
}

func (s *PostgresStore) Update(ctx context.Context, a *models.Assessment, expectedVersion int) error {
	next := a.Clone()
	next.Version = expectedVersion + 1
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE assessments
		SET client_id = $2, project_name = $3, profile = $4, status = $5,
		    updated_at = $6, data = $7, version = $8
		WHERE id = $1 AND version = $9`,
		a.ID, a.ClientID, a.ProjectName, int(a.Profile), string(a.Status),
		a.UpdatedAt, data, next.Version, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a version race.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM assessments WHERE id = $1)`, a.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("update assessment: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrVersionConflict
	}
	a.Version = next.Version
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Assessment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data, version FROM assessments ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []*models.Assessment
	for rows.Next() {
		var data []byte
		var version int
		if err := rows.Scan(&data, &version); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a, err := unmarshalAssessment(data)
		if err != nil {
			return nil, err
		}
		a.Version = version
		out = append(out, a)
	}
	return out, rows.Err()
}

func unmarshalAssessment(data []byte) (*models.Assessment, error) {
	var a models.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal assessment: %w", err)
	}
	if a.Profile < catalog.Profile1 || a.Profile > catalog.Profile3 {
		return nil, fmt.Errorf("unmarshal assessment: invalid profile %d", a.Profile)
	}
	return &a, nil
}
