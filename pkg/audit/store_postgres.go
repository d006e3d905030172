package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events for querying. Pair it with a KafkaSink
// through a fan-out when events must also reach stream consumers.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, assessment_id, control_id, action, reason, from_status, to_status, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.AssessmentID, event.ControlID, string(event.Action),
		event.Reason, event.FromStatus, event.ToStatus, event.RequestID, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, assessment_id, control_id, action, reason, from_status, to_status, request_id, occurred_at
		FROM audit_events
		WHERE assessment_id = $1
		ORDER BY occurred_at`,
		assessmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.ID, &e.AssessmentID, &e.ControlID, &action,
			&e.Reason, &e.FromStatus, &e.ToStatus, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}

// FanOutStore appends to every store in order, failing on the first error.
type FanOutStore struct {
	stores []Store
}

func NewFanOutStore(stores ...Store) *FanOutStore {
	return &FanOutStore{stores: stores}
}

func (f *FanOutStore) Append(ctx context.Context, event Event) error {
	for _, s := range f.stores {
		if err := s.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// ListByAssessment reads from the first store that supports listing.
func (f *FanOutStore) ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]Event, error) {
	var lastErr error
	for _, s := range f.stores {
		events, err := s.ListByAssessment(ctx, assessmentID)
		if err == nil {
			return events, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
