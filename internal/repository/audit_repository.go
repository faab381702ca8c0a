package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/maintenance-service/internal/domain"
)

type pgAuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore instantiates the postgres-backed audit store.
func NewAuditStore(pool *pgxpool.Pool) AuditStore {
	return &pgAuditStore{pool: pool}
}

func (s *pgAuditStore) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO service_request_audit (request_id, actor_user_id, action, from_status, to_status, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return s.pool.QueryRow(ctx, query,
		entry.RequestID,
		entry.ActorID,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (s *pgAuditStore) ListByRequest(ctx context.Context, requestID string) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, request_id, actor_user_id, action, from_status, to_status, metadata, created_at
        FROM service_request_audit WHERE request_id=$1 ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.ActorID,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
