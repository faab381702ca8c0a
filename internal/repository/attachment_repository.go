package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/maintenance-service/internal/domain"
)

type pgAttachmentStore struct {
	pool *pgxpool.Pool
}

// NewAttachmentStore instantiates the postgres-backed attachment store.
func NewAttachmentStore(pool *pgxpool.Pool) AttachmentStore {
	return &pgAttachmentStore{pool: pool}
}

func (s *pgAttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO service_request_attachments (request_id, uploaded_by_user_id, file_name, file_url)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return s.pool.QueryRow(ctx, query,
		attachment.RequestID,
		attachment.UploadedByID,
		attachment.FileName,
		attachment.FileURL,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (s *pgAttachmentStore) ListByRequest(ctx context.Context, requestID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, request_id, uploaded_by_user_id, file_name, file_url, created_at
        FROM service_request_attachments WHERE request_id=$1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.RequestID,
			&attachment.UploadedByID,
			&attachment.FileName,
			&attachment.FileURL,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
