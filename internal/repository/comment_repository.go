package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/maintenance-service/internal/domain"
)

type pgCommentStore struct {
	pool *pgxpool.Pool
}

// NewCommentStore instantiates the postgres-backed comment store.
func NewCommentStore(pool *pgxpool.Pool) CommentStore {
	return &pgCommentStore{pool: pool}
}

func (s *pgCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO service_request_comments (request_id, author_user_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return s.pool.QueryRow(ctx, query,
		comment.RequestID,
		comment.AuthorID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (s *pgCommentStore) ListByRequest(ctx context.Context, requestID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, request_id, author_user_id, body, created_at
        FROM service_request_comments WHERE request_id=$1 ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.RequestID,
			&comment.AuthorID,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
