package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/maintenance-service/internal/domain"
)

type pgUserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore instantiates the postgres-backed user store.
func NewUserStore(pool *pgxpool.Pool) UserStore {
	return &pgUserStore{pool: pool}
}

func (s *pgUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, roles, active, created_at, updated_at
        FROM users WHERE id=$1`
	return s.fetchSingle(ctx, query, id)
}

func (s *pgUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, roles, active, created_at, updated_at
        FROM users WHERE email=$1`
	return s.fetchSingle(ctx, query, email)
}

func (s *pgUserStore) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	var roles []string
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Roles = make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		user.Roles = append(user.Roles, domain.Role(role))
	}
	return &user, nil
}
