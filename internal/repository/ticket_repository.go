package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/sequence"
)

const requestColumns = `id, number, title, description, site_id, building_id, floor_id, room_id,
       problem_type_id, priority, status, requested_by_user_id, requested_for_user_id,
       assigned_trade_id, assigned_technician_id, response_due_at, resolve_due_at,
       created_at, updated_at`

type pgTicketStore struct {
	pool *pgxpool.Pool
}

// NewTicketStore instantiates the postgres-backed ticket store.
func NewTicketStore(pool *pgxpool.Pool) TicketStore {
	return &pgTicketStore{pool: pool}
}

// Create inserts the request and its CREATED audit entry in one
// transaction. Number issuance takes a per-period advisory lock so the
// derive-from-existing step is linearized across concurrent creates.
func (s *pgTicketStore) Create(ctx context.Context, r *domain.ServiceRequest, entry *domain.AuditEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	period := sequence.PeriodOf(r.CreatedAt)
	prefix := period.Prefix()
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		return err
	}

	rows, err := tx.Query(ctx,
		`SELECT number FROM service_requests WHERE number LIKE $1 ORDER BY number DESC LIMIT 1`,
		prefix+"-%")
	if err != nil {
		return err
	}
	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}
	r.Number = sequence.Format(period, sequence.NextFrom(period, existing))

	const insert = `
        INSERT INTO service_requests (number, title, description, site_id, building_id, floor_id,
            room_id, problem_type_id, priority, status, requested_by_user_id, requested_for_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insert,
		r.Number,
		r.Title,
		r.Description,
		r.SiteID,
		r.BuildingID,
		r.FloorID,
		r.RoomID,
		r.ProblemTypeID,
		r.Priority,
		r.Status,
		r.RequestedByID,
		r.RequestedForID,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return err
	}

	if err := insertAudit(ctx, tx, r.ID, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CompareAndUpdate writes the request only when its stored status still
// matches expected, appending the audit entry in the same transaction.
func (s *pgTicketStore) CompareAndUpdate(ctx context.Context, expected domain.Status, r *domain.ServiceRequest, entry *domain.AuditEntry) (*domain.ServiceRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE service_requests SET title=$1, description=$2, site_id=$3, building_id=$4,
            floor_id=$5, room_id=$6, problem_type_id=$7, priority=$8, status=$9,
            requested_for_user_id=$10, assigned_trade_id=$11, assigned_technician_id=$12,
            response_due_at=$13, resolve_due_at=$14, updated_at=NOW()
        WHERE id=$15 AND status=$16
        RETURNING ` + requestColumns
	updated, err := scanRequest(tx.QueryRow(ctx, update,
		r.Title,
		r.Description,
		r.SiteID,
		r.BuildingID,
		r.FloorID,
		r.RoomID,
		r.ProblemTypeID,
		r.Priority,
		r.Status,
		r.RequestedForID,
		r.AssignedTradeID,
		r.AssignedTechnicianID,
		r.ResponseDueAt,
		r.ResolveDueAt,
		r.ID,
		expected,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a vanished row from a lost CAS race.
		var exists bool
		if probeErr := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM service_requests WHERE id=$1)`, r.ID).Scan(&exists); probeErr != nil {
			return nil, probeErr
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	if err := insertAudit(ctx, tx, updated.ID, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *pgTicketStore) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id=$1`
	request, err := scanRequest(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *pgTicketStore) ListWithFilter(ctx context.Context, filter Filter) ([]domain.ServiceRequest, int, error) {
	filter.Normalize()

	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.SiteID != nil {
		args = append(args, *filter.SiteID)
		clauses = append(clauses, fmt.Sprintf("site_id=$%d", len(args)))
	}
	if filter.BuildingID != nil {
		args = append(args, *filter.BuildingID)
		clauses = append(clauses, fmt.Sprintf("building_id=$%d", len(args)))
	}
	if filter.NumberContains != nil && strings.TrimSpace(*filter.NumberContains) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.NumberContains))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(number) LIKE $%d", len(args)))
	}
	if filter.Keyword != nil && strings.TrimSpace(*filter.Keyword) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Keyword))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM service_requests WHERE ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	listQuery := fmt.Sprintf(`SELECT %s FROM service_requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		requestColumns, where, filter.PageSize, offset)

	rows, err := s.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.ServiceRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func scanRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var r domain.ServiceRequest
	if err := row.Scan(
		&r.ID,
		&r.Number,
		&r.Title,
		&r.Description,
		&r.SiteID,
		&r.BuildingID,
		&r.FloorID,
		&r.RoomID,
		&r.ProblemTypeID,
		&r.Priority,
		&r.Status,
		&r.RequestedByID,
		&r.RequestedForID,
		&r.AssignedTradeID,
		&r.AssignedTechnicianID,
		&r.ResponseDueAt,
		&r.ResolveDueAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, requestID string, entry *domain.AuditEntry) error {
	if entry == nil {
		return nil
	}
	const query = `
        INSERT INTO service_request_audit (request_id, actor_user_id, action, from_status, to_status, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	entry.RequestID = requestID
	return tx.QueryRow(ctx, query,
		requestID,
		entry.ActorID,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}
