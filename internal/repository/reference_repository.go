package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/maintenance-service/internal/domain"
)

// ReferenceStore serves the read-only location and trade catalog.
type ReferenceStore interface {
	ListSites(ctx context.Context) ([]domain.Site, error)
	ListBuildings(ctx context.Context, siteID *string) ([]domain.Building, error)
	ListFloors(ctx context.Context, buildingID *string) ([]domain.Floor, error)
	ListRooms(ctx context.Context, floorID *string) ([]domain.Room, error)
	ListTrades(ctx context.Context) ([]domain.Trade, error)
	ListTechnicians(ctx context.Context, tradeID *string) ([]domain.Technician, error)
	ListProblemTypes(ctx context.Context) ([]domain.ProblemType, error)
}

type pgReferenceStore struct {
	pool *pgxpool.Pool
}

// NewReferenceStore instantiates the postgres-backed reference store.
func NewReferenceStore(pool *pgxpool.Pool) ReferenceStore {
	return &pgReferenceStore{pool: pool}
}

func (s *pgReferenceStore) ListSites(ctx context.Context) ([]domain.Site, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, code, name, created_at FROM sites ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Site, error) {
		var site domain.Site
		err := row.Scan(&site.ID, &site.Code, &site.Name, &site.CreatedAt)
		return site, err
	})
}

func (s *pgReferenceStore) ListBuildings(ctx context.Context, siteID *string) ([]domain.Building, error) {
	const query = `
        SELECT id, site_id, code, name, created_at FROM buildings
        WHERE $1::uuid IS NULL OR site_id=$1 ORDER BY name ASC`
	rows, err := s.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Building, error) {
		var building domain.Building
		err := row.Scan(&building.ID, &building.SiteID, &building.Code, &building.Name, &building.CreatedAt)
		return building, err
	})
}

func (s *pgReferenceStore) ListFloors(ctx context.Context, buildingID *string) ([]domain.Floor, error) {
	const query = `
        SELECT id, building_id, name, created_at FROM floors
        WHERE $1::uuid IS NULL OR building_id=$1 ORDER BY name ASC`
	rows, err := s.pool.Query(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Floor, error) {
		var floor domain.Floor
		err := row.Scan(&floor.ID, &floor.BuildingID, &floor.Name, &floor.CreatedAt)
		return floor, err
	})
}

func (s *pgReferenceStore) ListRooms(ctx context.Context, floorID *string) ([]domain.Room, error) {
	const query = `
        SELECT id, floor_id, name, created_at FROM rooms
        WHERE $1::uuid IS NULL OR floor_id=$1 ORDER BY name ASC`
	rows, err := s.pool.Query(ctx, query, floorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Room, error) {
		var room domain.Room
		err := row.Scan(&room.ID, &room.FloorID, &room.Name, &room.CreatedAt)
		return room, err
	})
}

func (s *pgReferenceStore) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM trades ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Trade, error) {
		var trade domain.Trade
		err := row.Scan(&trade.ID, &trade.Name, &trade.CreatedAt)
		return trade, err
	})
}

func (s *pgReferenceStore) ListTechnicians(ctx context.Context, tradeID *string) ([]domain.Technician, error) {
	const query = `
        SELECT id, user_id, trade_id, name, created_at FROM technicians
        WHERE $1::uuid IS NULL OR trade_id=$1 ORDER BY name ASC`
	rows, err := s.pool.Query(ctx, query, tradeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Technician, error) {
		var tech domain.Technician
		err := row.Scan(&tech.ID, &tech.UserID, &tech.TradeID, &tech.Name, &tech.CreatedAt)
		return tech, err
	})
}

func (s *pgReferenceStore) ListProblemTypes(ctx context.Context) ([]domain.ProblemType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, created_at FROM problem_types ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProblemType, error) {
		var pt domain.ProblemType
		err := row.Scan(&pt.ID, &pt.Name, &pt.Description, &pt.CreatedAt)
		return pt, err
	})
}
