package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
)

// ReferenceStore holds the location and trade catalog in memory.
type ReferenceStore struct {
	mu           sync.RWMutex
	sites        []domain.Site
	buildings    []domain.Building
	floors       []domain.Floor
	rooms        []domain.Room
	trades       []domain.Trade
	technicians  []domain.Technician
	problemTypes []domain.ProblemType
}

// NewReferenceStore creates an empty catalog.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{}
}

var _ repository.ReferenceStore = (*ReferenceStore)(nil)

// SeedDefaults loads a small sample catalog for development runs. It
// returns the store so seeding can chain off the constructor.
func (s *ReferenceStore) SeedDefaults() *ReferenceStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()

	site := domain.Site{ID: uuid.NewString(), Code: "HQ", Name: "Headquarters", CreatedAt: now}
	building := domain.Building{ID: uuid.NewString(), SiteID: site.ID, Code: "A", Name: "Building A", CreatedAt: now}
	floor := domain.Floor{ID: uuid.NewString(), BuildingID: building.ID, Name: "Ground Floor", CreatedAt: now}
	room := domain.Room{ID: uuid.NewString(), FloorID: floor.ID, Name: "Room 101", CreatedAt: now}

	electrical := domain.Trade{ID: uuid.NewString(), Name: "Electrical", CreatedAt: now}
	plumbing := domain.Trade{ID: uuid.NewString(), Name: "Plumbing", CreatedAt: now}
	hvac := domain.Trade{ID: uuid.NewString(), Name: "HVAC", CreatedAt: now}

	s.sites = append(s.sites, site)
	s.buildings = append(s.buildings, building)
	s.floors = append(s.floors, floor)
	s.rooms = append(s.rooms, room)
	s.trades = append(s.trades, electrical, plumbing, hvac)
	s.problemTypes = append(s.problemTypes,
		domain.ProblemType{ID: uuid.NewString(), Name: "Leak", Description: "Water or gas leak", CreatedAt: now},
		domain.ProblemType{ID: uuid.NewString(), Name: "No Power", Description: "Electrical outage", CreatedAt: now},
		domain.ProblemType{ID: uuid.NewString(), Name: "Too Hot / Too Cold", Description: "Climate complaint", CreatedAt: now},
	)
	return s
}

// AddTechnician registers a technician, assigning an id when absent.
func (s *ReferenceStore) AddTechnician(tech domain.Technician) domain.Technician {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tech.ID == "" {
		tech.ID = uuid.NewString()
	}
	if tech.CreatedAt.IsZero() {
		tech.CreatedAt = time.Now()
	}
	s.technicians = append(s.technicians, tech)
	return tech
}

func (s *ReferenceStore) ListSites(ctx context.Context) ([]domain.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Site{}, s.sites...), nil
}

func (s *ReferenceStore) ListBuildings(ctx context.Context, siteID *string) ([]domain.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Building, 0, len(s.buildings))
	for _, b := range s.buildings {
		if siteID == nil || b.SiteID == *siteID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *ReferenceStore) ListFloors(ctx context.Context, buildingID *string) ([]domain.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Floor, 0, len(s.floors))
	for _, f := range s.floors {
		if buildingID == nil || f.BuildingID == *buildingID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *ReferenceStore) ListRooms(ctx context.Context, floorID *string) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if floorID == nil || r.FloorID == *floorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *ReferenceStore) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Trade{}, s.trades...), nil
}

func (s *ReferenceStore) ListTechnicians(ctx context.Context, tradeID *string) ([]domain.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Technician, 0, len(s.technicians))
	for _, t := range s.technicians {
		if tradeID == nil || t.TradeID == *tradeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *ReferenceStore) ListProblemTypes(ctx context.Context) ([]domain.ProblemType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ProblemType{}, s.problemTypes...), nil
}
