package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/maintenance-service/internal/api/dto"
	"github.com/facilityops/maintenance-service/internal/repository"
)

// ReferenceHandler serves the read-only location and trade catalog.
type ReferenceHandler struct {
	store repository.ReferenceStore
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(store repository.ReferenceStore) *ReferenceHandler {
	return &ReferenceHandler{store: store}
}

// ListSites GET /reference/sites.
func (h *ReferenceHandler) ListSites(c *fiber.Ctx) error {
	sites, err := h.store.ListSites(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SiteResponse, 0, len(sites))
	for _, site := range sites {
		items = append(items, dto.SiteResponse{ID: site.ID, Code: site.Code, Name: site.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListBuildings GET /reference/buildings.
func (h *ReferenceHandler) ListBuildings(c *fiber.Ctx) error {
	buildings, err := h.store.ListBuildings(c.UserContext(), optionalQuery(c, "site_id"))
	if err != nil {
		return err
	}
	items := make([]dto.BuildingResponse, 0, len(buildings))
	for _, building := range buildings {
		items = append(items, dto.BuildingResponse{
			ID:     building.ID,
			SiteID: building.SiteID,
			Code:   building.Code,
			Name:   building.Name,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListFloors GET /reference/floors.
func (h *ReferenceHandler) ListFloors(c *fiber.Ctx) error {
	floors, err := h.store.ListFloors(c.UserContext(), optionalQuery(c, "building_id"))
	if err != nil {
		return err
	}
	items := make([]dto.FloorResponse, 0, len(floors))
	for _, floor := range floors {
		items = append(items, dto.FloorResponse{ID: floor.ID, BuildingID: floor.BuildingID, Name: floor.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListRooms GET /reference/rooms.
func (h *ReferenceHandler) ListRooms(c *fiber.Ctx) error {
	rooms, err := h.store.ListRooms(c.UserContext(), optionalQuery(c, "floor_id"))
	if err != nil {
		return err
	}
	items := make([]dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, dto.RoomResponse{ID: room.ID, FloorID: room.FloorID, Name: room.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTrades GET /reference/trades.
func (h *ReferenceHandler) ListTrades(c *fiber.Ctx) error {
	trades, err := h.store.ListTrades(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TradeResponse, 0, len(trades))
	for _, trade := range trades {
		items = append(items, dto.TradeResponse{ID: trade.ID, Name: trade.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTechnicians GET /reference/technicians.
func (h *ReferenceHandler) ListTechnicians(c *fiber.Ctx) error {
	technicians, err := h.store.ListTechnicians(c.UserContext(), optionalQuery(c, "trade_id"))
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for _, tech := range technicians {
		items = append(items, dto.TechnicianResponse{
			ID:      tech.ID,
			UserID:  tech.UserID,
			TradeID: tech.TradeID,
			Name:    tech.Name,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListProblemTypes GET /reference/problem-types.
func (h *ReferenceHandler) ListProblemTypes(c *fiber.Ctx) error {
	problemTypes, err := h.store.ListProblemTypes(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ProblemTypeResponse, 0, len(problemTypes))
	for _, pt := range problemTypes {
		items = append(items, dto.ProblemTypeResponse{ID: pt.ID, Name: pt.Name, Description: pt.Description})
	}
	return c.JSON(fiber.Map{"data": items})
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	return &val
}
