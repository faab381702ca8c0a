package dto

// SiteResponse is one catalog site.
type SiteResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// BuildingResponse is one catalog building.
type BuildingResponse struct {
	ID     string `json:"id"`
	SiteID string `json:"site_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

// FloorResponse is one catalog floor.
type FloorResponse struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
}

// RoomResponse is one catalog room.
type RoomResponse struct {
	ID      string `json:"id"`
	FloorID string `json:"floor_id"`
	Name    string `json:"name"`
}

// TradeResponse is one maintenance trade.
type TradeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TechnicianResponse is one technician.
type TechnicianResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	TradeID string `json:"trade_id"`
	Name    string `json:"name"`
}

// ProblemTypeResponse is one problem classification.
type ProblemTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
