package domain

import "time"

// Site is a physical campus or location.
type Site struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}

// Building belongs to a site.
type Building struct {
	ID        string
	SiteID    string
	Code      string
	Name      string
	CreatedAt time.Time
}

// Floor belongs to a building.
type Floor struct {
	ID         string
	BuildingID string
	Name       string
	CreatedAt  time.Time
}

// Room belongs to a floor.
type Room struct {
	ID        string
	FloorID   string
	Name      string
	CreatedAt time.Time
}

// Trade is a maintenance specialty (electrical, plumbing, HVAC, ...).
type Trade struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Technician is a tradesperson who performs the work.
type Technician struct {
	ID        string
	UserID    string
	TradeID   string
	Name      string
	CreatedAt time.Time
}

// ProblemType classifies what is wrong.
type ProblemType struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Comment is a free-form note on a service request.
type Comment struct {
	ID        string
	RequestID string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Attachment records file metadata tied to a service request. The file
// itself lives elsewhere; only the reference is kept here.
type Attachment struct {
	ID           string
	RequestID    string
	UploadedByID string
	FileName     string
	FileURL      string
	CreatedAt    time.Time
}
