package model

import (
	"errors"
	"strings"
	"time"
)

// ErrNameRequired is returned when a building has an empty name.
var ErrNameRequired = errors.New("name is required")

// Building is a point of interest rendered by the AR client.  It
// corresponds to a row in the `ar_buildings` table; Name is unique.
//
// Fields:
//
//	ID          – store-generated primary key.
//	Name        – unique, non-empty display name.
//	Description – free text shown in the info card.
//	Position    – scene coordinates of the model anchor.
//	ModelType   – tag the client uses to pick a 3D model (main, library, ...).
//	Category    – grouping used by the directory (Academic, Services, ...).
//	FloorLevel  – human label of the entrance floor.
//	IsActive    – inactive buildings are hidden from the directory.
type Building struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    Position  `json:"position"`
	ModelType   string    `json:"model_type"`
	Category    string    `json:"category"`
	FloorLevel  string    `json:"floor_level"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the fields required before a building is written.
func (b Building) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
