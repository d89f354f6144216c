package models

import (
	"time"

	"github.com/google/uuid"
)

// Lookup is the shared row shape for the simple reference tables
// (makes, body_types, colors, fuel_types, gearbox_types).
type Lookup struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CarModel is a model of a specific make (many models per make).
type CarModel struct {
	ID        uuid.UUID `json:"id"`
	MakeID    uuid.UUID `json:"make_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
