package models

import (
	"time"

	"github.com/google/uuid"
)

type Car struct {
	ID             uuid.UUID     `json:"id"`
	MakeID         uuid.UUID     `json:"make_id"`
	ModelID        uuid.UUID     `json:"model_id"`
	BodyTypeID     uuid.NullUUID `json:"body_type_id,omitempty"`
	ColorID        uuid.NullUUID `json:"color_id,omitempty"`
	FuelTypeID     uuid.NullUUID `json:"fuel_type_id,omitempty"`
	GearboxTypeID  uuid.NullUUID `json:"gearbox_type_id,omitempty"`
	Mileage        int           `json:"mileage"`
	EngineCapacity float64       `json:"engine_capacity"`
	Year           int           `json:"year"`
	Price          float64       `json:"price"`
	Description    string        `json:"description"`
	OwnerID        uuid.UUID     `json:"owner_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
