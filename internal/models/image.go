package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is one stored photo of a car. StorageKey addresses the original
// in blob storage; the thumbnail key is derived from it, never stored.
type Image struct {
	ID         uuid.UUID `json:"id"`
	CarID      uuid.UUID `json:"car_id"`
	StorageKey string    `json:"storage_key"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}
