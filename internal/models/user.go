package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID      `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	FirstName    sql.NullString `json:"first_name,omitempty"`
	LastName     sql.NullString `json:"last_name,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
