package models

import "time"

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type ImageResponse struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

type CarResponse struct {
	ID             string          `json:"id"`
	MakeID         string          `json:"make_id"`
	ModelID        string          `json:"model_id"`
	BodyTypeID     string          `json:"body_type_id,omitempty"`
	ColorID        string          `json:"color_id,omitempty"`
	FuelTypeID     string          `json:"fuel_type_id,omitempty"`
	GearboxTypeID  string          `json:"gearbox_type_id,omitempty"`
	Mileage        int             `json:"mileage"`
	EngineCapacity float64         `json:"engine_capacity"`
	Year           int             `json:"year"`
	Price          float64         `json:"price"`
	Description    string          `json:"description"`
	OwnerID        string          `json:"owner_id"`
	Images         []ImageResponse `json:"images"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CarSummary is the listing-row shape: scalar fields plus the primary
// image's thumbnail, if the car has one.
type CarSummary struct {
	ID           string    `json:"id"`
	MakeID       string    `json:"make_id"`
	ModelID      string    `json:"model_id"`
	Year         int       `json:"year"`
	Mileage      int       `json:"mileage"`
	Price        float64   `json:"price"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CarListResponse struct {
	Cars []CarSummary `json:"cars"`
}

type LookupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MakeResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Models []LookupResponse `json:"models"`
}

type LookupsResponse struct {
	Makes        []MakeResponse   `json:"makes"`
	BodyTypes    []LookupResponse `json:"body_types"`
	Colors       []LookupResponse `json:"colors"`
	FuelTypes    []LookupResponse `json:"fuel_types"`
	GearboxTypes []LookupResponse `json:"gearbox_types"`
}
