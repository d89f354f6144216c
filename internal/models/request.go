package models

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CarForm carries the scalar fields of a car create/update submission.
// Reference fields arrive as strings so that a malformed id can be reported
// as a field-level validation error instead of a bind failure.
type CarForm struct {
	MakeID         string  `form:"make_id"`
	ModelID        string  `form:"model_id"`
	BodyTypeID     string  `form:"body_type_id"`
	ColorID        string  `form:"color_id"`
	FuelTypeID     string  `form:"fuel_type_id"`
	GearboxTypeID  string  `form:"gearbox_type_id"`
	Mileage        int     `form:"mileage"`
	EngineCapacity float64 `form:"engine_capacity"`
	Year           int     `form:"year"`
	Price          float64 `form:"price"`
	Description    string  `form:"description"`

	// PrimaryIndex selects which of the uploaded files becomes the primary
	// image (-1 for none).
	PrimaryIndex int `form:"primary_index,default=-1"`

	// Update-only: existing images to remove, and an existing image to
	// promote to primary.
	RemoveImageIDs []string `form:"remove_image_ids"`
	PrimaryImageID string   `form:"primary_image_id"`
}
