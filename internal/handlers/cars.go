package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carmarket-backend/internal/database"
	"carmarket-backend/internal/images"
	"carmarket-backend/internal/middleware"
	"carmarket-backend/internal/models"
	"carmarket-backend/internal/services"
	"carmarket-backend/internal/storage"
)

// maxMultipartMemory caps the in-memory portion of a multipart parse (32MB).
const maxMultipartMemory = 32 << 20

type CarsHandler struct {
	cars  *services.CarService
	store *database.Store
	blobs storage.BlobStore
}

func NewCarsHandler(cars *services.CarService, store *database.Store, blobs storage.BlobStore) *CarsHandler {
	return &CarsHandler{cars: cars, store: store, blobs: blobs}
}

// ListCars is the public home listing: every car with its primary-image
// thumbnail, newest first.
func (h *CarsHandler) ListCars(c *gin.Context) {
	cars, err := h.store.ListCars(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list cars",
			Message: err.Error(),
		})
		return
	}
	h.respondCarList(c, cars)
}

// MyCars lists the authenticated user's own cars.
func (h *CarsHandler) MyCars(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	cars, err := h.store.ListCarsByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list cars",
			Message: err.Error(),
		})
		return
	}
	h.respondCarList(c, cars)
}

func (h *CarsHandler) respondCarList(c *gin.Context, cars []models.Car) {
	ids := make([]uuid.UUID, len(cars))
	for i, car := range cars {
		ids[i] = car.ID
	}
	primaries, err := h.store.PrimaryImages(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load images",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.CarSummary, len(cars))
	for i, car := range cars {
		summary := models.CarSummary{
			ID:        car.ID.String(),
			MakeID:    car.MakeID.String(),
			ModelID:   car.ModelID.String(),
			Year:      car.Year,
			Mileage:   car.Mileage,
			Price:     car.Price,
			CreatedAt: car.CreatedAt,
		}
		if img, ok := primaries[car.ID]; ok {
			summary.ThumbnailURL = h.blobs.PublicURL(images.ThumbnailKey(img.StorageKey))
		}
		summaries[i] = summary
	}

	c.JSON(http.StatusOK, models.CarListResponse{Cars: summaries})
}

func (h *CarsHandler) GetCar(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("car_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid car id"})
		return
	}

	car, err := h.store.GetCar(c.Request.Context(), carID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "car not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get car",
			Message: err.Error(),
		})
		return
	}

	imgs, err := h.store.ListImages(c.Request.Context(), carID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load images",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.carResponse(car, imgs))
}

func (h *CarsHandler) CreateCar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	form, uploads, ok := h.bindCarSubmission(c)
	if !ok {
		return
	}

	car, err := h.cars.CreateCar(c.Request.Context(), userID, form, uploads)
	if err != nil {
		h.respondSaveError(c, err)
		return
	}

	imgs, err := h.store.ListImages(c.Request.Context(), car.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load images",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, h.carResponse(car, imgs))
}

func (h *CarsHandler) UpdateCar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	carID, err := uuid.Parse(c.Param("car_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid car id"})
		return
	}

	form, uploads, ok := h.bindCarSubmission(c)
	if !ok {
		return
	}

	car, err := h.cars.UpdateCar(c.Request.Context(), userID, carID, form, uploads)
	if err != nil {
		h.respondSaveError(c, err)
		return
	}

	imgs, err := h.store.ListImages(c.Request.Context(), car.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load images",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.carResponse(car, imgs))
}

func (h *CarsHandler) DeleteCar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	carID, err := uuid.Parse(c.Param("car_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid car id"})
		return
	}

	if err := h.cars.DeleteCar(c.Request.Context(), userID, carID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "car not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete car",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "car deleted"})
}

// bindCarSubmission parses the multipart car form and reads the uploaded
// files into memory. The file marked by primary_index becomes the primary
// upload.
func (h *CarsHandler) bindCarSubmission(c *gin.Context) (models.CarForm, []services.ImageUpload, bool) {
	var form models.CarForm
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return form, nil, false
	}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid form data",
			Message: err.Error(),
		})
		return form, nil, false
	}

	var files []*multipart.FileHeader
	if mf := c.Request.MultipartForm; mf != nil {
		files = mf.File["images"]
	}

	uploads := make([]services.ImageUpload, 0, len(files))
	for i, file := range files {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to open uploaded file",
				Message: err.Error(),
			})
			return form, nil, false
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to read uploaded file",
				Message: err.Error(),
			})
			return form, nil, false
		}

		uploads = append(uploads, services.ImageUpload{
			Filename: file.Filename,
			Data:     data,
			Primary:  i == form.PrimaryIndex,
		})
	}

	return form, uploads, true
}

func (h *CarsHandler) respondSaveError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "validation failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "car not found"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to save car",
			Message: err.Error(),
		})
	}
}

func (h *CarsHandler) carResponse(car *models.Car, imgs []models.Image) models.CarResponse {
	resp := models.CarResponse{
		ID:             car.ID.String(),
		MakeID:         car.MakeID.String(),
		ModelID:        car.ModelID.String(),
		Mileage:        car.Mileage,
		EngineCapacity: car.EngineCapacity,
		Year:           car.Year,
		Price:          car.Price,
		Description:    car.Description,
		OwnerID:        car.OwnerID.String(),
		Images:         make([]models.ImageResponse, len(imgs)),
		CreatedAt:      car.CreatedAt,
		UpdatedAt:      car.UpdatedAt,
	}
	if car.BodyTypeID.Valid {
		resp.BodyTypeID = car.BodyTypeID.UUID.String()
	}
	if car.ColorID.Valid {
		resp.ColorID = car.ColorID.UUID.String()
	}
	if car.FuelTypeID.Valid {
		resp.FuelTypeID = car.FuelTypeID.UUID.String()
	}
	if car.GearboxTypeID.Valid {
		resp.GearboxTypeID = car.GearboxTypeID.UUID.String()
	}
	for i, img := range imgs {
		resp.Images[i] = models.ImageResponse{
			ID:           img.ID.String(),
			URL:          h.blobs.PublicURL(img.StorageKey),
			ThumbnailURL: h.blobs.PublicURL(images.ThumbnailKey(img.StorageKey)),
			IsPrimary:    img.IsPrimary,
			CreatedAt:    img.CreatedAt,
		}
	}
	return resp
}
