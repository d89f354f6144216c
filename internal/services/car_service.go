package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carmarket-backend/internal/database"
	"carmarket-backend/internal/images"
	"carmarket-backend/internal/models"
	"carmarket-backend/internal/storage"
)

const (
	// MaxImagesPerSubmission bounds how many files one create/update may carry.
	MaxImagesPerSubmission = 10
	// MaxImageBytes bounds the raw size of a single upload.
	MaxImageBytes = 15 << 20
)

// ImageUpload is one in-flight file from a car submission.
type ImageUpload struct {
	Filename string
	Data     []byte
	Primary  bool
}

// CarService orchestrates car CRUD: validation first, then blob writes and
// row mutations under one transaction, then best-effort thumbnails after
// commit.
type CarService struct {
	store  *database.Store
	blobs  storage.BlobStore
	logger *zap.SugaredLogger
}

func NewCarService(store *database.Store, blobs storage.BlobStore, logger *zap.SugaredLogger) *CarService {
	return &CarService{store: store, blobs: blobs, logger: logger}
}

// CreateCar validates the form and the image set, then commits the car row
// and all image rows atomically. Original blobs are written before commit;
// a failed original write aborts the whole operation. Thumbnails are
// generated after commit and never fail the request.
func (s *CarService) CreateCar(ctx context.Context, ownerID uuid.UUID, form models.CarForm, uploads []ImageUpload) (*models.Car, error) {
	fields, verr := s.validateCarForm(ctx, form)
	validateUploads(uploads, verr)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	car := &models.Car{
		ID:             uuid.New(),
		MakeID:         fields.makeID,
		ModelID:        fields.modelID,
		BodyTypeID:     fields.bodyTypeID,
		ColorID:        fields.colorID,
		FuelTypeID:     fields.fuelTypeID,
		GearboxTypeID:  fields.gearboxTypeID,
		Mileage:        form.Mileage,
		EngineCapacity: form.EngineCapacity,
		Year:           form.Year,
		Price:          form.Price,
		Description:    form.Description,
		OwnerID:        ownerID,
	}

	prepared := s.prepareUploads(uploads)

	err := s.store.WithTx(ctx, func(tx database.Querier) error {
		if err := s.store.CreateCar(ctx, tx, car); err != nil {
			return err
		}
		return s.persistUploads(ctx, tx, car.ID, prepared)
	})
	if err != nil {
		return nil, mapSaveError(err)
	}

	s.ensureThumbnails(ctx, prepared)
	return car, nil
}

// UpdateCar applies field changes, image removals, new uploads and a
// primary flip for an owner's car as one atomic unit. A car owned by
// someone else reports ErrNotFound.
func (s *CarService) UpdateCar(ctx context.Context, ownerID, carID uuid.UUID, form models.CarForm, uploads []ImageUpload) (*models.Car, error) {
	car, err := s.store.GetOwnedCar(ctx, carID, ownerID)
	if err != nil {
		return nil, err
	}

	fields, verr := s.validateCarForm(ctx, form)
	validateUploads(uploads, verr)

	removeIDs := make([]uuid.UUID, 0, len(form.RemoveImageIDs))
	for _, raw := range form.RemoveImageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Fields["remove_image_ids"] = "contains an invalid image id"
			break
		}
		removeIDs = append(removeIDs, id)
	}

	var primaryImageID uuid.UUID
	if form.PrimaryImageID != "" {
		primaryImageID, err = uuid.Parse(form.PrimaryImageID)
		if err != nil {
			verr.Fields["primary_image_id"] = "is not a valid image id"
		}
	}
	validatePrimaryDesignation(form.PrimaryImageID, uploads, verr)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	existing, err := s.store.ListImages(ctx, carID)
	if err != nil {
		return nil, err
	}
	keysByID := make(map[uuid.UUID]string, len(existing))
	for _, img := range existing {
		keysByID[img.ID] = img.StorageKey
	}

	validatePrimaryTarget(primaryImageID, removeIDs, keysByID, verr)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	car.MakeID = fields.makeID
	car.ModelID = fields.modelID
	car.BodyTypeID = fields.bodyTypeID
	car.ColorID = fields.colorID
	car.FuelTypeID = fields.fuelTypeID
	car.GearboxTypeID = fields.gearboxTypeID
	car.Mileage = form.Mileage
	car.EngineCapacity = form.EngineCapacity
	car.Year = form.Year
	car.Price = form.Price
	car.Description = form.Description

	prepared := s.prepareUploads(uploads)

	err = s.store.WithTx(ctx, func(tx database.Querier) error {
		if err := s.store.UpdateCar(ctx, tx, car); err != nil {
			return err
		}
		for _, id := range removeIDs {
			if err := s.store.DeleteImage(ctx, tx, carID, id); err != nil {
				return err
			}
		}
		if err := s.persistUploads(ctx, tx, carID, prepared); err != nil {
			return err
		}
		if primaryImageID != uuid.Nil {
			if err := s.store.SetPrimaryImage(ctx, tx, carID, primaryImageID); err != nil {
				// The image was validated against the car above, so a miss
				// here means a concurrent writer removed it.
				if errors.Is(err, database.ErrNotFound) {
					return errPrimaryImageGone
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapSaveError(err)
	}

	for _, id := range removeIDs {
		if key, ok := keysByID[id]; ok {
			s.deleteBlobs(ctx, key)
		}
	}
	s.ensureThumbnails(ctx, prepared)
	return car, nil
}

// DeleteCar removes an owner's car; the database cascades the image rows
// and blob cleanup happens afterwards, best-effort.
func (s *CarService) DeleteCar(ctx context.Context, ownerID, carID uuid.UUID) error {
	if _, err := s.store.GetOwnedCar(ctx, carID, ownerID); err != nil {
		return err
	}
	imgs, err := s.store.ListImages(ctx, carID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCar(ctx, carID, ownerID); err != nil {
		return err
	}

	for _, img := range imgs {
		s.deleteBlobs(ctx, img.StorageKey)
	}
	s.logger.Infow("car deleted", "car_id", carID, "owner_id", ownerID)
	return nil
}

// preparedUpload is an upload after the normalization stage: the payload
// has been re-encoded (or kept raw when decoding failed) and the final
// storage key decided. Normalization runs exactly once, here.
type preparedUpload struct {
	key     string
	data    []byte
	primary bool
}

func (s *CarService) prepareUploads(uploads []ImageUpload) []preparedUpload {
	prepared := make([]preparedUpload, 0, len(uploads))
	for _, up := range uploads {
		key := images.UploadKey(up.Filename)
		data := up.Data

		normalized, err := images.Normalize(up.Data, images.OriginalBound)
		if err != nil {
			// Corrupt or unsupported payload: store the raw bytes under the
			// policy key and carry on; the record must still be created.
			s.logger.Warnw("image normalization failed, storing raw upload",
				"filename", up.Filename, "error", err)
		} else {
			data = normalized
			key = images.JPEGKey(key)
		}

		prepared = append(prepared, preparedUpload{key: key, data: data, primary: up.Primary})
	}
	return prepared
}

func (s *CarService) persistUploads(ctx context.Context, tx database.Querier, carID uuid.UUID, prepared []preparedUpload) error {
	for _, up := range prepared {
		// The original write is fatal: if storage is down the whole save
		// rolls back.
		if err := s.blobs.Save(ctx, up.key, up.data); err != nil {
			return err
		}
		img := &models.Image{
			ID:         uuid.New(),
			CarID:      carID,
			StorageKey: up.key,
			IsPrimary:  up.primary,
		}
		if err := s.store.SaveImage(ctx, tx, img); err != nil {
			return err
		}
	}
	return nil
}

func (s *CarService) ensureThumbnails(ctx context.Context, prepared []preparedUpload) {
	for _, up := range prepared {
		res := images.EnsureThumbnail(ctx, s.blobs, up.key)
		if res.Status == images.ThumbnailFailed {
			s.logger.Warnw("thumbnail generation failed",
				"original_key", up.key, "thumbnail_key", res.Key, "error", res.Err)
		}
	}
}

func (s *CarService) deleteBlobs(ctx context.Context, originalKey string) {
	if err := s.blobs.Delete(ctx, originalKey); err != nil {
		s.logger.Warnw("failed to delete original blob", "key", originalKey, "error", err)
	}
	thumbKey := images.ThumbnailKey(originalKey)
	if err := s.blobs.Delete(ctx, thumbKey); err != nil {
		s.logger.Warnw("failed to delete thumbnail blob", "key", thumbKey, "error", err)
	}
}

type carFields struct {
	makeID        uuid.UUID
	modelID       uuid.UUID
	bodyTypeID    uuid.NullUUID
	colorID       uuid.NullUUID
	fuelTypeID    uuid.NullUUID
	gearboxTypeID uuid.NullUUID
}

func (s *CarService) validateCarForm(ctx context.Context, form models.CarForm) (carFields, *ValidationError) {
	verr := newValidationError()
	var fields carFields

	fields.makeID = s.requiredLookup(ctx, "makes", "make_id", form.MakeID, verr)
	fields.modelID = s.requiredLookup(ctx, "models", "model_id", form.ModelID, verr)
	fields.bodyTypeID = s.optionalLookup(ctx, "body_types", "body_type_id", form.BodyTypeID, verr)
	fields.colorID = s.optionalLookup(ctx, "colors", "color_id", form.ColorID, verr)
	fields.fuelTypeID = s.optionalLookup(ctx, "fuel_types", "fuel_type_id", form.FuelTypeID, verr)
	fields.gearboxTypeID = s.optionalLookup(ctx, "gearbox_types", "gearbox_type_id", form.GearboxTypeID, verr)

	if form.Mileage < 0 {
		verr.Fields["mileage"] = "mileage must not be negative"
	}
	if form.EngineCapacity < 0 {
		verr.Fields["engine_capacity"] = "engine capacity must not be negative"
	}
	if form.Price < 0 {
		verr.Fields["price"] = "price must not be negative"
	}
	if form.Year < 1886 || form.Year > time.Now().Year()+1 {
		verr.Fields["year"] = "year is out of range"
	}

	return fields, verr
}

func (s *CarService) requiredLookup(ctx context.Context, table, field, raw string, verr *ValidationError) uuid.UUID {
	if raw == "" {
		verr.Fields[field] = "is required"
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		verr.Fields[field] = "is not a valid id"
		return uuid.Nil
	}
	exists, err := s.store.LookupExists(ctx, table, id)
	if err != nil {
		s.logger.Errorw("lookup check failed", "table", table, "error", err)
		verr.Fields[field] = "could not be verified"
		return uuid.Nil
	}
	if !exists {
		verr.Fields[field] = "does not exist"
		return uuid.Nil
	}
	return id
}

func (s *CarService) optionalLookup(ctx context.Context, table, field, raw string, verr *ValidationError) uuid.NullUUID {
	if raw == "" {
		return uuid.NullUUID{}
	}
	id := s.requiredLookup(ctx, table, field, raw, verr)
	if id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

func validateUploads(uploads []ImageUpload, verr *ValidationError) {
	if len(uploads) > MaxImagesPerSubmission {
		verr.Fields["images"] = "too many images in one submission"
		return
	}
	primaries := 0
	for _, up := range uploads {
		if len(up.Data) == 0 {
			verr.Fields["images"] = "contains an empty file"
		}
		if len(up.Data) > MaxImageBytes {
			verr.Fields["images"] = "contains a file that is too large"
		}
		if up.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		verr.Fields["images"] = "only one image can be primary"
	}
}

// validatePrimaryDesignation rejects a submission that designates a
// primary twice: once through an uploaded file and once by promoting an
// existing image. Only one of the two channels may be used.
func validatePrimaryDesignation(primaryImageID string, uploads []ImageUpload, verr *ValidationError) {
	if primaryImageID == "" {
		return
	}
	for _, up := range uploads {
		if up.Primary {
			verr.Fields["primary_image_id"] = "cannot be combined with a primary new image"
			return
		}
	}
}

// validatePrimaryTarget checks that the image being promoted belongs to
// the car and is not removed by the same submission.
func validatePrimaryTarget(primaryImageID uuid.UUID, removeIDs []uuid.UUID, keysByID map[uuid.UUID]string, verr *ValidationError) {
	if primaryImageID == uuid.Nil {
		return
	}
	if _, ok := keysByID[primaryImageID]; !ok {
		verr.Fields["primary_image_id"] = "does not refer to an image of this car"
		return
	}
	for _, id := range removeIDs {
		if id == primaryImageID {
			verr.Fields["primary_image_id"] = "cannot promote an image that is being removed"
			return
		}
	}
}

// errPrimaryImageGone marks a promotion target that vanished between
// validation and the transaction.
var errPrimaryImageGone = errors.New("primary image no longer exists")

// mapSaveError converts transaction failures that trace back to the
// submission into validation-style errors; everything else passes
// through untouched.
func mapSaveError(err error) error {
	if errors.Is(err, database.ErrDuplicatePrimary) {
		return &ValidationError{Fields: map[string]string{
			"images": "car already has a primary image",
		}}
	}
	if errors.Is(err, errPrimaryImageGone) {
		return &ValidationError{Fields: map[string]string{
			"primary_image_id": "does not refer to an image of this car",
		}}
	}
	return err
}
