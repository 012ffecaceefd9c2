package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/pingme/pingme/internal/model"
)

// VehicleStore is the persistence capability the vehicle service needs.
type VehicleStore interface {
	CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error
	GetVehicleByID(ctx context.Context, id string) (*model.Vehicle, error)
	ListVehiclesByOwner(ctx context.Context, ownerID string) ([]*model.Vehicle, error)
}

// DocumentSaver stores an uploaded document and returns its path.
type DocumentSaver interface {
	Save(src io.Reader, originalName string) (string, error)
	Remove(path string) error
}

// VehicleService creates vehicle records owned by the submitting user.
type VehicleService struct {
	vehicles VehicleStore
	docs     DocumentSaver
	validate *validator.Validate
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicles VehicleStore, docs DocumentSaver) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		docs:     docs,
		validate: validator.New(),
	}
}

// VehicleInput defines the submitted form fields. RegistrationYear
// arrives as the raw form value and must be numeric.
type VehicleInput struct {
	VehicleNumber    string `validate:"required"`
	VehicleType      string `validate:"required"`
	BrandModel       string `validate:"required"`
	RegistrationYear string `validate:"required"`
}

// SubmitVehicle validates the form, stores the uploaded document, and
// persists the record with ownership fixed to the submitting user. When
// the database write fails after the upload succeeded, the stored file
// is removed best-effort rather than leaked.
func (s *VehicleService) SubmitVehicle(ctx context.Context, owner model.User, input VehicleInput, document io.Reader, filename string) (*model.Vehicle, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	year, err := strconv.Atoi(input.RegistrationYear)
	if err != nil {
		return nil, fmt.Errorf("%w: registration year must be numeric", ErrValidation)
	}

	if document == nil {
		return nil, fmt.Errorf("%w: document upload is required", ErrValidation)
	}

	path, err := s.docs.Save(document, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	vehicle := &model.Vehicle{
		ID:               ulid.Make().String(),
		VehicleNumber:    input.VehicleNumber,
		VehicleType:      input.VehicleType,
		BrandModel:       input.BrandModel,
		RegistrationYear: year,
		DocumentPath:     path,
		OwnerID:          owner.ID,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.vehicles.CreateVehicle(ctx, vehicle); err != nil {
		if rmErr := s.docs.Remove(path); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return nil, fmt.Errorf("failed to save vehicle: %w", err)
	}

	return vehicle, nil
}

// ListVehicles returns the vehicles submitted by a user.
func (s *VehicleService) ListVehicles(ctx context.Context, ownerID string) ([]*model.Vehicle, error) {
	vehicles, err := s.vehicles.ListVehiclesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}
