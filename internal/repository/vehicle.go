package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pingme/pingme/internal/model"
)

// ErrVehicleNotFound indicates no vehicle matched the lookup.
var ErrVehicleNotFound = errors.New("vehicle not found")

// CreateVehicle inserts a new vehicle record.
func (r *Repository) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, vehicle_number, vehicle_type, brand_model, registration_year, document_path, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.VehicleNumber,
		vehicle.VehicleType,
		vehicle.BrandModel,
		vehicle.RegistrationYear,
		vehicle.DocumentPath,
		vehicle.OwnerID,
		vehicle.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

// GetVehicleByID retrieves a vehicle by its ID.
func (r *Repository) GetVehicleByID(ctx context.Context, id string) (*model.Vehicle, error) {
	query := `
		SELECT id, vehicle_number, vehicle_type, brand_model, registration_year, document_path, owner_id, created_at
		FROM vehicles
		WHERE id = $1
	`

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return vehicle, nil
}

// ListVehiclesByOwner retrieves all vehicles submitted by a user, newest
// first.
func (r *Repository) ListVehiclesByOwner(ctx context.Context, ownerID string) ([]*model.Vehicle, error) {
	query := `
		SELECT id, vehicle_number, vehicle_type, brand_model, registration_year, document_path, owner_id, created_at
		FROM vehicles
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*model.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}

	return vehicles, nil
}

func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(
		&v.ID,
		&v.VehicleNumber,
		&v.VehicleType,
		&v.BrandModel,
		&v.RegistrationYear,
		&v.DocumentPath,
		&v.OwnerID,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
