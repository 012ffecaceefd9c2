package model

import "time"

// Vehicle represents a registered vehicle and its uploaded document.
// OwnerID references the user who submitted it; ownership is fixed at
// creation and never transferred.
type Vehicle struct {
	ID               string    `json:"id"`
	VehicleNumber    string    `json:"vehicle_number"`
	VehicleType      string    `json:"vehicle_type"`
	BrandModel       string    `json:"brand_model"`
	RegistrationYear int       `json:"registration_year"`
	DocumentPath     string    `json:"document_path"`
	OwnerID          string    `json:"owner_id"`
	CreatedAt        time.Time `json:"created_at"`
}
