package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a car registered to the fleet.
type Vehicle struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVehicle creates a vehicle with a fresh id and audit timestamps.
func NewVehicle(name string) Vehicle {
	now := time.Now().UTC()
	return Vehicle{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
