package domain

import (
	"time"

	"github.com/google/uuid"
)

// Driver is a person that runs shifts for the fleet.
type Driver struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDriver creates a driver with a fresh id and audit timestamps.
func NewDriver(name string) Driver {
	now := time.Now().UTC()
	return Driver{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
