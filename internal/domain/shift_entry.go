package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShiftEntry records one driver/vehicle shift for a business date,
// with per-provider earnings. Date is always midnight UTC; CreatedAt
// and UpdatedAt are the wall-clock audit times, which for imported
// entries differ from the business date.
type ShiftEntry struct {
	ID        uuid.UUID          `json:"id"`
	DriverID  uuid.UUID          `json:"driver_id"`
	VehicleID uuid.UUID          `json:"vehicle_id"`
	Date      time.Time          `json:"date"`
	Earnings  map[string]float64 `json:"earnings"`
	Notes     string             `json:"notes"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewShiftEntry creates a shift entry with a fresh id. The business
// date is taken as given; audit timestamps are set to now.
func NewShiftEntry(driverID, vehicleID uuid.UUID, date time.Time, earnings map[string]float64, notes string) ShiftEntry {
	now := time.Now().UTC()
	return ShiftEntry{
		ID:        uuid.New(),
		DriverID:  driverID,
		VehicleID: vehicleID,
		Date:      date,
		Earnings:  copyEarnings(earnings),
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalEarnings sums all provider amounts.
func (e ShiftEntry) TotalEarnings() float64 {
	var total float64
	for _, amount := range e.Earnings {
		total += amount
	}
	return total
}

func copyEarnings(earnings map[string]float64) map[string]float64 {
	copied := make(map[string]float64, len(earnings))
	for provider, amount := range earnings {
		copied[provider] = amount
	}
	return copied
}
