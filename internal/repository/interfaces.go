package repository

import (
	"context"
	"errors"

	"github.com/rpattn/fleetledger/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// DriverRepository defines the interface for driver operations.
type DriverRepository interface {
	Create(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	// FindByName matches case-insensitively on the exact name.
	FindByName(ctx context.Context, name string) (domain.Driver, error)
	List(ctx context.Context) ([]domain.Driver, error)
}

// VehicleRepository defines the interface for vehicle operations.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	// FindByName matches case-insensitively on the exact name.
	FindByName(ctx context.Context, name string) (domain.Vehicle, error)
	List(ctx context.Context) ([]domain.Vehicle, error)
}

// ShiftEntryRepository defines the interface for shift entry operations.
type ShiftEntryRepository interface {
	Create(ctx context.Context, entry domain.ShiftEntry) (domain.ShiftEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ShiftEntry, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit int, offset int) ([]domain.ShiftEntry, error)
}

// ImportLogRepository stores import issues for observability.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error)
}
