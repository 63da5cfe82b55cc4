package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/fleetledger/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository wires a repository backed by pgxpool.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	if r.pool == nil {
		return domain.Vehicle{}, fmt.Errorf("vehicle repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO vehicles (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		vehicle.ID,
		vehicle.Name,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("failed to create vehicle: %w", err)
	}

	return vehicle, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	if r.pool == nil {
		return domain.Vehicle{}, fmt.Errorf("vehicle repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, created_at, updated_at FROM vehicles WHERE id = $1`,
		id,
	)
	return scanVehicle(row)
}

func (r *vehicleRepository) FindByName(ctx context.Context, name string) (domain.Vehicle, error) {
	if r.pool == nil {
		return domain.Vehicle{}, fmt.Errorf("vehicle repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, created_at, updated_at FROM vehicles WHERE lower(name) = lower($1)`,
		name,
	)
	return scanVehicle(row)
}

func (r *vehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("vehicle repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, created_at, updated_at FROM vehicles ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		var vehicle domain.Vehicle
		if scanErr := rows.Scan(&vehicle.ID, &vehicle.Name, &vehicle.CreatedAt, &vehicle.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", scanErr)
		}
		vehicles = append(vehicles, vehicle)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", rowsErr)
	}

	return vehicles, nil
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := row.Scan(&vehicle.ID, &vehicle.Name, &vehicle.CreatedAt, &vehicle.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, ErrNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("failed to scan vehicle: %w", err)
	}
	return vehicle, nil
}
