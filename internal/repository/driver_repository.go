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

type driverRepository struct {
	pool *pgxpool.Pool
}

// NewDriverRepository wires a repository backed by pgxpool.
func NewDriverRepository(pool *pgxpool.Pool) DriverRepository {
	return &driverRepository{pool: pool}
}

func (r *driverRepository) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	if r.pool == nil {
		return domain.Driver{}, fmt.Errorf("driver repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO drivers (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		driver.ID,
		driver.Name,
		driver.CreatedAt,
		driver.UpdatedAt,
	)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("failed to create driver: %w", err)
	}

	return driver, nil
}

func (r *driverRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	if r.pool == nil {
		return domain.Driver{}, fmt.Errorf("driver repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, created_at, updated_at FROM drivers WHERE id = $1`,
		id,
	)
	return scanDriver(row)
}

func (r *driverRepository) FindByName(ctx context.Context, name string) (domain.Driver, error) {
	if r.pool == nil {
		return domain.Driver{}, fmt.Errorf("driver repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, created_at, updated_at FROM drivers WHERE lower(name) = lower($1)`,
		name,
	)
	return scanDriver(row)
}

func (r *driverRepository) List(ctx context.Context) ([]domain.Driver, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("driver repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, created_at, updated_at FROM drivers ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []domain.Driver{}
	for rows.Next() {
		var driver domain.Driver
		if scanErr := rows.Scan(&driver.ID, &driver.Name, &driver.CreatedAt, &driver.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", scanErr)
		}
		drivers = append(drivers, driver)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate drivers: %w", rowsErr)
	}

	return drivers, nil
}

func scanDriver(row pgx.Row) (domain.Driver, error) {
	var driver domain.Driver
	if err := row.Scan(&driver.ID, &driver.Name, &driver.CreatedAt, &driver.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Driver{}, ErrNotFound
		}
		return domain.Driver{}, fmt.Errorf("failed to scan driver: %w", err)
	}
	return driver, nil
}
