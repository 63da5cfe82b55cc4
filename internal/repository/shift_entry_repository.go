package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpattn/fleetledger/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type shiftEntryRepository struct {
	pool *pgxpool.Pool
}

// NewShiftEntryRepository wires a repository backed by pgxpool.
func NewShiftEntryRepository(pool *pgxpool.Pool) ShiftEntryRepository {
	return &shiftEntryRepository{pool: pool}
}

func (r *shiftEntryRepository) Create(ctx context.Context, entry domain.ShiftEntry) (domain.ShiftEntry, error) {
	if r.pool == nil {
		return domain.ShiftEntry{}, fmt.Errorf("shift entry repository not initialized")
	}

	earnings, err := json.Marshal(entry.Earnings)
	if err != nil {
		return domain.ShiftEntry{}, fmt.Errorf("failed to encode earnings: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO shift_entries (id, driver_id, vehicle_id, entry_date, earnings, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.DriverID,
		entry.VehicleID,
		entry.Date,
		earnings,
		entry.Notes,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return domain.ShiftEntry{}, fmt.Errorf("failed to create shift entry: %w", err)
	}

	return entry, nil
}

func (r *shiftEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ShiftEntry, error) {
	if r.pool == nil {
		return domain.ShiftEntry{}, fmt.Errorf("shift entry repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, driver_id, vehicle_id, entry_date, earnings, notes, created_at, updated_at
		 FROM shift_entries WHERE id = $1`,
		id,
	)
	return scanShiftEntry(row)
}

func (r *shiftEntryRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit int, offset int) ([]domain.ShiftEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("shift entry repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, driver_id, vehicle_id, entry_date, earnings, notes, created_at, updated_at
		 FROM shift_entries
		 WHERE driver_id = $1
		 ORDER BY entry_date DESC
		 LIMIT $2 OFFSET $3`,
		driverID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.ShiftEntry{}
	for rows.Next() {
		entry, scanErr := scanShiftEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate shift entries: %w", rowsErr)
	}

	return entries, nil
}

func scanShiftEntry(row pgx.Row) (domain.ShiftEntry, error) {
	var (
		entry    domain.ShiftEntry
		earnings []byte
	)
	if err := row.Scan(
		&entry.ID,
		&entry.DriverID,
		&entry.VehicleID,
		&entry.Date,
		&earnings,
		&entry.Notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ShiftEntry{}, ErrNotFound
		}
		return domain.ShiftEntry{}, fmt.Errorf("failed to scan shift entry: %w", err)
	}

	if len(earnings) > 0 {
		if err := json.Unmarshal(earnings, &entry.Earnings); err != nil {
			return domain.ShiftEntry{}, fmt.Errorf("failed to decode earnings: %w", err)
		}
	}

	return entry, nil
}
