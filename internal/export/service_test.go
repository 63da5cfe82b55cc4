package export

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rpattn/fleetledger/internal/domain"
	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/google/uuid"
)

type stubDriverRepo struct {
	driver domain.Driver
}

func (s *stubDriverRepo) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	return domain.Driver{}, errors.New("not implemented")
}

func (s *stubDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	if s.driver.ID == id {
		return s.driver, nil
	}
	return domain.Driver{}, repository.ErrNotFound
}

func (s *stubDriverRepo) FindByName(ctx context.Context, name string) (domain.Driver, error) {
	return domain.Driver{}, errors.New("not implemented")
}

func (s *stubDriverRepo) List(ctx context.Context) ([]domain.Driver, error) {
	return nil, errors.New("not implemented")
}

type stubVehicleRepo struct {
	vehicle domain.Vehicle
}

func (s *stubVehicleRepo) Create(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	return domain.Vehicle{}, errors.New("not implemented")
}

func (s *stubVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	if s.vehicle.ID == id {
		return s.vehicle, nil
	}
	return domain.Vehicle{}, repository.ErrNotFound
}

func (s *stubVehicleRepo) FindByName(ctx context.Context, name string) (domain.Vehicle, error) {
	return domain.Vehicle{}, errors.New("not implemented")
}

func (s *stubVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	return nil, errors.New("not implemented")
}

type stubEntryRepo struct {
	entries []domain.ShiftEntry
}

func (s *stubEntryRepo) Create(ctx context.Context, entry domain.ShiftEntry) (domain.ShiftEntry, error) {
	return domain.ShiftEntry{}, errors.New("not implemented")
}

func (s *stubEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ShiftEntry, error) {
	return domain.ShiftEntry{}, errors.New("not implemented")
}

func (s *stubEntryRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, limit int, offset int) ([]domain.ShiftEntry, error) {
	if offset >= len(s.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

var _ repository.DriverRepository = (*stubDriverRepo)(nil)
var _ repository.VehicleRepository = (*stubVehicleRepo)(nil)
var _ repository.ShiftEntryRepository = (*stubEntryRepo)(nil)

func TestExportDriverEntries(t *testing.T) {
	driver := domain.NewDriver("John")
	vehicle := domain.NewVehicle("Toyota")
	date := time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC)
	entry := domain.NewShiftEntry(driver.ID, vehicle.ID, date,
		map[string]float64{"uber": 75.25, "careem": 50}, "night shift")

	service := NewService(
		&stubDriverRepo{driver: driver},
		&stubVehicleRepo{vehicle: vehicle},
		&stubEntryRepo{entries: []domain.ShiftEntry{entry}},
		[]string{"uber", "careem"},
	)

	var buf strings.Builder
	rows, err := service.ExportDriverEntries(context.Background(), &buf, driver.ID)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row, got %d", rows)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-reading csv failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}

	// Provider columns are sorted by name.
	wantHeader := []string{"date", "driver", "vehicle", "careem", "uber", "total", "notes"}
	for i, column := range wantHeader {
		if records[0][i] != column {
			t.Fatalf("unexpected header: %v", records[0])
		}
	}
	row := records[1]
	if row[0] != "2023-12-25" || row[1] != "John" || row[2] != "Toyota" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[3] != "50.00" || row[4] != "75.25" || row[5] != "125.25" {
		t.Fatalf("unexpected amounts: %v", row)
	}
	if row[6] != "night shift" {
		t.Fatalf("unexpected notes: %v", row)
	}
}

func TestExportDriverEntriesPagination(t *testing.T) {
	driver := domain.NewDriver("John")
	vehicle := domain.NewVehicle("Toyota")

	entries := make([]domain.ShiftEntry, 7)
	for i := range entries {
		date := time.Date(2024, time.June, i+1, 0, 0, 0, 0, time.UTC)
		entries[i] = domain.NewShiftEntry(driver.ID, vehicle.ID, date,
			map[string]float64{"uber": 10}, "")
	}

	service := NewService(
		&stubDriverRepo{driver: driver},
		&stubVehicleRepo{vehicle: vehicle},
		&stubEntryRepo{entries: entries},
		[]string{"uber"},
		WithPageSize(3),
	)

	var buf strings.Builder
	rows, err := service.ExportDriverEntries(context.Background(), &buf, driver.ID)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	if rows != 7 {
		t.Fatalf("expected 7 rows, got %d", rows)
	}
}

func TestExportUnknownDriver(t *testing.T) {
	service := NewService(
		&stubDriverRepo{driver: domain.NewDriver("John")},
		&stubVehicleRepo{},
		&stubEntryRepo{},
		[]string{"uber"},
	)

	var buf strings.Builder
	_, err := service.ExportDriverEntries(context.Background(), &buf, uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
