package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/rpattn/fleetledger/internal/domain"
	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/google/uuid"
)

// Service streams shift entries out as CSV. Entries are read in pages
// so a large history never has to sit in memory at once.
type Service struct {
	drivers  repository.DriverRepository
	vehicles repository.VehicleRepository
	entries  repository.ShiftEntryRepository

	providers []string
	pageSize  int
}

type Option func(*Service)

// WithPageSize overrides the page size used when reading entries.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewService wires an export service. providers fixes the earnings
// column set so every exported row has the same width.
func NewService(
	drivers repository.DriverRepository,
	vehicles repository.VehicleRepository,
	entries repository.ShiftEntryRepository,
	providers []string,
	opts ...Option,
) *Service {
	service := &Service{
		drivers:   drivers,
		vehicles:  vehicles,
		entries:   entries,
		providers: append([]string(nil), providers...),
		pageSize:  500,
	}
	sort.Strings(service.providers)
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Header returns the column set of the exported CSV.
func (s *Service) Header() []string {
	header := []string{"date", "driver", "vehicle"}
	header = append(header, s.providers...)
	return append(header, "total", "notes")
}

// ExportDriverEntries writes the driver's shift history to w as CSV
// and returns the number of data rows written.
func (s *Service) ExportDriverEntries(ctx context.Context, w io.Writer, driverID uuid.UUID) (int, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return 0, fmt.Errorf("load driver: %w", err)
	}

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(s.Header()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	vehicleNames := make(map[uuid.UUID]string)
	rowsExported := 0
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return rowsExported, err
		}

		page, err := s.entries.ListByDriver(ctx, driverID, s.pageSize, offset)
		if err != nil {
			return rowsExported, fmt.Errorf("list entries: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, entry := range page {
			row, err := s.formatRow(ctx, driver.Name, entry, vehicleNames)
			if err != nil {
				return rowsExported, err
			}
			if err := csvWriter.Write(row); err != nil {
				return rowsExported, fmt.Errorf("write entry row: %w", err)
			}
			rowsExported++
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return rowsExported, fmt.Errorf("flush rows: %w", err)
		}

		if len(page) < s.pageSize {
			break
		}
		offset += s.pageSize
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return rowsExported, fmt.Errorf("final flush: %w", err)
	}
	return rowsExported, nil
}

func (s *Service) formatRow(ctx context.Context, driverName string, entry domain.ShiftEntry, vehicleNames map[uuid.UUID]string) ([]string, error) {
	vehicleName, ok := vehicleNames[entry.VehicleID]
	if !ok {
		vehicle, err := s.vehicles.GetByID(ctx, entry.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("load vehicle: %w", err)
		}
		vehicleName = vehicle.Name
		vehicleNames[entry.VehicleID] = vehicleName
	}

	row := make([]string, 0, len(s.providers)+5)
	row = append(row, entry.Date.UTC().Format(time.DateOnly), driverName, vehicleName)
	for _, provider := range s.providers {
		row = append(row, formatAmount(entry.Earnings[provider]))
	}
	row = append(row, formatAmount(entry.TotalEarnings()), entry.Notes)
	return row, nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
