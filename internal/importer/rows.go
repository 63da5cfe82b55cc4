package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholders substituted for missing optional fields. Rows are kept
// rather than dropped when only optional data is missing.
const (
	UnknownDriver  = "Unknown Driver"
	UnknownVehicle = "Unknown Vehicle"
)

// Severity classifies an import issue. An ERROR excludes its row from
// persistence; a WARNING means the row was kept with a substituted or
// defaulted value.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Issue is one row-scoped (or, with RowNumber 0, session-scoped)
// problem found during an import.
type Issue struct {
	RowNumber int      `json:"rowNumber"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// RowRecord is the validated in-memory form of one data row. It only
// lives between parsing and persistence.
type RowRecord struct {
	RowNumber   int
	Date        time.Time
	DriverName  string
	VehicleName string
	Earnings    map[string]float64
	Notes       string
}

// RowParser turns raw rows into RowRecords under a fixed column
// mapping and date convention.
type RowParser struct {
	dates     *DateParser
	providers []Provider
}

// NewRowParser builds a parser for the session's date order and
// provider set.
func NewRowParser(order DateOrder, providers []Provider) *RowParser {
	return &RowParser{dates: NewDateParser(order), providers: providers}
}

// ParseRow validates one raw row. A date failure returns ok=false with
// a single ERROR issue and no record; any other defect produces a
// WARNING and the record is still returned. rowNumber is 1-based over
// data rows.
func (p *RowParser) ParseRow(row []string, mapping ColumnMapping, rowNumber int) (RowRecord, []Issue, bool) {
	rawDate := cellAt(row, mapping.Date)
	date, err := p.dates.Parse(rawDate)
	if err != nil {
		issue := Issue{RowNumber: rowNumber, Severity: SeverityError, Message: err.Error()}
		return RowRecord{}, []Issue{issue}, false
	}

	record := RowRecord{
		RowNumber: rowNumber,
		Date:      date,
		Earnings:  make(map[string]float64, len(p.providers)),
		Notes:     cellAt(row, mapping.Notes),
	}

	var issues []Issue

	record.DriverName = cellAt(row, mapping.Driver)
	if record.DriverName == "" {
		record.DriverName = UnknownDriver
		issues = append(issues, Issue{
			RowNumber: rowNumber,
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("missing driver name, substituted %q", UnknownDriver),
		})
	}

	record.VehicleName = cellAt(row, mapping.Vehicle)
	if record.VehicleName == "" {
		record.VehicleName = UnknownVehicle
		issues = append(issues, Issue{
			RowNumber: rowNumber,
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("missing vehicle name, substituted %q", UnknownVehicle),
		})
	}

	for _, provider := range p.providers {
		raw := cellAt(row, mapping.Providers[provider.Name])
		if raw == "" {
			// A provider without earnings that day is expected, not
			// anomalous.
			record.Earnings[provider.Name] = 0
			continue
		}

		amount, err := parseAmount(raw)
		switch {
		case err != nil:
			record.Earnings[provider.Name] = 0
			issues = append(issues, Issue{
				RowNumber: rowNumber,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("invalid %s amount %q, defaulted to 0", provider.Name, raw),
			})
		case amount < 0:
			record.Earnings[provider.Name] = 0
			issues = append(issues, Issue{
				RowNumber: rowNumber,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("negative %s amount %q, defaulted to 0", provider.Name, raw),
			})
		default:
			record.Earnings[provider.Name] = amount
		}
	}

	return record, issues, true
}

// cellAt returns the trimmed cell at idx, or "" when the column is
// unmapped or the row is short.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount reads a currency cell, tolerating currency symbols and
// thousands separators.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	for _, symbol := range []string{"$", "€", "£", ","} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	return strconv.ParseFloat(cleaned, 64)
}
