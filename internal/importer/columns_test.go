package importer

import (
	"errors"
	"reflect"
	"testing"
)

var testProviders = []Provider{
	{Name: "uber"},
	{Name: "careem"},
}

func TestColumnMapperFindsDateInAnyOrderAndCase(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)

	headers := [][]string{
		{"Date", "Driver", "Vehicle"},
		{"driver", "vehicle", "DATE"},
		{"Vehicle", " fecha ", "Driver"},
		{"Driver", "Work Date", "Vehicle"},
		{"Datum", "Conductor", "Auto"},
	}
	for _, header := range headers {
		mapping, err := mapper.Map(header)
		if err != nil {
			t.Fatalf("map %v returned error: %v", header, err)
		}
		if mapping.Date < 0 {
			t.Fatalf("expected a date column in %v", header)
		}
	}
}

func TestColumnMapperIsIdempotent(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)
	header := []string{"Date", "Driver", "Vehicle", "Uber", "Careem", "Notes"}

	first, err := mapper.Map(header)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}
	second, err := mapper.Map(header)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical mappings, got %+v and %+v", first, second)
	}
}

func TestColumnMapperFullHeader(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)

	mapping, err := mapper.Map([]string{"Date", "Driver", "Vehicle", "Uber", "Careem", "Notes"})
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if mapping.Date != 0 || mapping.Driver != 1 || mapping.Vehicle != 2 || mapping.Notes != 5 {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
	if mapping.Providers["uber"] != 3 || mapping.Providers["careem"] != 4 {
		t.Fatalf("unexpected provider mapping: %+v", mapping.Providers)
	}
	if len(mapping.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", mapping.Warnings)
	}
}

func TestColumnMapperMissingDateAborts(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)

	_, err := mapper.Map([]string{"Foo", "Bar", "Baz"})
	if err == nil {
		t.Fatal("expected mapping error")
	}

	var mappingErr *MappingError
	if !errors.As(err, &mappingErr) {
		t.Fatalf("expected MappingError, got %T", err)
	}
	if mappingErr.Field != FieldDate {
		t.Fatalf("expected missing DATE, got %s", mappingErr.Field)
	}
}

func TestColumnMapperMissingOptionalColumnsWarn(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)

	mapping, err := mapper.Map([]string{"Date"})
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	// driver, vehicle, uber, careem: four session warnings; the
	// missing notes column is silent.
	if len(mapping.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %+v", mapping.Warnings)
	}
	for _, warning := range mapping.Warnings {
		if warning.RowNumber != 0 || warning.Severity != SeverityWarning {
			t.Fatalf("expected session level warning, got %+v", warning)
		}
	}
	if mapping.Driver != -1 || mapping.Vehicle != -1 || mapping.Notes != -1 {
		t.Fatalf("expected unmapped optional columns, got %+v", mapping)
	}
}

func TestColumnMapperNeverRemapsClaimedColumn(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)

	// "Date" is claimed by DATE; the generic "name" alias for DRIVER
	// must not steal it, and lands on the second column instead.
	mapping, err := mapper.Map([]string{"Date", "Name"})
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}
	if mapping.Date != 0 {
		t.Fatalf("expected date at column 0, got %d", mapping.Date)
	}
	if mapping.Driver != 1 {
		t.Fatalf("expected driver at column 1, got %d", mapping.Driver)
	}
}

func TestColumnMapperSubstringMatching(t *testing.T) {
	mapper := NewColumnMapper(testProviders, nil)

	mapping, err := mapper.Map([]string{"Shift Date:", "Driver Name", "Vehicle Plate", "Uber Earnings (AED)"})
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}
	if mapping.Date != 0 || mapping.Driver != 1 || mapping.Vehicle != 2 {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
	if mapping.Providers["uber"] != 3 {
		t.Fatalf("expected uber at column 3, got %d", mapping.Providers["uber"])
	}
}

func TestColumnMapperExtraAliases(t *testing.T) {
	mapper := NewColumnMapper(testProviders, map[string][]string{
		"DATE": {"jour"},
	})

	mapping, err := mapper.Map([]string{"Jour", "Driver"})
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}
	if mapping.Date != 0 {
		t.Fatalf("expected date at column 0, got %d", mapping.Date)
	}
}
