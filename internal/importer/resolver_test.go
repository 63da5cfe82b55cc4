package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/rpattn/fleetledger/internal/domain"
)

func TestResolverCreatesEachNewNameOnce(t *testing.T) {
	drivers := &stubDriverRepo{}
	vehicles := &stubVehicleRepo{}
	resolver := NewEntityResolver(drivers, vehicles)

	records := []RowRecord{
		{RowNumber: 1, DriverName: "Maria", VehicleName: "Honda Civic"},
		{RowNumber: 2, DriverName: "maria", VehicleName: "HONDA CIVIC"},
		{RowNumber: 3, DriverName: "MARIA", VehicleName: "Honda Civic"},
	}

	resolution, err := resolver.Resolve(context.Background(), records)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if len(drivers.created) != 1 {
		t.Fatalf("expected exactly one driver created, got %d", len(drivers.created))
	}
	if len(vehicles.created) != 1 {
		t.Fatalf("expected exactly one vehicle created, got %d", len(vehicles.created))
	}
	if resolution.Created[KindDriver] != 1 || resolution.Created[KindVehicle] != 1 {
		t.Fatalf("unexpected created counts: %+v", resolution.Created)
	}

	first, ok := resolution.DriverID("Maria")
	if !ok {
		t.Fatal("expected Maria to resolve")
	}
	second, ok := resolution.DriverID("MARIA")
	if !ok {
		t.Fatal("expected MARIA to resolve")
	}
	if first != second {
		t.Fatalf("expected one id for both spellings, got %v and %v", first, second)
	}
}

func TestResolverMatchesExistingEntities(t *testing.T) {
	existing := domain.NewDriver("John")
	drivers := &stubDriverRepo{}
	drivers.add(existing)
	vehicles := &stubVehicleRepo{}
	resolver := NewEntityResolver(drivers, vehicles)

	records := []RowRecord{{RowNumber: 1, DriverName: "JOHN", VehicleName: "Toyota"}}

	resolution, err := resolver.Resolve(context.Background(), records)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if len(drivers.created) != 0 {
		t.Fatalf("expected no driver creation, got %d", len(drivers.created))
	}
	id, ok := resolution.DriverID("john")
	if !ok || id != existing.ID {
		t.Fatalf("expected existing id %v, got %v (ok=%v)", existing.ID, id, ok)
	}
}

func TestResolverIsolatesCreationFailures(t *testing.T) {
	drivers := &stubDriverRepo{failNames: map[string]error{"maria": errors.New("db down")}}
	vehicles := &stubVehicleRepo{}
	resolver := NewEntityResolver(drivers, vehicles)

	records := []RowRecord{
		{RowNumber: 1, DriverName: "Maria", VehicleName: "Honda"},
		{RowNumber: 2, DriverName: "Bob", VehicleName: "Honda"},
	}

	resolution, err := resolver.Resolve(context.Background(), records)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if _, ok := resolution.DriverID("Maria"); ok {
		t.Fatal("expected Maria to stay unresolved")
	}
	if message, failed := resolution.FailureFor(KindDriver, "maria"); !failed || message == "" {
		t.Fatalf("expected recorded failure for maria, got %q (failed=%v)", message, failed)
	}
	if _, ok := resolution.DriverID("Bob"); !ok {
		t.Fatal("expected Bob to resolve despite Maria failing")
	}
	if resolution.Created[KindDriver] != 1 {
		t.Fatalf("expected one created driver, got %d", resolution.Created[KindDriver])
	}
}
