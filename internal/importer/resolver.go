package importer

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rpattn/fleetledger/internal/domain"
	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/google/uuid"
)

// EntityKind names the auto-provisioned entity namespaces.
type EntityKind string

const (
	KindDriver  EntityKind = "driver"
	KindVehicle EntityKind = "vehicle"
)

// Resolution maps case-insensitive entity names to ids for every
// non-excluded row. Failed contains names whose creation failed; rows
// referencing them are downgraded to errors by the orchestrator.
type Resolution struct {
	DriverIDs  map[string]uuid.UUID
	VehicleIDs map[string]uuid.UUID
	Created    map[EntityKind]int
	Failed     map[EntityKind]map[string]string
}

// DriverID looks up the resolved id for a driver name.
func (r Resolution) DriverID(name string) (uuid.UUID, bool) {
	id, ok := r.DriverIDs[nameKey(name)]
	return id, ok
}

// VehicleID looks up the resolved id for a vehicle name.
func (r Resolution) VehicleID(name string) (uuid.UUID, bool) {
	id, ok := r.VehicleIDs[nameKey(name)]
	return id, ok
}

// FailureFor returns the recorded failure message for a name, if any.
func (r Resolution) FailureFor(kind EntityKind, name string) (string, bool) {
	message, ok := r.Failed[kind][nameKey(name)]
	return message, ok
}

// EntityResolver matches referenced driver and vehicle names against
// existing entities and creates exactly one entity per unknown name.
type EntityResolver struct {
	drivers  repository.DriverRepository
	vehicles repository.VehicleRepository
}

// NewEntityResolver builds a resolver over the two entity repositories.
func NewEntityResolver(drivers repository.DriverRepository, vehicles repository.VehicleRepository) *EntityResolver {
	return &EntityResolver{drivers: drivers, vehicles: vehicles}
}

// Resolve collects the distinct driver and vehicle names across all
// records (case-insensitively) and resolves each to an id, creating
// missing entities. One failed creation never aborts the run; it is
// recorded so only the referencing rows are excluded.
func (r *EntityResolver) Resolve(ctx context.Context, records []RowRecord) (Resolution, error) {
	resolution := Resolution{
		DriverIDs:  make(map[string]uuid.UUID),
		VehicleIDs: make(map[string]uuid.UUID),
		Created:    make(map[EntityKind]int),
		Failed: map[EntityKind]map[string]string{
			KindDriver:  {},
			KindVehicle: {},
		},
	}

	driverNames := distinctNames(records, func(rec RowRecord) string { return rec.DriverName })
	vehicleNames := distinctNames(records, func(rec RowRecord) string { return rec.VehicleName })

	for _, name := range driverNames {
		if err := ctx.Err(); err != nil {
			return resolution, err
		}
		key := nameKey(name)

		existing, err := r.drivers.FindByName(ctx, name)
		if err == nil {
			resolution.DriverIDs[key] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			resolution.Failed[KindDriver][key] = err.Error()
			continue
		}

		created, err := r.drivers.Create(ctx, domain.NewDriver(name))
		if err != nil {
			resolution.Failed[KindDriver][key] = err.Error()
			continue
		}
		resolution.DriverIDs[key] = created.ID
		resolution.Created[KindDriver]++
	}

	for _, name := range vehicleNames {
		if err := ctx.Err(); err != nil {
			return resolution, err
		}
		key := nameKey(name)

		existing, err := r.vehicles.FindByName(ctx, name)
		if err == nil {
			resolution.VehicleIDs[key] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			resolution.Failed[KindVehicle][key] = err.Error()
			continue
		}

		created, err := r.vehicles.Create(ctx, domain.NewVehicle(name))
		if err != nil {
			resolution.Failed[KindVehicle][key] = err.Error()
			continue
		}
		resolution.VehicleIDs[key] = created.ID
		resolution.Created[KindVehicle]++
	}

	return resolution, nil
}

// distinctNames returns the first-seen spelling of each distinct name,
// keyed case-insensitively, in sorted key order so creation order is
// deterministic within a run.
func distinctNames(records []RowRecord, pick func(RowRecord) string) []string {
	firstSeen := make(map[string]string)
	for _, rec := range records {
		name := strings.TrimSpace(pick(rec))
		if name == "" {
			continue
		}
		key := nameKey(name)
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = name
		}
	}

	keys := make([]string, 0, len(firstSeen))
	for key := range firstSeen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = firstSeen[key]
	}
	return names
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
