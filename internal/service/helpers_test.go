package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

func newTestServices(t *testing.T) (*repository.MemStore, *VehicleService, *RouteService) {
	t.Helper()
	store := repository.NewMemStore()
	log := zerolog.Nop()
	return store, NewVehicleService(store, log), NewRouteService(store, log)
}

func seedVehicle(t *testing.T, store *repository.MemStore, plate string, status model.VehicleStatus) *model.Vehicle {
	t.Helper()
	vehicle := &model.Vehicle{
		ID:       uuid.New(),
		Plate:    plate,
		Make:     "Volvo",
		Model:    "FH16",
		Year:     2020,
		Capacity: 40,
		Status:   status,
	}
	require.NoError(t, store.SaveVehicle(context.Background(), vehicle))
	return vehicle
}

func seedRoute(t *testing.T, store *repository.MemStore, name string, status model.RouteStatus, vehicleID *uuid.UUID) *model.Route {
	t.Helper()
	route := &model.Route{
		ID:               uuid.New(),
		Name:             name,
		Origin:           "Madrid",
		Destination:      "Valencia",
		DistanceKm:       350,
		EstimatedMinutes: 240,
		VehicleID:        vehicleID,
		Status:           status,
	}
	require.NoError(t, store.SaveRoute(context.Background(), route))
	return route
}

// assertFleetInvariant checks the core consistency rule after an engine
// operation: a vehicle is OnRoute exactly when at least one of its routes
// is InProgress.
func assertFleetInvariant(t *testing.T, store *repository.MemStore) {
	t.Helper()
	ctx := context.Background()
	for _, vehicle := range store.Vehicles {
		active, err := store.CountRoutesForVehicle(ctx, vehicle.ID, model.RouteStatusInProgress)
		require.NoError(t, err)
		if vehicle.Status == model.VehicleStatusOnRoute {
			require.Positive(t, active, "vehicle %s is OnRoute without an active route", vehicle.Plate)
		}
		if active > 0 {
			require.Equal(t, model.VehicleStatusOnRoute, vehicle.Status,
				"vehicle %s has an active route but status %s", vehicle.Plate, vehicle.Status)
		}
	}
}

func mustFindVehicle(t *testing.T, store *repository.MemStore, id uuid.UUID) *model.Vehicle {
	t.Helper()
	vehicle, err := store.FindVehicle(context.Background(), id)
	require.NoError(t, err)
	return vehicle
}

func mustFindRoute(t *testing.T, store *repository.MemStore, id uuid.UUID) *model.Route {
	t.Helper()
	route, err := store.FindRoute(context.Background(), id)
	require.NoError(t, err)
	return route
}
