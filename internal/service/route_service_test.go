package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func TestStartAndCompleteRouteLifecycle(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Morning haul", model.RouteStatusScheduled, &vehicle.ID)

	started, err := routes.Start(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RouteStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, model.VehicleStatusOnRoute, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)

	completed, err := routes.Complete(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RouteStatusCompleted, completed.Status)
	require.NotNil(t, completed.FinishedAt)
	assert.False(t, completed.FinishedAt.Before(*completed.StartedAt))
	assert.Equal(t, model.VehicleStatusAvailable, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)
}

func TestStartRouteVehicleNotAvailable(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	routeA := seedRoute(t, store, "Route A", model.RouteStatusScheduled, &vehicle.ID)
	routeB := seedRoute(t, store, "Route B", model.RouteStatusScheduled, &vehicle.ID)

	_, err := routes.Start(ctx, routeA.ID)
	require.NoError(t, err)

	_, err = routes.Start(ctx, routeB.ID)
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)

	stored := mustFindRoute(t, store, routeB.ID)
	assert.Equal(t, model.RouteStatusScheduled, stored.Status)
	assert.Nil(t, stored.StartedAt)
	assert.Equal(t, model.VehicleStatusOnRoute, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)
}

func TestStartRouteOnlyFromScheduled(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	for _, status := range []model.RouteStatus{model.RouteStatusInProgress, model.RouteStatusCompleted, model.RouteStatusCancelled} {
		route := seedRoute(t, store, "Route "+string(status), status, nil)
		_, err := routes.Start(ctx, route.ID)
		var ruleErr *BusinessRuleError
		require.ErrorAs(t, err, &ruleErr, "status %s", status)
	}
}

func TestCompleteRouteOnlyFromInProgress(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	route := seedRoute(t, store, "Scheduled route", model.RouteStatusScheduled, nil)
	_, err := routes.Complete(ctx, route.ID)
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
}

func TestCompleteKeepsVehicleWithAnotherActiveRoute(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	// Drift scenario: two InProgress routes on one vehicle, seeded
	// directly past the engine.
	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusOnRoute)
	routeA := seedRoute(t, store, "Route A", model.RouteStatusInProgress, &vehicle.ID)
	seedRoute(t, store, "Route B", model.RouteStatusInProgress, &vehicle.ID)

	_, err := routes.Complete(ctx, routeA.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusOnRoute, mustFindVehicle(t, store, vehicle.ID).Status)
}

func TestCancelRoute(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Cancellable", model.RouteStatusScheduled, &vehicle.ID)

	_, err := routes.Start(ctx, route.ID)
	require.NoError(t, err)

	cancelled, err := routes.Cancel(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RouteStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.FinishedAt)
	assert.Equal(t, model.VehicleStatusAvailable, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)

	_, err = routes.Cancel(ctx, route.ID)
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
}

func TestCancelScheduledRouteLeavesVehicleAlone(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusMaintenance)
	route := seedRoute(t, store, "Planned", model.RouteStatusScheduled, &vehicle.ID)

	_, err := routes.Cancel(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusMaintenance, mustFindVehicle(t, store, vehicle.ID).Status)
}

func TestDeleteInProgressRouteReleasesVehicle(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Doomed", model.RouteStatusScheduled, &vehicle.ID)

	_, err := routes.Start(ctx, route.ID)
	require.NoError(t, err)

	require.NoError(t, routes.Delete(ctx, route.ID))

	_, err = store.FindRoute(ctx, route.ID)
	require.Error(t, err)
	assert.Equal(t, model.VehicleStatusAvailable, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)
}

func TestAssignVehicleRules(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	busy := seedVehicle(t, store, "BUSY123", model.VehicleStatusOnRoute)
	seedRoute(t, store, "Busy route", model.RouteStatusInProgress, &busy.ID)
	free := seedVehicle(t, store, "FREE123", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Unassigned", model.RouteStatusScheduled, nil)

	// First assignment requires an Available vehicle.
	_, err := routes.AssignVehicle(ctx, route.ID, &busy.ID)
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)

	record, err := routes.AssignVehicle(ctx, route.ID, &free.ID)
	require.NoError(t, err)
	require.NotNil(t, record.VehicleID)
	assert.Equal(t, free.ID, *record.VehicleID)
	// Assignment alone does not change vehicle status.
	assert.Equal(t, model.VehicleStatusAvailable, mustFindVehicle(t, store, free.ID).Status)

	// Unknown vehicle id is a business-rule violation.
	missing := uuid.New()
	_, err = routes.AssignVehicle(ctx, route.ID, &missing)
	require.ErrorAs(t, err, &ruleErr)
}

func TestReassignInProgressRouteSwapsVehicleStatuses(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	first := seedVehicle(t, store, "FIRST12", model.VehicleStatusAvailable)
	second := seedVehicle(t, store, "SECOND1", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Long haul", model.RouteStatusScheduled, &first.ID)

	_, err := routes.Start(ctx, route.ID)
	require.NoError(t, err)

	_, err = routes.AssignVehicle(ctx, route.ID, &second.ID)
	require.NoError(t, err)

	assert.Equal(t, model.VehicleStatusAvailable, mustFindVehicle(t, store, first.ID).Status)
	assert.Equal(t, model.VehicleStatusOnRoute, mustFindVehicle(t, store, second.ID).Status)
	assertFleetInvariant(t, store)
}

func TestAssignVehicleTerminalRoute(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Done", model.RouteStatusCompleted, nil)

	_, err := routes.AssignVehicle(ctx, route.ID, &vehicle.ID)
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
}

func TestUnassignInProgressRouteReleasesVehicle(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Haul", model.RouteStatusScheduled, &vehicle.ID)

	_, err := routes.Start(ctx, route.ID)
	require.NoError(t, err)

	record, err := routes.AssignVehicle(ctx, route.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, record.VehicleID)
	assert.Equal(t, model.VehicleStatusAvailable, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)
}

func TestCompleteRouteRollsBackOnStorageFailure(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)
	route := seedRoute(t, store, "Fragile", model.RouteStatusScheduled, &vehicle.ID)

	_, err := routes.Start(ctx, route.ID)
	require.NoError(t, err)

	store.SaveVehicleErr = errors.New("connection reset")
	_, err = routes.Complete(ctx, route.ID)
	var persistenceErr *PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	store.SaveVehicleErr = nil

	// Neither entity may show a partial outcome.
	stored := mustFindRoute(t, store, route.ID)
	assert.Equal(t, model.RouteStatusInProgress, stored.Status)
	assert.Nil(t, stored.FinishedAt)
	assert.Equal(t, model.VehicleStatusOnRoute, mustFindVehicle(t, store, vehicle.ID).Status)
	assertFleetInvariant(t, store)
}

func TestCreateRoute(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusAvailable)

	record, err := routes.Create(ctx, RouteInput{
		Name:             "  Night run  ",
		Origin:           "Madrid",
		Destination:      "Sevilla",
		DistanceKm:       530,
		EstimatedMinutes: 330,
		VehicleID:        &vehicle.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RouteStatusScheduled, record.Status)
	assert.Equal(t, "Night run", record.Name)
	require.NotNil(t, record.AssignedVehicle)
	assert.Equal(t, "ABC1234", record.AssignedVehicle.Plate)
}

func TestCreateRouteValidation(t *testing.T) {
	_, _, routes := newTestServices(t)
	ctx := context.Background()

	_, err := routes.Create(ctx, RouteInput{
		Name:             "Bad",
		Origin:           "Madrid",
		Destination:      "Sevilla",
		DistanceKm:       -1,
		EstimatedMinutes: 60,
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "distance_km", validationErr.Field)
}

func TestCreateRouteVehicleNotAvailable(t *testing.T) {
	store, _, routes := newTestServices(t)
	ctx := context.Background()

	vehicle := seedVehicle(t, store, "ABC1234", model.VehicleStatusMaintenance)

	_, err := routes.Create(ctx, RouteInput{
		Name:             "Blocked",
		Origin:           "Madrid",
		Destination:      "Sevilla",
		DistanceKm:       530,
		EstimatedMinutes: 330,
		VehicleID:        &vehicle.ID,
	})
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)

	// The failed create must not leave a route behind.
	count, err := store.CountRoutes(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRouteNotFound(t *testing.T) {
	_, _, routes := newTestServices(t)

	_, err := routes.Start(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
