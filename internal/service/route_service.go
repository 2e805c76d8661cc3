package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// RouteService owns the route lifecycle and, with it, every mutation path
// that couples route status to vehicle status. Each operation runs in one
// transaction: the route write and the vehicle write commit together or
// not at all.
type RouteService struct {
	store repository.Store
	log   zerolog.Logger
}

func NewRouteService(store repository.Store, log zerolog.Logger) *RouteService {
	return &RouteService{store: store, log: log}
}

type RouteInput struct {
	Name             string
	Origin           string
	Destination      string
	DistanceKm       float64
	EstimatedMinutes int
	VehicleID        *uuid.UUID
}

type ListRoutesOptions struct {
	Search    string
	Status    *model.RouteStatus
	VehicleID *uuid.UUID
	Limit     int
	Offset    int
}

// Create registers a new route. Routes always start Scheduled; the only
// way into InProgress is Start.
func (s *RouteService) Create(ctx context.Context, input RouteInput) (*model.RouteRecord, error) {
	route, err := routeFromInput(input)
	if err != nil {
		return nil, err
	}
	route.Status = model.RouteStatusScheduled

	var record model.RouteRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		var vehicle *model.Vehicle
		if input.VehicleID != nil {
			vehicle, err = s.resolveAssignable(ctx, tx, *input.VehicleID)
			if err != nil {
				return err
			}
			route.VehicleID = &vehicle.ID
		}
		if err := tx.SaveRoute(ctx, route); err != nil {
			return storeErr("save route", err)
		}
		record = buildRouteRecord(*route, vehicle)
		return nil
	}); err != nil {
		return nil, err
	}

	return &record, nil
}

// Update changes the descriptive fields of a route. Status moves only
// through Start/Complete/Cancel, vehicle assignment through AssignVehicle.
func (s *RouteService) Update(ctx context.Context, id uuid.UUID, input RouteInput) (*model.RouteRecord, error) {
	updated, err := routeFromInput(input)
	if err != nil {
		return nil, err
	}

	var record model.RouteRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		route, err := tx.FindRoute(ctx, id)
		if err != nil {
			return storeErr("find route", err)
		}

		route.Name = updated.Name
		route.Origin = updated.Origin
		route.Destination = updated.Destination
		route.DistanceKm = updated.DistanceKm
		route.EstimatedMinutes = updated.EstimatedMinutes

		if err := tx.SaveRoute(ctx, route); err != nil {
			return storeErr("save route", err)
		}
		record = buildRouteRecord(*route, route.Vehicle)
		return nil
	}); err != nil {
		return nil, err
	}

	return &record, nil
}

// AssignVehicle points a route at a vehicle, or detaches it when vehicleID
// is nil. Assignment alone does not start anything, but when the route is
// already in progress the vehicle statuses on both sides are adjusted so
// the fleet invariant holds after the operation.
func (s *RouteService) AssignVehicle(ctx context.Context, routeID uuid.UUID, vehicleID *uuid.UUID) (*model.RouteRecord, error) {
	var record model.RouteRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		route, err := tx.FindRoute(ctx, routeID)
		if err != nil {
			return storeErr("find route", err)
		}
		if route.Status.Terminal() {
			return ruleErr("cannot reassign a %s route", strings.ToLower(string(route.Status)))
		}

		previousID := route.VehicleID

		var vehicle *model.Vehicle
		if vehicleID != nil {
			if previousID != nil && *previousID == *vehicleID {
				record = buildRouteRecord(*route, route.Vehicle)
				return nil
			}
			vehicle, err = tx.FindVehicle(ctx, *vehicleID)
			if err != nil {
				return s.missingVehicle(err)
			}
			if previousID == nil {
				if vehicle.Status != model.VehicleStatusAvailable {
					return ruleErr("vehicle %s is not available", vehicle.Plate)
				}
			} else if vehicle.Status != model.VehicleStatusAvailable && vehicle.Status != model.VehicleStatusOnRoute {
				return ruleErr("vehicle %s is not available", vehicle.Plate)
			}
			if route.Status == model.RouteStatusInProgress {
				active, err := tx.CountRoutesForVehicle(ctx, vehicle.ID, model.RouteStatusInProgress)
				if err != nil {
					return storeErr("count routes", err)
				}
				if active > 0 {
					return ruleErr("vehicle %s already has a route in progress", vehicle.Plate)
				}
			}
			route.VehicleID = &vehicle.ID
		} else {
			route.VehicleID = nil
		}
		route.Vehicle = nil

		if err := tx.SaveRoute(ctx, route); err != nil {
			return storeErr("save route", err)
		}

		if route.Status == model.RouteStatusInProgress {
			if previousID != nil {
				if err := s.releaseVehicle(ctx, tx, *previousID); err != nil {
					return err
				}
			}
			if vehicle != nil && vehicle.Status != model.VehicleStatusOnRoute {
				vehicle.Status = model.VehicleStatusOnRoute
				if err := tx.SaveVehicle(ctx, vehicle); err != nil {
					return storeErr("save vehicle", err)
				}
			}
		}

		record = buildRouteRecord(*route, vehicle)
		return nil
	}); err != nil {
		return nil, err
	}

	return &record, nil
}

// Start moves a Scheduled route to InProgress, stamps started_at and puts
// the assigned vehicle on route.
func (s *RouteService) Start(ctx context.Context, id uuid.UUID) (*model.RouteRecord, error) {
	var record model.RouteRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		route, err := tx.FindRoute(ctx, id)
		if err != nil {
			return storeErr("find route", err)
		}
		if !route.Status.CanTransitionTo(model.RouteStatusInProgress) {
			return ruleErr("only scheduled routes can be started")
		}

		var vehicle *model.Vehicle
		if route.VehicleID != nil {
			vehicle, err = tx.FindVehicle(ctx, *route.VehicleID)
			if err != nil {
				return storeErr("find vehicle", err)
			}
			if vehicle.Status != model.VehicleStatusAvailable {
				return ruleErr("the assigned vehicle is not available")
			}
		}

		now := time.Now().UTC()
		route.Status = model.RouteStatusInProgress
		route.StartedAt = &now
		if err := tx.SaveRoute(ctx, route); err != nil {
			return storeErr("save route", err)
		}

		if vehicle != nil {
			vehicle.Status = model.VehicleStatusOnRoute
			if err := tx.SaveVehicle(ctx, vehicle); err != nil {
				return storeErr("save vehicle", err)
			}
		}

		record = buildRouteRecord(*route, vehicle)
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("route_id", record.ID.String()).Msg("route started")
	return &record, nil
}

// Complete finishes an InProgress route, stamps finished_at and releases
// the vehicle unless another InProgress route still holds it.
func (s *RouteService) Complete(ctx context.Context, id uuid.UUID) (*model.RouteRecord, error) {
	var record model.RouteRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		route, err := tx.FindRoute(ctx, id)
		if err != nil {
			return storeErr("find route", err)
		}
		if !route.Status.CanTransitionTo(model.RouteStatusCompleted) {
			return ruleErr("only routes in progress can be completed")
		}

		now := time.Now().UTC()
		route.Status = model.RouteStatusCompleted
		route.FinishedAt = &now
		if err := tx.SaveRoute(ctx, route); err != nil {
			return storeErr("save route", err)
		}

		if route.VehicleID != nil {
			if err := s.releaseVehicle(ctx, tx, *route.VehicleID); err != nil {
				return err
			}
		}

		record = buildRouteRecord(*route, route.Vehicle)
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("route_id", record.ID.String()).Msg("route completed")
	return &record, nil
}

// Cancel aborts a route from any non-terminal status and releases the
// vehicle if this route was the one keeping it on route.
func (s *RouteService) Cancel(ctx context.Context, id uuid.UUID) (*model.RouteRecord, error) {
	var record model.RouteRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		route, err := tx.FindRoute(ctx, id)
		if err != nil {
			return storeErr("find route", err)
		}
		if !route.Status.CanTransitionTo(model.RouteStatusCancelled) {
			return ruleErr("route is already completed or cancelled")
		}

		wasActive := route.Status == model.RouteStatusInProgress
		route.Status = model.RouteStatusCancelled
		if err := tx.SaveRoute(ctx, route); err != nil {
			return storeErr("save route", err)
		}

		if wasActive && route.VehicleID != nil {
			if err := s.releaseVehicle(ctx, tx, *route.VehicleID); err != nil {
				return err
			}
		}

		record = buildRouteRecord(*route, route.Vehicle)
		return nil
	}); err != nil {
		return nil, err
	}

	return &record, nil
}

// Delete removes a route record. An InProgress route releases its vehicle
// on the way out.
func (s *RouteService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.InTransaction(ctx, func(tx repository.Store) error {
		route, err := tx.FindRoute(ctx, id)
		if err != nil {
			return storeErr("find route", err)
		}

		wasActive := route.Status == model.RouteStatusInProgress
		vehicleID := route.VehicleID

		if err := tx.DeleteRoute(ctx, route.ID); err != nil {
			return storeErr("delete route", err)
		}

		if wasActive && vehicleID != nil {
			if err := s.releaseVehicle(ctx, tx, *vehicleID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *RouteService) Get(ctx context.Context, id uuid.UUID) (*model.RouteRecord, error) {
	route, err := s.store.FindRoute(ctx, id)
	if err != nil {
		return nil, storeErr("find route", err)
	}
	record := buildRouteRecord(*route, route.Vehicle)
	return &record, nil
}

func (s *RouteService) List(ctx context.Context, opts ListRoutesOptions) ([]model.RouteRecord, error) {
	routes, err := s.store.ListRoutes(ctx, repository.RouteFilter{
		Search:    opts.Search,
		Status:    opts.Status,
		VehicleID: opts.VehicleID,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	})
	if err != nil {
		return nil, storeErr("list routes", err)
	}

	records := make([]model.RouteRecord, 0, len(routes))
	for _, route := range routes {
		records = append(records, buildRouteRecord(route, route.Vehicle))
	}
	return records, nil
}

// releaseVehicle sets a vehicle back to Available, but only when no other
// InProgress route still references it and the vehicle is actually marked
// OnRoute. Called after the route row was already written or removed, so
// the count reflects the remaining routes.
func (s *RouteService) releaseVehicle(ctx context.Context, tx repository.Store, vehicleID uuid.UUID) error {
	active, err := tx.CountRoutesForVehicle(ctx, vehicleID, model.RouteStatusInProgress)
	if err != nil {
		return storeErr("count routes", err)
	}
	if active > 0 {
		return nil
	}

	vehicle, err := tx.FindVehicle(ctx, vehicleID)
	if err != nil {
		return storeErr("find vehicle", err)
	}
	if vehicle.Status != model.VehicleStatusOnRoute {
		return nil
	}

	vehicle.Status = model.VehicleStatusAvailable
	if err := tx.SaveVehicle(ctx, vehicle); err != nil {
		return storeErr("save vehicle", err)
	}
	return nil
}

// resolveAssignable loads a vehicle for first assignment and checks it can
// take a new route.
func (s *RouteService) resolveAssignable(ctx context.Context, tx repository.Store, vehicleID uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := tx.FindVehicle(ctx, vehicleID)
	if err != nil {
		return nil, s.missingVehicle(err)
	}
	if vehicle.Status != model.VehicleStatusAvailable {
		return nil, ruleErr("vehicle %s is not available", vehicle.Plate)
	}
	return vehicle, nil
}

// A dangling vehicle reference in an assignment request is a business-rule
// violation, not a routing 404: the route itself exists.
func (s *RouteService) missingVehicle(err error) error {
	if translated := storeErr("find vehicle", err); !errors.Is(translated, ErrNotFound) {
		return translated
	}
	return ruleErr("the selected vehicle does not exist")
}

func buildRouteRecord(route model.Route, vehicle *model.Vehicle) model.RouteRecord {
	record := model.RouteRecord{
		Route:                 route,
		ActualDurationMinutes: route.ActualDurationMinutes(),
		AverageSpeedKmh:       route.AverageSpeedKmh(),
	}
	if vehicle != nil {
		record.AssignedVehicle = &model.VehicleBrief{
			ID:    vehicle.ID,
			Plate: vehicle.Plate,
			Make:  vehicle.Make,
			Model: vehicle.Model,
		}
	}
	return record
}

func routeFromInput(input RouteInput) (*model.Route, error) {
	name := strings.TrimSpace(input.Name)
	if fe := model.ValidateRouteName(name); fe != nil {
		return nil, validationErr(fe)
	}
	origin := strings.TrimSpace(input.Origin)
	if fe := model.ValidateOrigin(origin); fe != nil {
		return nil, validationErr(fe)
	}
	destination := strings.TrimSpace(input.Destination)
	if fe := model.ValidateDestination(destination); fe != nil {
		return nil, validationErr(fe)
	}
	if fe := model.ValidateDistanceKm(input.DistanceKm); fe != nil {
		return nil, validationErr(fe)
	}
	if fe := model.ValidateEstimatedMinutes(input.EstimatedMinutes); fe != nil {
		return nil, validationErr(fe)
	}

	return &model.Route{
		Name:             name,
		Origin:           origin,
		Destination:      destination,
		DistanceKm:       input.DistanceKm,
		EstimatedMinutes: input.EstimatedMinutes,
	}, nil
}
